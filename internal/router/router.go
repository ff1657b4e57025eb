package router // package router defines how HTTP routes are registered for the application

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mkortel/goblog/internal/handler"    // import the handlers that implement business logic
	"github.com/mkortel/goblog/internal/middleware" // import middleware for identity resolution and auth gating
	"github.com/mkortel/goblog/internal/session"    // session store consumed by the identity middleware
)

// Register wires every route of the blog onto the provided Echo
// instance. The identity middleware runs globally so any handler can
// ask who is calling; RequireAuth and AnonOnly are applied per route
// to match the auth column of the route table. The limiter guards the
// two endpoints that accept credentials or trigger outbound mail.
func Register(e *echo.Echo, sessions session.Store,
	auth *handler.AuthHandler, posts *handler.PostHandler,
	account *handler.AccountHandler, reset *handler.ResetHandler,
	limiter echo.MiddlewareFunc) {

	e.Use(middleware.Identity(sessions))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Public browse endpoints: the home feed, single posts and per-user
	// listings require no session.
	e.GET("/", posts.Home)
	e.GET("/post/:id", posts.Get)
	e.GET("/user/:username", account.UserPosts)

	// Session endpoints. Register, login and the reset flow are only
	// reachable anonymously; an active session is redirected home.
	e.GET("/register", auth.RegisterForm, middleware.AnonOnly)
	e.POST("/register", auth.Register, middleware.AnonOnly)
	e.GET("/login", auth.LoginForm, middleware.AnonOnly)
	e.POST("/login", auth.Login, middleware.AnonOnly, limiter)
	e.GET("/logout", auth.Logout)

	// Post mutations, owner-gated inside the handlers.
	e.GET("/post/new", posts.NewForm, middleware.RequireAuth)
	e.POST("/post/new", posts.Create, middleware.RequireAuth)
	e.GET("/post/:id/update", posts.UpdateForm, middleware.RequireAuth)
	e.POST("/post/:id/update", posts.Update, middleware.RequireAuth)
	e.POST("/post/:id/delete", posts.Delete, middleware.RequireAuth)

	// Account management.
	e.GET("/account", account.Account, middleware.RequireAuth)
	e.POST("/account", account.UpdateAccount, middleware.RequireAuth)
	e.POST("/user/delete/:id", account.DeleteUser, middleware.RequireAuth)
	e.GET("/me", auth.Me, middleware.RequireAuth)

	// Password reset flow.
	e.GET("/reset_password", reset.RequestForm, middleware.AnonOnly)
	e.POST("/reset_password", reset.Request, middleware.AnonOnly, limiter)
	e.GET("/reset_password/:token", reset.ConsumeForm, middleware.AnonOnly)
	e.POST("/reset_password/:token", reset.Consume, middleware.AnonOnly)
}
