package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/mkortel/goblog/internal/session" // session store resolves cookie ids to user ids
)

// userIDKey is the context key under which the resolved identity is
// stored. Handlers read it back via CurrentUserID.
const userIDKey = "user_id"

// Identity returns an Echo middleware that resolves the session cookie,
// if any, to a user id and stores it in the request context. It never
// rejects a request on its own: requests without a cookie, or with a
// cookie whose session has expired, simply proceed anonymously.
// RequireAuth and AnonOnly build their decisions on top of it.
func Identity(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err == nil && cookie.Value != "" {
				if userID, err := store.Resolve(c.Request().Context(), cookie.Value); err == nil {
					c.Set(userIDKey, userID)
				}
			}
			return next(c)
		}
	}
}

// RequireAuth rejects requests that carry no resolved identity with
// 401 Unauthorized. It must run after Identity.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUserID(c); !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		return next(c)
	}
}

// AnonOnly redirects already-authenticated users to the home page.
// The register, login and password-reset pages are unreachable while a
// session is active, matching the redirect-if-authed rows of the route
// table.
func AnonOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUserID(c); ok {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}

// CurrentUserID extracts the identity stored by Identity. The second
// return value reports whether the request is authenticated.
func CurrentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok
}
