package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkortel/goblog/internal/config"
	"github.com/mkortel/goblog/internal/middleware"
	"github.com/mkortel/goblog/internal/model"
	"github.com/mkortel/goblog/internal/repository"
	"github.com/mkortel/goblog/internal/session"
	"github.com/mkortel/goblog/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and logout.
type AuthHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, users repository.UserStore, sessions session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}
type loginReq struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

// RegisterForm handles GET /register. There is no prefill for a blank
// registration form.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Register handles POST /register: validate the form, pre-check both
// uniqueness constraints independently, then insert. The pre-checks are
// an optimistic fast path; a concurrent registration losing the race
// still surfaces as the same validation error via the unique keys.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateUsername(req.Username); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if msg := validateEmail(req.Email); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if msg := validatePassword(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.GetByUsername(ctx, req.Username); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrUsernameTaken.Error()})
	} else if err != repository.ErrNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrEmailTaken.Error()})
	} else if err != repository.ErrNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	switch err {
	case nil:
	case repository.ErrUsernameTaken, repository.ErrEmailTaken:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":     userPart{ID: uid, Username: req.Username, Email: req.Email, ImgFile: model.DefaultAvatar},
		"redirect": "/",
	})
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Login handles POST /login. An unknown email and a wrong password
// produce byte-identical failures so the response never reveals which
// check failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	sid, err := h.Sessions.Create(ctx, u.ID, req.Remember)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open session failed"})
	}
	h.setSessionCookie(c, sid, req.Remember)

	return c.JSON(http.StatusOK, echo.Map{
		"user":     toUserPart(u),
		"redirect": safeNext(c.QueryParam("next")),
	})
}

// Logout handles GET /logout: end the session, drop the cookie and send
// the client home. Logging out without a session is a no-op redirect.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		_ = h.Sessions.Delete(ctx, cookie.Value)
	}
	clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Me returns the authenticated user's profile. Protected.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, sid string, remember bool) {
	maxAge := h.Cfg.SessionTTLHours * 3600
	if remember {
		maxAge = h.Cfg.RememberTTLDays * 24 * 3600
	}
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
