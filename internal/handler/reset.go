package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkortel/goblog/internal/config"
	"github.com/mkortel/goblog/internal/queue"
	"github.com/mkortel/goblog/internal/repository"
	"github.com/mkortel/goblog/internal/session"
	"github.com/mkortel/goblog/internal/token"
)

// MailPublisher dispatches reset-mail events to the broker. The
// RabbitMQ publisher implements it in production; tests substitute a
// recording fake.
type MailPublisher interface {
	PublishPasswordReset(ctx context.Context, event queue.PasswordResetRequested) error
}

// resetSentMessage is returned for every well-formed reset request,
// whether or not the email is registered, so the endpoint cannot be
// used to probe which addresses have accounts.
const resetSentMessage = "If that email is registered, password reset instructions have been sent."

// ResetHandler bundles dependencies for the password-reset flow.
type ResetHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Sessions session.Store
	Tokens   *token.Issuer
	Mail     MailPublisher
}

func NewResetHandler(cfg config.Config, users repository.UserStore, sessions session.Store, tokens *token.Issuer, mail MailPublisher) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Users: users, Sessions: sessions, Tokens: tokens, Mail: mail}
}

func (h *ResetHandler) maxAge() time.Duration {
	return time.Duration(h.Cfg.ResetTokenTTLMin) * time.Minute
}

// RequestForm handles GET /reset_password.
func (h *ResetHandler) RequestForm(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Request handles POST /reset_password. For a registered email a token
// is issued and handed to the mail queue; for an unknown email nothing
// is issued and nothing is published. Both paths answer with the same
// body and status, and internal issue/publish failures are logged but
// also answered generically, so the requester learns nothing about
// account existence either way.
func (h *ResetHandler) Request(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if msg := validateEmail(email); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err != repository.ErrNotFound {
			log.Printf("reset: lookup failed: %v", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage, "redirect": "/login"})
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		log.Printf("reset: issue token failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage, "redirect": "/login"})
	}
	ev := queue.PasswordResetRequested{
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Token:       tok,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Mail.PublishPasswordReset(ctx, ev); err != nil {
		// Fire-and-forget: delivery failure is not surfaced.
		log.Printf("reset: publish mail event failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": resetSentMessage, "redirect": "/login"})
}

// ConsumeForm handles GET /reset_password/:token: validates the token
// before the client bothers typing a new password.
func (h *ResetHandler) ConsumeForm(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, ok := h.Tokens.Verify(ctx, c.Param("token"), h.maxAge()); !ok {
		return h.invalidToken(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// Consume handles POST /reset_password/:token. A valid token sets the
// new password and revokes every session of the account, so the next
// action anywhere is a fresh login. Invalid or expired tokens leave the
// password untouched and point the client back to the request form.
func (h *ResetHandler) Consume(c echo.Context) error {
	password := c.FormValue("password")
	if msg := validatePassword(password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, ok := h.Tokens.Verify(ctx, c.Param("token"), h.maxAge())
	if !ok {
		return h.invalidToken(c)
	}

	if err := h.Users.UpdatePassword(ctx, u.ID, password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	if err := h.Sessions.DeleteAllForUser(ctx, u.ID); err != nil {
		log.Printf("reset: session revoke failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "your password has been updated, you can log in now",
		"redirect": "/login",
	})
}

func (h *ResetHandler) invalidToken(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":    "invalid or expired reset token",
		"redirect": "/reset_password",
	})
}
