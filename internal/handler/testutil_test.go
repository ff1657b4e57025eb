package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkortel/goblog/internal/config"
	"github.com/mkortel/goblog/internal/repository"
	"github.com/mkortel/goblog/internal/session"
)

// testEnv bundles everything a handler test needs: stores shared
// between user and post views, a session store and a config with the
// cheapest bcrypt cost.
type testEnv struct {
	cfg      config.Config
	users    *repository.MemoryUserStore
	posts    *repository.MemoryPostStore
	sessions *session.MemoryStore
}

func newTestEnv() *testEnv {
	users, posts := repository.NewMemoryStore()
	return &testEnv{
		cfg: config.Config{
			SecretKey:        "test-secret",
			BcryptCost:       bcrypt.MinCost,
			ResetTokenTTLMin: 30,
			SessionTTLHours:  24,
			RememberTTLDays:  30,
		},
		users:    users,
		posts:    posts,
		sessions: session.NewMemoryStore(),
	}
}

// mustUser registers a user directly against the store.
func (env *testEnv) mustUser(t *testing.T, username, email, password string) uint64 {
	t.Helper()
	uid, err := env.users.Create(context.Background(), username, email, password, env.cfg.BcryptCost)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return uid
}

// mustPost inserts a post owned by uid.
func (env *testEnv) mustPost(t *testing.T, uid uint64, title, content string) uint64 {
	t.Helper()
	id, err := env.posts.Create(context.Background(), uid, title, content)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return id
}

// formContext builds an Echo context carrying a form-encoded request,
// the way the browser submits these endpoints.
func formContext(e *echo.Echo, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser marks the context as authenticated, the way the identity
// middleware would after resolving a session cookie.
func asUser(c echo.Context, uid uint64) {
	c.Set("user_id", uid)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}
