package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkortel/goblog/internal/repository"
)

func postForm(title, content string) url.Values {
	return url.Values{"title": {title}, "content": {content}}
}

func withPostID(c echo.Context, id uint64) {
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))
}

func TestPost_OwnershipScenario(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	alice := env.mustUser(t, "alice", "alice@x.com", "secret123")
	bob := env.mustUser(t, "bob", "bob@x.com", "secret123")
	h := NewPostHandler(env.posts)
	e := echo.New()

	postID := env.mustPost(t, alice, "Hello", "World")

	// Bob cannot update or delete Alice's post.
	c, rec := formContext(e, http.MethodPost, "/post/1/update", postForm("Hacked", "Gone"))
	asUser(c, bob)
	withPostID(c, postID)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = formContext(e, http.MethodPost, "/post/1/delete", nil)
	asUser(c, bob)
	withPostID(c, postID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The post is untouched.
	p, err := env.posts.GetByID(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)

	// Alice can update; the creation date is unchanged.
	created := p.Date
	c, rec = formContext(e, http.MethodPost, "/post/1/update", postForm("Hello again", "World"))
	asUser(c, alice)
	withPostID(c, postID)
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)
	p, err = env.posts.GetByID(context.Background(), postID)
	require.NoError(t, err)
	assert.Equal(t, "Hello again", p.Title)
	assert.True(t, p.Date.Equal(created))
	assert.Equal(t, alice, p.AuthorID)

	// Alice deletes; the second delete observes not-found.
	c, rec = formContext(e, http.MethodPost, "/post/1/delete", nil)
	asUser(c, alice)
	withPostID(c, postID)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = formContext(e, http.MethodPost, "/post/1/delete", nil)
	asUser(c, alice)
	withPostID(c, postID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// And the post now 404s on read.
	c, rec = formContext(e, http.MethodGet, fmt.Sprintf("/post/%d", postID), nil)
	withPostID(c, postID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPost_ReadMissingIsNotFoundForEveryone(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	alice := env.mustUser(t, "alice", "alice@x.com", "secret123")
	h := NewPostHandler(env.posts)
	e := echo.New()

	// Anonymous caller.
	c, rec := formContext(e, http.MethodGet, "/post/42", nil)
	withPostID(c, 42)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Authenticated caller sees the same outcome.
	c, rec = formContext(e, http.MethodGet, "/post/42", nil)
	asUser(c, alice)
	withPostID(c, 42)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPost_CreateValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	alice := env.mustUser(t, "alice", "alice@x.com", "secret123")
	h := NewPostHandler(env.posts)
	e := echo.New()

	c, rec := formContext(e, http.MethodPost, "/post/new", postForm("", "body"))
	asUser(c, alice)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = formContext(e, http.MethodPost, "/post/new", postForm("title", "   "))
	asUser(c, alice)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = formContext(e, http.MethodPost, "/post/new", postForm("Hello", "World"))
	asUser(c, alice)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPost_UpdateFormPrefillAndAccess(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	alice := env.mustUser(t, "alice", "alice@x.com", "secret123")
	bob := env.mustUser(t, "bob", "bob@x.com", "secret123")
	h := NewPostHandler(env.posts)
	e := echo.New()

	postID := env.mustPost(t, alice, "Hello", "World")

	c, rec := formContext(e, http.MethodGet, "/post/1/update", nil)
	asUser(c, alice)
	withPostID(c, postID)
	require.NoError(t, h.UpdateForm(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Hello", body["title"])
	assert.Equal(t, "World", body["content"])

	c, rec = formContext(e, http.MethodGet, "/post/1/update", nil)
	asUser(c, bob)
	withPostID(c, postID)
	require.NoError(t, h.UpdateForm(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHome_Pagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	alice := env.mustUser(t, "alice", "alice@x.com", "secret123")
	h := NewPostHandler(env.posts)
	e := echo.New()

	for i := 0; i < 7; i++ {
		env.mustPost(t, alice, fmt.Sprintf("post %d", i), "body")
	}

	c, rec := formContext(e, http.MethodGet, "/", nil)
	require.NoError(t, h.Home(c))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["posts"], 5)
	assert.EqualValues(t, 7, body["total"])
	assert.EqualValues(t, 2, body["total_pages"])

	c, rec = formContext(e, http.MethodGet, "/?page=2", nil)
	require.NoError(t, h.Home(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["posts"], 2)
}

var _ repository.PostStore = (*repository.MemoryPostStore)(nil)
var _ repository.PostStore = (*repository.PostRepo)(nil)
var _ repository.UserStore = (*repository.MemoryUserStore)(nil)
var _ repository.UserStore = (*repository.UserRepo)(nil)
