// This file implements the post lifecycle endpoints. Reads are public;
// every mutation runs behind the session middleware and an ownership
// check in the repository, so a post can only ever be changed or
// removed by its author. Missing posts and not-owned posts stay
// distinguishable: 404 for the former, 403 for the latter.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkortel/goblog/internal/middleware"
	"github.com/mkortel/goblog/internal/repository"
)

// PostHandler bundles the post store for the post CRUD endpoints.
type PostHandler struct {
	Posts repository.PostStore
}

func NewPostHandler(posts repository.PostStore) *PostHandler {
	return &PostHandler{Posts: posts}
}

type postReq struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

func (r *postReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" {
		return "title is required"
	}
	if r.Content == "" {
		return "content is required"
	}
	return ""
}

// Home handles GET /: one page of all posts, newest first.
func (h *PostHandler) Home(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	page := pageParam(c)
	posts, total, err := h.Posts.ListAll(ctx, page, postsPerPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"posts":       toPostParts(posts),
		"page":        page,
		"per_page":    postsPerPage,
		"total":       total,
		"total_pages": totalPages(total, postsPerPage),
	})
}

// NewForm handles GET /post/new.
func (h *PostHandler) NewForm(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Create handles POST /post/new.
func (h *PostHandler) Create(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	var req postReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Posts.Create(ctx, uid, req.Title, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "redirect": "/"})
}

// Get handles GET /post/:id. The not-found check is unconditional and
// identity-independent.
func (h *PostHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"post": postPart{
		ID: p.ID, AuthorID: p.AuthorID, Title: p.Title, Content: p.Content, Date: p.Date,
	}})
}

// UpdateForm handles GET /post/:id/update: the existing title and
// content for prefill, owner only.
func (h *PostHandler) UpdateForm(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.AuthorID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"title": p.Title, "content": p.Content})
}

// Update handles POST /post/:id/update. The creation date is left
// untouched.
func (h *PostHandler) Update(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req postReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Posts.UpdateByIDAndOwner(ctx, id, uid, req.Title, req.Content)
	switch err {
	case nil:
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect": fmt.Sprintf("/post/%d", id)})
}

// Delete handles POST /post/:id/delete. Deleting an already-deleted
// post observes 404, never a crash.
func (h *PostHandler) Delete(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Posts.DeleteByIDAndOwner(ctx, id, uid)
	switch err {
	case nil:
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/"})
}
