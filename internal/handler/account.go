package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkortel/goblog/internal/config"
	"github.com/mkortel/goblog/internal/middleware"
	"github.com/mkortel/goblog/internal/repository"
	"github.com/mkortel/goblog/internal/session"
	"github.com/mkortel/goblog/internal/storage"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 2 << 20

// AccountHandler bundles dependencies for the account profile, account
// deletion and public user-listing endpoints.
type AccountHandler struct {
	Cfg      config.Config
	Users    repository.UserStore
	Posts    repository.PostStore
	Sessions session.Store
	Avatars  *storage.AvatarStore
}

func NewAccountHandler(cfg config.Config, users repository.UserStore, posts repository.PostStore, sessions session.Store, avatars *storage.AvatarStore) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Users: users, Posts: posts, Sessions: sessions, Avatars: avatars}
}

// Account handles GET /account: the current profile for form prefill.
func (h *AccountHandler) Account(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// UpdateAccount handles POST /account. Uniqueness is re-validated only
// for fields that actually changed, so submitting the form with the
// current values is always accepted. When a new avatar is uploaded the
// metadata update commits first and removal of the previous file is
// best-effort: a failed cleanup is logged, never rolled back.
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if msg := validateUsername(username); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if msg := validateEmail(email); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	// Self-collisions are allowed: only changed fields are re-checked.
	if username != current.Username {
		if _, err := h.Users.GetByUsername(ctx, username); err == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrUsernameTaken.Error()})
		} else if err != repository.ErrNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if email != current.Email {
		if _, err := h.Users.GetByEmail(ctx, email); err == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrEmailTaken.Error()})
		} else if err != repository.ErrNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	imgFile := current.ImgFile
	replacedAvatar := false
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		if fh.Size > maxAvatarBytes {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "image too large"})
		}
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
		}
		data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
		src.Close()
		if err != nil || len(data) > maxAvatarBytes {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "image too large"})
		}
		name, err := h.Avatars.Save(data, fh.Filename)
		if err != nil {
			if err == storage.ErrBadImageType {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
		}
		imgFile = name
		replacedAvatar = true
	}

	err = h.Users.UpdateAccount(ctx, uid, username, email, imgFile)
	if err != nil && replacedAvatar {
		// The row never pointed at the new file, so it must not stay on
		// disk when the update is rejected (e.g. by the unique-key
		// backstop).
		if rmErr := h.Avatars.Remove(imgFile); rmErr != nil {
			log.Printf("account: orphan avatar cleanup failed: %v", rmErr)
		}
	}
	switch err {
	case nil:
	case repository.ErrUsernameTaken, repository.ErrEmailTaken:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if replacedAvatar {
		if err := h.Avatars.Remove(current.ImgFile); err != nil {
			log.Printf("account: old avatar cleanup failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":     userPart{ID: uid, Username: username, Email: email, ImgFile: imgFile},
		"redirect": "/account",
	})
}

// DeleteUser handles POST /user/delete/:id. Only self-deletion is
// allowed; the target is loaded first so a missing account stays a 404
// while someone else's account is a 403. Posts cascade inside the same
// transaction, and every session of the account is revoked.
func (h *AccountHandler) DeleteUser(c echo.Context) error {
	uid, _ := middleware.CurrentUserID(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	target, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if target.ID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Users.DeleteWithPosts(ctx, target.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := h.Sessions.DeleteAllForUser(ctx, target.ID); err != nil {
		log.Printf("account: session revoke failed: %v", err)
	}
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/logout"})
}

// UserPosts handles GET /user/:username: a public paginated listing of
// one author's posts, newest first.
func (h *AccountHandler) UserPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	page := pageParam(c)
	posts, total, err := h.Posts.ListByAuthor(ctx, u.ID, page, postsPerPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":        echo.Map{"username": u.Username, "img_file": u.ImgFile},
		"posts":       toPostParts(posts),
		"page":        page,
		"per_page":    postsPerPage,
		"total":       total,
		"total_pages": totalPages(total, postsPerPage),
	})
}
