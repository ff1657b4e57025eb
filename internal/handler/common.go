package handler // handler defines http handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkortel/goblog/internal/model"
)

// dbTimeout bounds every persistence round-trip made from a handler.
const dbTimeout = 5 * time.Second

// postsPerPage is the page size of the home feed and user listings.
const postsPerPage = 5

// userPart is the user shape embedded in JSON responses.
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImgFile  string `json:"img_file"`
}

// postPart is the post shape embedded in JSON responses.
type postPart struct {
	ID       uint64    `json:"id"`
	AuthorID uint64    `json:"author_id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Date     time.Time `json:"date"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, ImgFile: u.ImgFile}
}

func toPostParts(posts []model.Post) []postPart {
	out := make([]postPart, 0, len(posts))
	for _, p := range posts {
		out = append(out, postPart{ID: p.ID, AuthorID: p.AuthorID, Title: p.Title, Content: p.Content, Date: p.Date})
	}
	return out
}

// paramID parses the numeric :id route parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// pageParam reads the ?page query parameter, defaulting to 1.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// validateUsername applies the registration form's username rules.
func validateUsername(username string) string {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 20 {
		return "username must be between 3 and 20 characters"
	}
	return ""
}

// validateEmail performs the same shallow shape check the registration
// form does; deliverability is proven by the reset-mail flow, not here.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return "invalid email address"
	}
	return ""
}

func validatePassword(password string) string {
	if len(password) < 6 {
		return "password must be at least 6 characters"
	}
	return ""
}

// safeNext sanitizes the ?next redirect target supplied at login. Only
// site-relative paths are honored so the parameter cannot bounce users
// to another origin.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
