package repository

import (
	"context"

	"github.com/mkortel/goblog/internal/model"
)

// UserStore is the data-access surface for user records. Handlers
// depend on this interface rather than the MySQL implementation so the
// persistence layer stays mockable in tests.
type UserStore interface {
	// Create hashes the password and inserts a new user. Duplicate
	// username or email rows are reported as ErrUsernameTaken or
	// ErrEmailTaken respectively.
	Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	// UpdateAccount overwrites the mutable profile fields. Uniqueness
	// violations map to the same sentinels as Create.
	UpdateAccount(ctx context.Context, id uint64, username, email, imgFile string) error
	// UpdatePassword hashes and stores a new password and advances the
	// password_changed_at watermark.
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
	// DeleteWithPosts removes the user and all posts they own in a
	// single transaction.
	DeleteWithPosts(ctx context.Context, id uint64) error
}

// PostStore is the data-access surface for posts. Owner-scoped
// mutations report ErrNotFound when the post does not exist and
// ErrForbidden when it exists but belongs to someone else.
type PostStore interface {
	Create(ctx context.Context, authorID uint64, title, content string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Post, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, title, content string) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	// ListByAuthor returns one page of the author's posts ordered by
	// date descending, plus the total number of posts.
	ListByAuthor(ctx context.Context, authorID uint64, page, perPage int) ([]model.Post, int, error)
	// ListAll returns one page of all posts ordered by date descending,
	// plus the total count. Used by the public home feed.
	ListAll(ctx context.Context, page, perPage int) ([]model.Post, int, error)
}
