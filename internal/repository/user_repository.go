package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mkortel/goblog/internal/model"
	"github.com/mkortel/goblog/internal/utils"
)

// UserRepo is the MySQL-backed UserStore over the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,img_file,password_changed_at,created_at,updated_at"

// Create inserts a user and returns its ID. The unique keys
// uq_users_username and uq_users_email are the authoritative backstop
// for the registration pre-checks; a duplicate-key error is mapped back
// to the matching sentinel so racing registrations surface as the same
// validation failure the pre-check would have produced.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	// Timestamps are written with UTC_TIMESTAMP() rather than the
	// session-local defaults: the watermark is compared against Go-side
	// UTC clocks during token verification, so a non-UTC server
	// time_zone must not leak into the stored value.
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, img_file, password_changed_at, created_at, updated_at) "+
			"VALUES (?,?,?,?,UTC_TIMESTAMP(),UTC_TIMESTAMP(),UTC_TIMESTAMP())",
		username, email, hash, model.DefaultAvatar)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return 0, dup
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email=?", email)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getWhere(ctx, "username=?", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ImgFile,
			&u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdateAccount overwrites username, email and avatar filename.
func (r *UserRepo) UpdateAccount(ctx context.Context, id uint64, username, email, imgFile string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, img_file=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		username, email, imgFile, id)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return dup
		}
		return err
	}
	return requireRow(res)
}

// UpdatePassword stores a fresh bcrypt hash and advances the
// password_changed_at watermark so previously issued reset tokens die
// with the change. The watermark must be UTC_TIMESTAMP(), never NOW():
// token verification compares it against UTC issue times, and a server
// time_zone ahead of UTC would otherwise reject every token while one
// behind UTC would leave consumed tokens replayable for the offset.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=UTC_TIMESTAMP(), updated_at=UTC_TIMESTAMP() WHERE id=?",
		hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteWithPosts removes the user's posts and then the user record in
// one transaction, so account deletion either cascades fully or not at
// all.
func (r *UserRepo) DeleteWithPosts(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE author_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// duplicateKeyError maps a MySQL 1062 duplicate-key error to the
// sentinel for the violated unique index, or nil when err is something
// else.
func duplicateKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	switch {
	case strings.Contains(msg, "uq_users_username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "uq_users_email"):
		return ErrEmailTaken
	}
	return err
}

// requireRow converts a zero-row UPDATE/DELETE into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
