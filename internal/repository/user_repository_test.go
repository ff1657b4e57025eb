package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"golang.org/x/crypto/bcrypt"
)

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepo(db), mock, db
}

func TestUserRepoCreate_WritesUTCTimestamps(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	// The insert must set the timestamps with UTC_TIMESTAMP(); relying
	// on session-local defaults would poison the reset-token watermark
	// on any server whose time_zone is not UTC.
	q := `(?s)^INSERT\s+INTO\s+users\s+\(username,\s*email,\s*password_hash,\s*img_file,\s*password_changed_at,\s*created_at,\s*updated_at\)\s+` +
		`VALUES\s+\(\?,\?,\?,\?,UTC_TIMESTAMP\(\),UTC_TIMESTAMP\(\),UTC_TIMESTAMP\(\)\)$`

	mock.ExpectExec(q).
		WithArgs("alice", "alice@x.com", sqlmock.AnyArg(), "default.jpeg").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create(context.Background(), "alice", "alice@x.com", "secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id != 42 {
		t.Fatalf("id mismatch: got %d want 42", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepoCreate_DuplicateKeyMapping(t *testing.T) {
	cases := []struct {
		name   string
		dbErr  string
		mapped error
	}{
		{"username", "Error 1062 (23000): Duplicate entry 'alice' for key 'users.uq_users_username'", ErrUsernameTaken},
		{"email", "Error 1062 (23000): Duplicate entry 'alice@x.com' for key 'users.uq_users_email'", ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, db := newUserRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users`).
				WillReturnError(errors.New(tc.dbErr))

			_, err := repo.Create(context.Background(), "alice", "alice@x.com", "secret123", bcrypt.MinCost)
			if err != tc.mapped {
				t.Fatalf("expected %v, got %v", tc.mapped, err)
			}
		})
	}
}

func TestUserRepoUpdatePassword_UTCWatermark(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+password_hash=\?,\s*password_changed_at=UTC_TIMESTAMP\(\),\s*updated_at=UTC_TIMESTAMP\(\)\s+WHERE\s+id=\?$`

	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), 7, "newpassword", bcrypt.MinCost); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepoUpdatePassword_MissingUser(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePassword(context.Background(), 99, "newpassword", bcrypt.MinCost); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepoGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+users\s+WHERE\s+email=\?`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@x.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
