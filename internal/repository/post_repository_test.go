package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPostRepoWithMock(t *testing.T) (*PostRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostRepo(db), mock, db
}

const ownerCheckQuery = `(?s)^SELECT\s+author_id\s+FROM\s+posts\s+WHERE\s+id=\?\s+LIMIT\s+1$`

func TestPostRepoUpdate_OwnerGuardInStatement(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(ownerCheckQuery).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(1))

	// The write repeats the owner predicate so the check cannot be the
	// only line of defense.
	mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+title=\?,\s*content=\?\s+WHERE\s+id=\?\s+AND\s+author_id=\?$`).
		WithArgs("Hello", "World", 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateByIDAndOwner(context.Background(), 3, 1, "Hello", "World"); err != nil {
		t.Fatalf("UpdateByIDAndOwner error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostRepoUpdate_RowVanishesBetweenCheckAndWrite(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	// Ownership check still sees the row, but it is gone by the time
	// the guarded UPDATE runs: zero matched rows must surface as
	// not-found, never as silent success.
	mock.ExpectQuery(ownerCheckQuery).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(1))
	mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+title=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateByIDAndOwner(context.Background(), 3, 1, "Hello", "World"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostRepoDelete_RowVanishesBetweenCheckAndWrite(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(ownerCheckQuery).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(1))
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+posts\s+WHERE\s+id=\?\s+AND\s+author_id=\?$`).
		WithArgs(3, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByIDAndOwner(context.Background(), 3, 1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostRepoDelete_NotOwned(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(ownerCheckQuery).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(2))

	if err := repo.DeleteByIDAndOwner(context.Background(), 3, 1); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// No Exec expectation: the mutation must never run for a foreign post.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostRepoCreate_UTCDate(t *testing.T) {
	repo, mock, db := newPostRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+posts\s+\(author_id,\s*title,\s*content,\s*date\)\s+VALUES\s+\(\?,\?,\?,UTC_TIMESTAMP\(\)\)$`).
		WithArgs(1, "Hello", "World").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), 1, "Hello", "World")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id != 5 {
		t.Fatalf("id mismatch: got %d want 5", id)
	}
}
