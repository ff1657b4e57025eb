package repository

import (
	"context"
	"database/sql"

	"github.com/mkortel/goblog/internal/model"
)

// PostRepo is the MySQL-backed PostStore over the 'posts' table.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// Create inserts a post owned by authorID with the creation date set by
// the database. The date is never touched again.
func (r *PostRepo) Create(ctx context.Context, authorID uint64, title, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (author_id, title, content, date) VALUES (?,?,?,UTC_TIMESTAMP())",
		authorID, title, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a post by id. The lookup is identity-independent;
// missing rows are ErrNotFound for every caller.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,author_id,title,content,date FROM posts WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Date)
	if err == sql.ErrNoRows {
		return model.Post{}, ErrNotFound
	}
	return p, err
}

// UpdateByIDAndOwner overwrites title and content if the post exists
// and belongs to ownerID. The ownership check compares primary keys;
// a post owned by someone else yields ErrForbidden, a missing post
// ErrNotFound. The statement itself repeats the owner predicate so a
// post deleted between the check and the write affects zero rows and
// reports ErrNotFound instead of silent success.
func (r *PostRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, title, content string) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET title=?, content=? WHERE id=? AND author_id=?",
		title, content, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteByIDAndOwner removes the post if it exists and belongs to
// ownerID.
func (r *PostRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM posts WHERE id=? AND author_id=?", id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostRepo) checkOwner(ctx context.Context, id, ownerID uint64) error {
	var authorID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT author_id FROM posts WHERE id=? LIMIT 1", id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if authorID != ownerID {
		return ErrForbidden
	}
	return nil
}

// ListByAuthor returns one page of the author's posts, newest first,
// along with the author's total post count.
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uint64, page, perPage int) ([]model.Post, int, error) {
	return r.list(ctx, "WHERE author_id=?", []any{authorID}, page, perPage)
}

// ListAll returns one page of all posts, newest first, with the total
// count.
func (r *PostRepo) ListAll(ctx context.Context, page, perPage int) ([]model.Post, int, error) {
	return r.list(ctx, "", nil, page, perPage)
}

func (r *PostRepo) list(ctx context.Context, where string, args []any, page, perPage int) ([]model.Post, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,author_id,title,content,date FROM posts "+where+
			" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?",
		append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.Date); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}
