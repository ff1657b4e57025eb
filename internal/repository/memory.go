package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mkortel/goblog/internal/model"
	"github.com/mkortel/goblog/internal/utils"
)

// memoryData is the shared backing state for the in-memory stores.
// MemoryUserStore and MemoryPostStore are views over the same data so
// that DeleteWithPosts can cascade across both tables, mirroring the
// single-database transaction of the MySQL repositories.
type memoryData struct {
	mu         sync.RWMutex
	users      map[uint64]model.User
	posts      map[uint64]model.Post
	nextUserID uint64
	nextPostID uint64
}

// MemoryUserStore is an in-memory UserStore used by tests.
type MemoryUserStore struct{ d *memoryData }

// MemoryPostStore is an in-memory PostStore used by tests.
type MemoryPostStore struct{ d *memoryData }

// NewMemoryStore returns a linked pair of in-memory stores sharing one
// dataset. Both honor the sentinel-error contract of the MySQL
// repositories, including the 404-vs-403 distinction on owner-scoped
// operations.
func NewMemoryStore() (*MemoryUserStore, *MemoryPostStore) {
	d := &memoryData{
		users: make(map[uint64]model.User),
		posts: make(map[uint64]model.Post),
	}
	return &MemoryUserStore{d: d}, &MemoryPostStore{d: d}
}

func (s *MemoryUserStore) Create(_ context.Context, username, email, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Username == username {
			return 0, ErrUsernameTaken
		}
		if u.Email == email {
			return 0, ErrEmailTaken
		}
	}
	d.nextUserID++
	now := time.Now().UTC()
	d.users[d.nextUserID] = model.User{
		ID:                d.nextUserID,
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		ImgFile:           model.DefaultAvatar,
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return d.nextUserID, nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	u, ok := s.d.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, u := range s.d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	for _, u := range s.d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemoryUserStore) UpdateAccount(_ context.Context, id uint64, username, email, imgFile string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return ErrNotFound
	}
	for _, other := range d.users {
		if other.ID == id {
			continue
		}
		if other.Username == username {
			return ErrUsernameTaken
		}
		if other.Email == email {
			return ErrEmailTaken
		}
	}
	u.Username = username
	u.Email = email
	u.ImgFile = imgFile
	u.UpdatedAt = time.Now().UTC()
	d.users[id] = u
	return nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	u.PasswordHash = hash
	u.PasswordChangedAt = now
	u.UpdatedAt = now
	d.users[id] = u
	return nil
}

func (s *MemoryUserStore) DeleteWithPosts(_ context.Context, id uint64) error {
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return ErrNotFound
	}
	for pid, p := range d.posts {
		if p.AuthorID == id {
			delete(d.posts, pid)
		}
	}
	delete(d.users, id)
	return nil
}

// SetPasswordChangedAt overrides the watermark of a user. Only tests
// use this to build deterministic token timelines.
func (s *MemoryUserStore) SetPasswordChangedAt(id uint64, at time.Time) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if u, ok := s.d.users[id]; ok {
		u.PasswordChangedAt = at
		s.d.users[id] = u
	}
}

func (s *MemoryPostStore) Create(_ context.Context, authorID uint64, title, content string) (uint64, error) {
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextPostID++
	d.posts[d.nextPostID] = model.Post{
		ID:       d.nextPostID,
		AuthorID: authorID,
		Title:    title,
		Content:  content,
		Date:     time.Now().UTC(),
	}
	return d.nextPostID, nil
}

func (s *MemoryPostStore) GetByID(_ context.Context, id uint64) (model.Post, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	p, ok := s.d.posts[id]
	if !ok {
		return model.Post{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryPostStore) UpdateByIDAndOwner(_ context.Context, id, ownerID uint64, title, content string) error {
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.posts[id]
	if !ok {
		return ErrNotFound
	}
	if p.AuthorID != ownerID {
		return ErrForbidden
	}
	p.Title = title
	p.Content = content
	d.posts[id] = p
	return nil
}

func (s *MemoryPostStore) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.posts[id]
	if !ok {
		return ErrNotFound
	}
	if p.AuthorID != ownerID {
		return ErrForbidden
	}
	delete(d.posts, id)
	return nil
}

func (s *MemoryPostStore) ListByAuthor(_ context.Context, authorID uint64, page, perPage int) ([]model.Post, int, error) {
	return s.listWhere(func(p model.Post) bool { return p.AuthorID == authorID }, page, perPage)
}

func (s *MemoryPostStore) ListAll(_ context.Context, page, perPage int) ([]model.Post, int, error) {
	return s.listWhere(func(model.Post) bool { return true }, page, perPage)
}

func (s *MemoryPostStore) listWhere(match func(model.Post) bool, page, perPage int) ([]model.Post, int, error) {
	if page < 1 {
		page = 1
	}
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var all []model.Post
	for _, p := range s.d.posts {
		if match(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID > all[j].ID
		}
		return all[i].Date.After(all[j].Date)
	})
	total := len(all)
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
