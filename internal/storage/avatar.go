// Package storage persists uploaded avatar images on local disk. Files
// are stored under generated names; only the name is recorded on the
// user row.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkortel/goblog/internal/model"
)

// ErrBadImageType is returned for uploads whose extension is not an
// accepted image format.
var ErrBadImageType = errors.New("unsupported image type")

// AvatarStore writes avatar files into Dir.
type AvatarStore struct{ Dir string }

func NewAvatarStore(dir string) *AvatarStore { return &AvatarStore{Dir: dir} }

// Save stores the image bytes under a fresh unique filename derived
// from the original file's extension and returns that filename. The
// extension is validated against the accepted formats.
func (s *AvatarStore) Save(data []byte, origName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", ErrBadImageType
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Remove deletes a stored avatar file. The default sentinel is shared
// by all accounts and is never removed. Callers treat a failure here
// as best-effort cleanup: the metadata update has already committed.
func (s *AvatarStore) Remove(name string) error {
	if name == "" || name == model.DefaultAvatar {
		return nil
	}
	return os.Remove(filepath.Join(s.Dir, name))
}
