package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkortel/goblog/internal/model"
)

func TestAvatarStore_SaveAndRemove(t *testing.T) {
	t.Parallel()

	s := NewAvatarStore(t.TempDir())

	name, err := s.Save([]byte("fake image bytes"), "me.PNG")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected lowercased .png suffix, got %q", name)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, name)); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	other, err := s.Save([]byte("different"), "me.png")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if other == name {
		t.Fatalf("generated names must be unique")
	}

	if err := s.Remove(name); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, name)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestAvatarStore_RejectsBadType(t *testing.T) {
	t.Parallel()

	s := NewAvatarStore(t.TempDir())
	if _, err := s.Save([]byte("x"), "evil.exe"); err != ErrBadImageType {
		t.Fatalf("expected ErrBadImageType, got %v", err)
	}
}

func TestAvatarStore_SentinelNeverRemoved(t *testing.T) {
	t.Parallel()

	s := NewAvatarStore(t.TempDir())
	if err := s.Remove(model.DefaultAvatar); err != nil {
		t.Fatalf("removing the sentinel must be a no-op, got %v", err)
	}
	if err := s.Remove(""); err != nil {
		t.Fatalf("removing the empty name must be a no-op, got %v", err)
	}
}
