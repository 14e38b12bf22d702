// Package hints tracks which one-time tips have already been shown on
// this machine, keyed by feature name.
package hints

import (
	"os"
	"path/filepath"
	"sync"
)

// Store remembers which features' tips were shown.
type Store interface {
	Seen(feature string) bool
	MarkSeen(feature string) error
}

// FileStore keeps one marker file per feature under a directory,
// typically ~/.rat/hints.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. Empty dir defaults to
// ~/.rat/hints.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".rat", "hints")
		}
	}
	return &FileStore{dir: dir}
}

// Seen reports whether the feature's tip was shown before.
func (s *FileStore) Seen(feature string) bool {
	if s.dir == "" {
		return true
	}
	_, err := os.Stat(filepath.Join(s.dir, feature))
	return err == nil
}

// MarkSeen records that the feature's tip was shown.
func (s *FileStore) MarkSeen(feature string) error {
	if s.dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, feature), nil, 0o644)
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{seen: make(map[string]bool)}
}

func (s *MemStore) Seen(feature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[feature]
}

func (s *MemStore) MarkSeen(feature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[feature] = true
	return nil
}
