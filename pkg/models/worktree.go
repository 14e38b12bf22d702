package models

import "path/filepath"

// Worktree describes one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path       string
	Branch     string
	Head       string
	IsMain     bool
	IsBare     bool
	IsDetached bool
	Prunable   string
}

// Name is the worktree's directory name.
func (w *Worktree) Name() string {
	return filepath.Base(w.Path)
}
