// Package worktree manages git worktrees for parallel AI-assisted
// development, carrying the AI context files and session tracking into
// each new worktree.
package worktree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/pkg/models"
)

// Context files copied into every new worktree.
var contextFiles = []string{
	"CLAUDE.local.md",
	".claude-plan",
}

var (
	// ErrNotFound means no worktree matches the given branch or path.
	ErrNotFound = errors.New("worktree not found")

	// ErrMainWorktree guards the main worktree against removal.
	ErrMainWorktree = errors.New("cannot remove main worktree")
)

// Manager creates, lists and removes worktrees of one repository.
type Manager struct {
	repo *Repo

	mainWorktree string
}

// NewManager creates a Manager rooted at any worktree of the repository.
func NewManager(dir string) *Manager {
	return &Manager{repo: NewRepo(dir)}
}

// Repo exposes the underlying git wrapper.
func (m *Manager) Repo() *Repo {
	return m.repo
}

// List returns all worktrees of the repository. The first porcelain entry
// is the main worktree.
func (m *Manager) List() ([]models.Worktree, error) {
	out, err := m.repo.Git("worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// parsePorcelain decodes `git worktree list --porcelain` output.
func parsePorcelain(out string) []models.Worktree {
	var (
		worktrees []models.Worktree
		current   models.Worktree
		seen      bool
	)
	flush := func() {
		if seen {
			worktrees = append(worktrees, current)
			current = models.Worktree{}
			seen = false
		}
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			flush()
			continue
		}
		seen = true
		switch {
		case strings.HasPrefix(line, "worktree "):
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			current.IsBare = true
		case line == "detached":
			current.IsDetached = true
		case strings.HasPrefix(line, "prunable "):
			current.Prunable = strings.TrimPrefix(line, "prunable ")
		}
	}
	flush()

	for i := range worktrees {
		if worktrees[i].Branch == "" {
			worktrees[i].Branch = "HEAD"
		}
	}
	if len(worktrees) > 0 {
		worktrees[0].IsMain = true
	}
	return worktrees
}

// MainWorktree returns the path of the main worktree.
func (m *Manager) MainWorktree() (string, error) {
	if m.mainWorktree != "" {
		return m.mainWorktree, nil
	}

	worktrees, err := m.List()
	if err != nil {
		return "", err
	}
	for _, wt := range worktrees {
		if wt.IsMain {
			m.mainWorktree = wt.Path
			return wt.Path, nil
		}
	}
	m.mainWorktree = m.repo.Dir()
	return m.mainWorktree, nil
}

// Current returns the worktree containing the manager's directory, or
// ErrNotFound.
func (m *Manager) Current() (*models.Worktree, error) {
	worktrees, err := m.List()
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(m.repo.Dir())
	if err != nil {
		dir = m.repo.Dir()
	}
	for i := range worktrees {
		if worktrees[i].Path == dir {
			return &worktrees[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindByBranch returns the worktree checked out on branch, matching branch
// name or path.
func (m *Manager) FindByBranch(branch string) (*models.Worktree, error) {
	worktrees, err := m.List()
	if err != nil {
		return nil, err
	}
	for i := range worktrees {
		if worktrees[i].Branch == branch || worktrees[i].Path == branch {
			return &worktrees[i], nil
		}
	}
	return nil, ErrNotFound
}

// CreateOptions control worktree creation.
type CreateOptions struct {
	// Path for the worktree. Empty means a sibling directory named
	// <repo>.<branch> next to the main worktree.
	Path string

	// Base commit or branch for a newly created branch. Empty means HEAD.
	Base string

	// CheckoutExisting checks out an existing branch instead of creating
	// a new one.
	CheckoutExisting bool

	// SkipContext skips copying the AI context files.
	SkipContext bool
}

// DefaultPath computes the default sibling path for a branch's worktree.
func DefaultPath(mainWorktree, branch string) string {
	safe := strings.ReplaceAll(branch, "/", "-")
	name := fmt.Sprintf("%s.%s", filepath.Base(mainWorktree), safe)
	return filepath.Join(filepath.Dir(mainWorktree), name)
}

// Create adds a worktree for branch, copies the AI context files and
// initializes session tracking in it. When branch creation fails because
// the branch already exists, the existing branch is checked out instead.
func (m *Manager) Create(branch string, opts CreateOptions) (*models.Worktree, error) {
	main, err := m.MainWorktree()
	if err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = DefaultPath(main, branch)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	base := opts.Base
	if base == "" {
		base = "HEAD"
	}

	if opts.CheckoutExisting {
		_, err = m.repo.Git("worktree", "add", path, branch)
	} else {
		_, err = m.repo.Git("worktree", "add", "-b", branch, path, base)
		if err != nil && strings.Contains(err.Error(), "already exists") {
			_, err = m.repo.Git("worktree", "add", path, branch)
		}
	}
	if err != nil {
		return nil, err
	}

	if !opts.SkipContext {
		copyContextFiles(main, path)
	}

	if _, err := session.NewTracker(path).Create(branch, ""); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to initialize session tracking")
	}

	worktrees, err := m.List()
	if err == nil {
		for i := range worktrees {
			if worktrees[i].Path == path {
				return &worktrees[i], nil
			}
		}
	}

	head, _ := NewRepo(path).Git("rev-parse", "HEAD")
	return &models.Worktree{Path: path, Branch: branch, Head: head}, nil
}

// copyContextFiles carries the AI context files from the main worktree
// into a new one. Symlinks are recreated pointing at the same target.
func copyContextFiles(src, dest string) {
	for _, name := range contextFiles {
		srcPath := filepath.Join(src, name)
		destPath := filepath.Join(dest, name)

		info, err := os.Lstat(srcPath)
		if err != nil {
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(srcPath)
			if err != nil {
				continue
			}
			_ = os.Remove(destPath)
			if err := os.Symlink(target, destPath); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("Failed to link context file")
			}
			continue
		}

		if err := copyFile(srcPath, destPath); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to copy context file")
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Remove deletes the worktree for branch (name or path). The main
// worktree is refused.
func (m *Manager) Remove(branch string, force bool) error {
	target, err := m.FindByBranch(branch)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, branch)
	}
	if target.IsMain {
		return ErrMainWorktree
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, target.Path)

	_, err = m.repo.Git(args...)
	return err
}

// Prune drops stale worktree entries and returns the paths that were
// prunable beforehand.
func (m *Manager) Prune() ([]string, error) {
	worktrees, err := m.List()
	if err != nil {
		return nil, err
	}

	var pruned []string
	for _, wt := range worktrees {
		if wt.Prunable != "" {
			pruned = append(pruned, wt.Path)
		}
	}

	if _, err := m.repo.Git("worktree", "prune"); err != nil {
		return nil, err
	}
	return pruned, nil
}

// DefaultBranch resolves the repository's default branch: origin's HEAD
// when set, otherwise the first of main and master that exists locally.
func (m *Manager) DefaultBranch() string {
	if out, err := m.repo.Git("symbolic-ref", "refs/remotes/origin/HEAD"); err == nil && out != "" {
		parts := strings.Split(out, "/")
		return parts[len(parts)-1]
	}

	for _, branch := range []string{"main", "master"} {
		if _, err := m.repo.Git("rev-parse", "refs/heads/"+branch); err == nil {
			return branch
		}
	}
	return "main"
}
