package worktree

import (
	"fmt"
	"os/exec"
	"strings"
)

// Repo runs git commands against one repository directory.
type Repo struct {
	dir string
}

// NewRepo creates a Repo rooted at dir (any worktree of the repository).
func NewRepo(dir string) *Repo {
	return &Repo{dir: dir}
}

// Dir returns the repository directory the Repo operates on.
func (r *Repo) Dir() string {
	return r.dir
}

// Git runs a git command with -C prepended and returns trimmed stdout.
// Failures carry git's stderr in the error.
func (r *Repo) Git(args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", r.dir}, args...)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch, or "HEAD" when detached.
func (r *Repo) CurrentBranch() string {
	out, err := r.Git("branch", "--show-current")
	if err != nil || out == "" {
		return "HEAD"
	}
	return out
}

// HasCommits reports whether the repository has at least one commit.
// Worktrees cannot be created in a repository without commits.
func (r *Repo) HasCommits() bool {
	_, err := r.Git("rev-parse", "HEAD")
	return err == nil
}

// IsClean reports whether the worktree has no uncommitted changes.
func (r *Repo) IsClean() bool {
	out, err := r.Git("status", "--porcelain")
	return err == nil && out == ""
}
