package session

import "os/exec"

// DefaultProcessPattern matches the Claude Code CLI in the process table.
const DefaultProcessPattern = "claude"

// ProcessChecker reports whether the external agent process is running.
// Implementations must fail safe: any inability to answer the question is
// reported as not running, never as a false positive.
type ProcessChecker interface {
	Running() bool
}

// PgrepChecker queries the process table with pgrep -f.
type PgrepChecker struct {
	Pattern string
}

// NewPgrepChecker creates a checker for the given pattern, defaulting to
// the Claude CLI.
func NewPgrepChecker(pattern string) *PgrepChecker {
	if pattern == "" {
		pattern = DefaultProcessPattern
	}
	return &PgrepChecker{Pattern: pattern}
}

// Running reports whether any process matches the pattern. A failed or
// missing pgrep reads as not running.
func (c *PgrepChecker) Running() bool {
	err := exec.Command("pgrep", "-f", c.Pattern).Run()
	return err == nil
}
