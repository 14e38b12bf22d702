package models

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a worktree session.
type SessionStatus string

const (
	SessionStatusReady   SessionStatus = "ready"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusPaused  SessionStatus = "paused"
	SessionStatusStopped SessionStatus = "stopped"
)

// WorktreeSession is the persisted tracking record for one worktree's
// AI-assisted work period. Metrics and status are recomputed from the
// conversation logs on every load; the persisted copies are not
// authoritative.
type WorktreeSession struct {
	ID           string         `json:"id,omitempty"`
	Status       SessionStatus  `json:"status"`
	Branch       string         `json:"branch"`
	WorktreePath string         `json:"worktree_path"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	StoppedAt    *time.Time     `json:"stopped_at,omitempty"`
	PlanFile     string         `json:"plan_file,omitempty"`
	Metrics      SessionMetrics `json:"metrics"`
}

// DurationDisplay formats the session duration for human output.
func (s *WorktreeSession) DurationDisplay() string {
	seconds := s.Metrics.DurationSeconds()
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

// CostDisplay formats the accumulated cost for human output.
func (s *WorktreeSession) CostDisplay() string {
	return fmt.Sprintf("$%.2f", s.Metrics.CostUSD)
}
