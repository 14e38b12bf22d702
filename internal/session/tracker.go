// Package session persists per-worktree session state and reconciles each
// session's lifecycle status from Claude's logs and process liveness.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wundervaflja/rat/internal/claude"
	"github.com/wundervaflja/rat/pkg/models"
)

const (
	// sessionFile holds the persisted session document, relative to the
	// worktree root.
	sessionFile = ".rat/session.json"

	// sessionIDFile mirrors the session id for external tooling.
	sessionIDFile = ".claude-session-id"

	// planLink is the symlink pointing at the worktree's plan file.
	planLink = ".claude-plan"

	// DefaultActivityWindow bounds how stale the latest log record may be
	// for the session to still count as active.
	DefaultActivityWindow = 5 * time.Minute
)

// ErrNoSession means no session has been created for the worktree.
var ErrNoSession = errors.New("no session exists for this worktree")

// GenerateID returns a fresh session id, e.g. sess_20260829_141503_a1b2c3.
func GenerateID() string {
	stamp := time.Now().UTC().Format("20060102_150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("sess_%s_%s", stamp, suffix)
}

// Tracker manages the session document of one worktree. Loading refreshes
// metrics from the conversation logs and reconciles the status from the
// same snapshot; the persisted copies are never trusted.
type Tracker struct {
	worktreePath   string
	reader         *claude.Reader
	proc           ProcessChecker
	activityWindow time.Duration
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithReader substitutes the conversation reader (for tests and config
// overrides).
func WithReader(r *claude.Reader) TrackerOption {
	return func(t *Tracker) { t.reader = r }
}

// WithProcessChecker substitutes the liveness checker.
func WithProcessChecker(p ProcessChecker) TrackerOption {
	return func(t *Tracker) { t.proc = p }
}

// WithActivityWindow overrides the recency window.
func WithActivityWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.activityWindow = d
		}
	}
}

// NewTracker creates a Tracker rooted at worktreePath.
func NewTracker(worktreePath string, opts ...TrackerOption) *Tracker {
	if abs, err := filepath.Abs(worktreePath); err == nil {
		worktreePath = abs
	}
	t := &Tracker{
		worktreePath:   worktreePath,
		activityWindow: DefaultActivityWindow,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.reader == nil {
		t.reader = claude.NewReader(worktreePath)
	}
	if t.proc == nil {
		t.proc = NewPgrepChecker("")
	}
	return t
}

// SessionFile is the path of the persisted session document.
func (t *Tracker) SessionFile() string {
	return filepath.Join(t.worktreePath, sessionFile)
}

// HasSession reports whether any session state exists for the worktree.
func (t *Tracker) HasSession() bool {
	if _, err := os.Stat(t.SessionFile()); err == nil {
		return true
	}
	_, err := os.Stat(filepath.Join(t.worktreePath, sessionIDFile))
	return err == nil
}

// Load reads the session document, refreshes its metrics from the
// conversation logs, and reconciles its status. Returns ErrNoSession when
// no document exists or it cannot be decoded.
func (t *Tracker) Load() (*models.WorktreeSession, error) {
	data, err := os.ReadFile(t.SessionFile())
	if err != nil {
		return nil, ErrNoSession
	}

	var session models.WorktreeSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Warn().Err(err).Str("file", t.SessionFile()).Msg("Corrupt session file")
		return nil, ErrNoSession
	}

	t.refreshMetrics(&session)
	t.reconcileStatus(&session)
	return &session, nil
}

// Save writes the session document with an atomic rename, plus the session
// id companion file once an id is assigned.
func (t *Tracker) Save(session *models.WorktreeSession) error {
	path := t.SessionFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	if session.ID != "" {
		idPath := filepath.Join(t.worktreePath, sessionIDFile)
		if err := os.WriteFile(idPath, []byte(session.ID), 0o644); err != nil {
			return fmt.Errorf("failed to write session id file: %w", err)
		}
	}
	return nil
}

// Create initializes a READY session for the worktree. The id stays empty
// until the session is first started.
func (t *Tracker) Create(branch, planFile string) (*models.WorktreeSession, error) {
	session := &models.WorktreeSession{
		Status:       models.SessionStatusReady,
		Branch:       branch,
		WorktreePath: t.worktreePath,
		CreatedAt:    time.Now().UTC(),
		PlanFile:     planFile,
	}
	if err := t.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetOrCreate loads the existing session or creates a fresh one.
func (t *Tracker) GetOrCreate(branch string) (*models.WorktreeSession, error) {
	session, err := t.Load()
	if errors.Is(err, ErrNoSession) {
		return t.Create(branch, "")
	}
	return session, err
}

// Start activates the session, assigning an id on first start.
func (t *Tracker) Start() (*models.WorktreeSession, error) {
	session, err := t.Load()
	if err != nil {
		return nil, err
	}

	if session.ID == "" {
		session.ID = GenerateID()
	}
	session.Status = models.SessionStatusActive
	if session.StartedAt == nil {
		now := time.Now().UTC()
		session.StartedAt = &now
	}

	if err := t.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Pause pauses the session with its metrics refreshed.
func (t *Tracker) Pause() (*models.WorktreeSession, error) {
	session, err := t.Load()
	if err != nil {
		return nil, err
	}

	session.Status = models.SessionStatusPaused
	if err := t.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Stop stops the session permanently. Stopped is absorbing: later loads
// never recompute the status, so the metrics freeze at stop time.
func (t *Tracker) Stop() (*models.WorktreeSession, error) {
	session, err := t.Load()
	if err != nil {
		return nil, err
	}

	session.Status = models.SessionStatusStopped
	now := time.Now().UTC()
	session.StoppedAt = &now
	if err := t.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// LinkPlan points the worktree's plan symlink at planPath and records it
// in the session document.
func (t *Tracker) LinkPlan(planPath string) error {
	abs, err := filepath.Abs(planPath)
	if err != nil {
		return err
	}

	link := filepath.Join(t.worktreePath, planLink)
	if _, err := os.Lstat(link); err == nil {
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("failed to replace plan link: %w", err)
		}
	}
	if err := os.Symlink(abs, link); err != nil {
		return fmt.Errorf("failed to link plan: %w", err)
	}

	session, err := t.Load()
	if err != nil {
		return nil
	}
	session.PlanFile = abs
	return t.Save(session)
}

// PlanFile resolves the worktree's plan file via the symlink first, then
// the session document.
func (t *Tracker) PlanFile() string {
	link := filepath.Join(t.worktreePath, planLink)
	if target, err := filepath.EvalSymlinks(link); err == nil {
		return target
	}

	session, err := t.Load()
	if err != nil {
		return ""
	}
	return session.PlanFile
}

// refreshMetrics recomputes the session metrics from the conversation logs
// created after the session, so status and metrics always reflect the same
// snapshot.
func (t *Tracker) refreshMetrics(session *models.WorktreeSession) {
	if session.Status == models.SessionStatusStopped {
		return
	}
	if !t.reader.HasData() {
		return
	}
	session.Metrics = t.reader.CalculateMetrics(session.CreatedAt, "")
}

// reconcileStatus derives the lifecycle status from process liveness and
// log recency. Stopped is absorbing. Active requires both a live agent
// process and a log record within the activity window; losing either
// demotes an active session to paused, and non-active states hold.
func (t *Tracker) reconcileStatus(session *models.WorktreeSession) {
	if session.Status == models.SessionStatusStopped {
		return
	}

	if t.proc.Running() {
		if t.reader.RecentActivity(t.activityWindow) {
			session.Status = models.SessionStatusActive
			return
		}
	}
	if session.Status == models.SessionStatusActive {
		session.Status = models.SessionStatusPaused
	}
}
