package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wundervaflja/rat/internal/claude"
	"github.com/wundervaflja/rat/pkg/models"
)

// fakeChecker is a canned liveness answer.
type fakeChecker struct{ running bool }

func (f fakeChecker) Running() bool { return f.running }

// trackerFixture wires a Tracker to a temp worktree and a fake projects
// root it can write conversation logs into.
type trackerFixture struct {
	worktree    string
	projectsDir string
	logDir      string
	running     *fakeChecker
	window      time.Duration
}

func newFixture(t *testing.T) *trackerFixture {
	t.Helper()
	f := &trackerFixture{
		worktree: t.TempDir(),
		running:  &fakeChecker{},
		window:   DefaultActivityWindow,
	}
	projectsDir := t.TempDir()
	name := "-" + strings.ReplaceAll(strings.TrimLeft(f.worktree, "/"), "/", "-")
	f.logDir = filepath.Join(projectsDir, name)
	require.NoError(t, os.MkdirAll(f.logDir, 0o755))
	f.projectsDir = projectsDir
	return f
}

func (f *trackerFixture) tracker() *Tracker {
	reader := claude.NewReader(f.worktree, claude.WithProjectsDir(f.projectsDir))
	return NewTracker(f.worktree,
		WithReader(reader),
		WithProcessChecker(f.running),
		WithActivityWindow(f.window))
}

// appendLog writes one assistant record with the given timestamp and
// token counts.
func (f *trackerFixture) appendLog(t *testing.T, ts time.Time, tokensIn, tokensOut int) {
	t.Helper()
	line := fmt.Sprintf(`{"type":"assistant","uuid":"a-%d","sessionId":"s1","timestamp":%q,"message":{"role":"assistant","model":"claude-sonnet-4","content":"done","usage":{"input_tokens":%d,"output_tokens":%d}}}`+"\n",
		ts.UnixNano(), ts.Format(time.RFC3339), tokensIn, tokensOut)
	path := filepath.Join(f.logDir, "conv.jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	defer file.Close()
	_, err = file.WriteString(line)
	require.NoError(t, err)
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.True(t, strings.HasPrefix(id, "sess_"))
	assert.NotEqual(t, id, GenerateID())
}

func TestTracker_LoadWithoutSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker().Load()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, f.tracker().HasSession())
}

func TestTracker_LoadCorruptSession(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()
	require.NoError(t, os.MkdirAll(filepath.Dir(tr.SessionFile()), 0o755))
	require.NoError(t, os.WriteFile(tr.SessionFile(), []byte("{broken"), 0o600))

	_, err := tr.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTracker_CreateAndReload(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()

	created, err := tr.Create("feature/auth", "")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusReady, created.Status)
	assert.Empty(t, created.ID)
	assert.True(t, tr.HasSession())

	loaded, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusReady, loaded.Status)
	assert.Equal(t, "feature/auth", loaded.Branch)
	assert.Equal(t, f.worktree, loaded.WorktreePath)
}

func TestTracker_StartAssignsIDOnce(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()
	_, err := tr.Create("feature/auth", "")
	require.NoError(t, err)

	started, err := tr.Start()
	require.NoError(t, err)
	assert.NotEmpty(t, started.ID)
	require.NotNil(t, started.StartedAt)

	// The id companion file mirrors the assigned id.
	idData, err := os.ReadFile(filepath.Join(f.worktree, ".claude-session-id"))
	require.NoError(t, err)
	assert.Equal(t, started.ID, string(idData))

	again, err := tr.Start()
	require.NoError(t, err)
	assert.Equal(t, started.ID, again.ID)
	assert.True(t, started.StartedAt.Equal(*again.StartedAt))
}

// Status reconciliation: active needs both a live process and recent log
// activity. Losing either demotes active to paused; ready holds.
func TestTracker_StatusReconciliation(t *testing.T) {
	cases := []struct {
		name      string
		persisted models.SessionStatus
		running   bool
		recentLog bool
		want      models.SessionStatus
	}{
		{"ready stays ready without process", models.SessionStatusReady, false, false, models.SessionStatusReady},
		{"ready promotes with process and activity", models.SessionStatusReady, true, true, models.SessionStatusActive},
		{"ready holds with process but stale logs", models.SessionStatusReady, true, false, models.SessionStatusReady},
		{"active holds with process and activity", models.SessionStatusActive, true, true, models.SessionStatusActive},
		{"active demotes when process dies", models.SessionStatusActive, false, true, models.SessionStatusPaused},
		{"active demotes when logs go stale", models.SessionStatusActive, true, false, models.SessionStatusPaused},
		{"paused promotes when both return", models.SessionStatusPaused, true, true, models.SessionStatusActive},
		{"paused holds without activity", models.SessionStatusPaused, false, false, models.SessionStatusPaused},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tr := f.tracker()

			session, err := tr.Create("feature/x", "")
			require.NoError(t, err)
			session.Status = tc.persisted
			require.NoError(t, tr.Save(session))

			f.running.running = tc.running
			if tc.recentLog {
				f.appendLog(t, time.Now().UTC().Add(-time.Minute), 10, 5)
			} else {
				f.appendLog(t, time.Now().UTC().Add(-time.Hour), 10, 5)
			}

			loaded, err := tr.Load()
			require.NoError(t, err)
			assert.Equal(t, tc.want, loaded.Status)
		})
	}
}

// Stopped is absorbing: neither liveness nor fresh logs revive it, and
// the frozen metrics survive reloads untouched.
func TestTracker_StoppedIsAbsorbing(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()

	_, err := tr.Create("feature/x", "")
	require.NoError(t, err)
	stopped, err := tr.Stop()
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusStopped, stopped.Status)
	require.NotNil(t, stopped.StoppedAt)

	f.running.running = true
	f.appendLog(t, time.Now().UTC(), 100, 50)

	loaded, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusStopped, loaded.Status)
	assert.Equal(t, 0, loaded.Metrics.Interactions)
}

// Loaded metrics come from the logs, scoped to records after the session
// was created.
func TestTracker_MetricsRefreshOnLoad(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()

	session, err := tr.Create("feature/x", "")
	require.NoError(t, err)

	f.appendLog(t, session.CreatedAt.Add(-time.Hour), 999, 999) // pre-session noise
	f.appendLog(t, session.CreatedAt.Add(time.Minute), 100, 50)
	f.appendLog(t, session.CreatedAt.Add(2*time.Minute), 30, 20)

	loaded, err := tr.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Metrics.Interactions)
	assert.Equal(t, 130, loaded.Metrics.TokensIn)
	assert.Equal(t, 70, loaded.Metrics.TokensOut)
	assert.Equal(t, []string{"claude-sonnet-4"}, loaded.Metrics.ModelsUsed)
}

func TestTracker_PlanLink(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()
	_, err := tr.Create("feature/x", "")
	require.NoError(t, err)

	plan := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(plan, []byte("# plan"), 0o600))
	require.NoError(t, tr.LinkPlan(plan))

	resolved, err := filepath.EvalSymlinks(plan)
	require.NoError(t, err)
	assert.Equal(t, resolved, tr.PlanFile())

	// Relinking replaces the old target.
	other := filepath.Join(t.TempDir(), "other.md")
	require.NoError(t, os.WriteFile(other, []byte("# other"), 0o600))
	require.NoError(t, tr.LinkPlan(other))
	resolved, err = filepath.EvalSymlinks(other)
	require.NoError(t, err)
	assert.Equal(t, resolved, tr.PlanFile())
}

func TestTracker_GetOrCreate(t *testing.T) {
	f := newFixture(t)
	tr := f.tracker()

	first, err := tr.GetOrCreate("feature/x")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusReady, first.Status)

	second, err := tr.GetOrCreate("ignored")
	require.NoError(t, err)
	assert.Equal(t, "feature/x", second.Branch)
}
