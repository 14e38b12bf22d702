package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestReader sets up a fake projects root with a log directory mapped
// to projectRoot, and returns the reader plus that directory.
func newTestReader(t *testing.T, projectRoot string) (*Reader, string) {
	t.Helper()
	projectsDir := t.TempDir()
	name := "-" + strings.ReplaceAll(strings.TrimLeft(projectRoot, "/"), "/", "-")
	logDir := filepath.Join(projectsDir, name)
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	return NewReader(projectRoot, WithProjectsDir(projectsDir)), logDir
}

func assistantRecord(id, ts string, tokensIn, tokensOut int) string {
	return fmt.Sprintf(`{"type":"assistant","uuid":%q,"sessionId":"s1","timestamp":%q,"message":{"role":"assistant","model":"claude-sonnet-4","content":"ok","usage":{"input_tokens":%d,"output_tokens":%d}}}`,
		id, ts, tokensIn, tokensOut)
}

func TestReader_NoDataForProject(t *testing.T) {
	reader := NewReader("/does/not/exist", WithProjectsDir(t.TempDir()))
	assert.False(t, reader.HasData())
	assert.Empty(t, reader.ConversationFiles())
	assert.Empty(t, reader.SessionID())

	metrics := reader.CalculateMetrics(time.Time{}, "")
	assert.Equal(t, 0, metrics.Interactions)
}

// TestCalculateMetrics_MixedLog covers the canonical three-line log: a
// user turn, a malformed line, and an assistant turn with usage. Only the
// assistant turn counts; both conversation turns widen the span.
func TestCalculateMetrics_MixedLog(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	t0 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	content := record("user", "u1", t0.Format(time.RFC3339), "please fix the bug") + "\n" +
		"this line is not json\n" +
		assistantRecord("a1", t0.Add(30*time.Second).Format(time.RFC3339), 100, 50) + "\n"
	writeFile(t, filepath.Join(logDir, "conv.jsonl"), content)

	metrics := reader.CalculateMetrics(time.Time{}, "")
	assert.Equal(t, 1, metrics.Interactions)
	assert.Equal(t, 100, metrics.TokensIn)
	assert.Equal(t, 50, metrics.TokensOut)
	assert.Equal(t, []string{"claude-sonnet-4"}, metrics.ModelsUsed)
	require.NotNil(t, metrics.FirstTimestamp)
	require.NotNil(t, metrics.LastTimestamp)
	assert.True(t, metrics.FirstTimestamp.Equal(t0))
	assert.True(t, metrics.LastTimestamp.Equal(t0.Add(30*time.Second)))
	assert.Equal(t, 30, metrics.DurationSeconds())
}

// The since bound is strictly exclusive: an interaction exactly at since
// is excluded, one a second later is included.
func TestCalculateMetrics_SinceIsExclusive(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	cut := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	content := assistantRecord("a1", cut.Format(time.RFC3339), 10, 5) + "\n" +
		assistantRecord("a2", cut.Add(time.Second).Format(time.RFC3339), 20, 7) + "\n"
	writeFile(t, filepath.Join(logDir, "conv.jsonl"), content)

	metrics := reader.CalculateMetrics(cut, "")
	assert.Equal(t, 1, metrics.Interactions)
	assert.Equal(t, 20, metrics.TokensIn)
	assert.Equal(t, 7, metrics.TokensOut)
}

// Metrics are independent of which file holds which interaction.
func TestCalculateMetrics_FileOrderInvariance(t *testing.T) {
	t0 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	lines := []string{
		assistantRecord("a1", t0.Format(time.RFC3339), 10, 1),
		assistantRecord("a2", t0.Add(time.Minute).Format(time.RFC3339), 20, 2),
		assistantRecord("a3", t0.Add(2*time.Minute).Format(time.RFC3339), 30, 3),
	}

	splits := [][][]string{
		{{lines[0], lines[1], lines[2]}},
		{{lines[2]}, {lines[0], lines[1]}},
		{{lines[1]}, {lines[2]}, {lines[0]}},
	}

	for i, split := range splits {
		reader, logDir := newTestReader(t, "/home/alice/repo")
		for j, fileLines := range split {
			writeFile(t, filepath.Join(logDir, fmt.Sprintf("conv%d.jsonl", j)),
				strings.Join(fileLines, "\n")+"\n")
		}

		metrics := reader.CalculateMetrics(time.Time{}, "")
		assert.Equal(t, 3, metrics.Interactions, "split %d", i)
		assert.Equal(t, 60, metrics.TokensIn, "split %d", i)
		assert.Equal(t, 6, metrics.TokensOut, "split %d", i)
		require.NotNil(t, metrics.FirstTimestamp, "split %d", i)
		assert.True(t, metrics.FirstTimestamp.Equal(t0), "split %d", i)
		assert.True(t, metrics.LastTimestamp.Equal(t0.Add(2*time.Minute)), "split %d", i)
	}
}

func TestCalculateMetrics_SingleConversation(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	t0 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(logDir, "aaa.jsonl"),
		assistantRecord("a1", t0.Format(time.RFC3339), 10, 1)+"\n")
	writeFile(t, filepath.Join(logDir, "bbb.jsonl"),
		assistantRecord("a2", t0.Format(time.RFC3339), 20, 2)+"\n")

	metrics := reader.CalculateMetrics(time.Time{}, "aaa")
	assert.Equal(t, 1, metrics.Interactions)
	assert.Equal(t, 10, metrics.TokensIn)

	missing := reader.CalculateMetrics(time.Time{}, "nope")
	assert.Equal(t, 0, missing.Interactions)
}

func TestReadAllInteractions_NewestFirstAndLimit(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	t0 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString(record("user", fmt.Sprintf("u%d", i),
			t0.Add(time.Duration(i)*time.Minute).Format(time.RFC3339), "msg"))
		b.WriteString("\n")
	}
	writeFile(t, filepath.Join(logDir, "conv.jsonl"), b.String())

	all := reader.ReadAllInteractions(time.Time{}, 0)
	require.Len(t, all, 5)
	assert.Equal(t, "u4", all[0].ID)
	assert.Equal(t, "u0", all[4].ID)

	limited := reader.ReadAllInteractions(time.Time{}, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "u4", limited[0].ID)
	assert.Equal(t, "u3", limited[1].ID)

	since := reader.ReadAllInteractions(t0.Add(2*time.Minute), 0)
	require.Len(t, since, 2)
	assert.Equal(t, "u4", since[0].ID)
}

func TestRecentActivity(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	stale := time.Now().UTC().Add(-2 * time.Hour)
	writeFile(t, filepath.Join(logDir, "old.jsonl"),
		record("user", "u1", stale.Format(time.RFC3339), "long ago")+"\n")
	assert.False(t, reader.RecentActivity(5*time.Minute))

	fresh := time.Now().UTC().Add(-time.Minute)
	writeFile(t, filepath.Join(logDir, "new.jsonl"),
		record("assistant", "a1", fresh.Format(time.RFC3339), "just now")+"\n")
	assert.True(t, reader.RecentActivity(5*time.Minute))
}

func TestSessionID_ActiveConversation(t *testing.T) {
	reader, logDir := newTestReader(t, "/home/alice/repo")

	older := filepath.Join(logDir, "older.jsonl")
	newer := filepath.Join(logDir, "newer.jsonl")
	writeFile(t, older, record("user", "u1", "2026-01-15T10:00:00Z", "a")+"\n")
	writeFile(t, newer, record("user", "u2", "2026-01-15T11:00:00Z", "b")+"\n")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	assert.Equal(t, newer, reader.ActiveConversation())
	assert.Equal(t, "newer", reader.SessionID())
}
