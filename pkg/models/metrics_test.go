package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMetrics_DurationAndTotals(t *testing.T) {
	var m SessionMetrics
	assert.Equal(t, 0, m.DurationSeconds())
	assert.Equal(t, 0, m.TotalTokens())

	first := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m.Observe(first)
	assert.Equal(t, 0, m.DurationSeconds())

	m.Observe(first.Add(90 * time.Second))
	m.TokensIn = 100
	m.TokensOut = 50
	assert.Equal(t, 90, m.DurationSeconds())
	assert.Equal(t, 150, m.TotalTokens())
}

func TestSessionMetrics_Observe(t *testing.T) {
	var m SessionMetrics
	mid := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	early := mid.Add(-time.Hour)
	late := mid.Add(time.Hour)

	m.Observe(mid)
	m.Observe(late)
	m.Observe(early)
	m.Observe(mid) // inside the span, no effect

	assert.True(t, m.FirstTimestamp.Equal(early))
	assert.True(t, m.LastTimestamp.Equal(late))
}

func TestSessionMetrics_AddModel(t *testing.T) {
	var m SessionMetrics
	m.AddModel("claude-sonnet-4")
	m.AddModel("claude-haiku-3")
	m.AddModel("claude-sonnet-4")
	m.AddModel("")

	assert.Equal(t, []string{"claude-haiku-3", "claude-sonnet-4"}, m.ModelsUsed)
}

func TestSessionMetrics_MergeIsCommutative(t *testing.T) {
	t0 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	a := SessionMetrics{Interactions: 2, TokensIn: 100, TokensOut: 10, CostUSD: 0.5,
		FirstTimestamp: &t1, LastTimestamp: &t1, ModelsUsed: []string{"claude-sonnet-4"}}
	b := SessionMetrics{Interactions: 3, TokensIn: 50, TokensOut: 20, CostUSD: 0.25,
		FirstTimestamp: &t0, LastTimestamp: &t0, ModelsUsed: []string{"claude-haiku-3"}}

	var ab SessionMetrics
	ab.Merge(a)
	ab.Merge(b)
	var ba SessionMetrics
	ba.Merge(b)
	ba.Merge(a)

	for _, m := range []SessionMetrics{ab, ba} {
		assert.Equal(t, 5, m.Interactions)
		assert.Equal(t, 150, m.TokensIn)
		assert.Equal(t, 30, m.TokensOut)
		assert.InDelta(t, 0.75, m.CostUSD, 1e-9)
		assert.True(t, m.FirstTimestamp.Equal(t0))
		assert.True(t, m.LastTimestamp.Equal(t1))
		assert.Equal(t, []string{"claude-haiku-3", "claude-sonnet-4"}, m.ModelsUsed)
	}
}

func TestSessionMetrics_JSONIncludesDerivedDuration(t *testing.T) {
	first := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	last := first.Add(2 * time.Minute)
	m := SessionMetrics{Interactions: 1, TokensIn: 10, TokensOut: 5,
		FirstTimestamp: &first, LastTimestamp: &last}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration_seconds":120`)

	var back SessionMetrics
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Interactions, back.Interactions)
	assert.Equal(t, 120, back.DurationSeconds())
}

func TestWorktreeSession_Displays(t *testing.T) {
	first := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	mk := func(span time.Duration) *WorktreeSession {
		last := first.Add(span)
		return &WorktreeSession{Metrics: SessionMetrics{
			FirstTimestamp: &first, LastTimestamp: &last, CostUSD: 1.234,
		}}
	}

	assert.Equal(t, "45s", mk(45*time.Second).DurationDisplay())
	assert.Equal(t, "12m", mk(12*time.Minute+30*time.Second).DurationDisplay())
	assert.Equal(t, "2h 5m", mk(2*time.Hour+5*time.Minute).DurationDisplay())
	assert.Equal(t, "$1.23", mk(time.Minute).CostDisplay())
}

func TestWorktree_Name(t *testing.T) {
	w := Worktree{Path: "/home/alice/repo.feature-auth"}
	assert.Equal(t, "repo.feature-auth", w.Name())
}
