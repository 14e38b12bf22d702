package models

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// SessionMetrics aggregates interactions read from Claude's conversation
// files. Interactions, TokensIn and TokensOut count assistant turns only;
// FirstTimestamp and LastTimestamp span both roles.
type SessionMetrics struct {
	Interactions   int        `json:"interactions"`
	TokensIn       int        `json:"tokens_in"`
	TokensOut      int        `json:"tokens_out"`
	CostUSD        float64    `json:"cost_usd"`
	FirstTimestamp *time.Time `json:"first_timestamp,omitempty"`
	LastTimestamp  *time.Time `json:"last_timestamp,omitempty"`
	ModelsUsed     []string   `json:"models_used,omitempty"`
}

// DurationSeconds is the wall-clock span between the first and last
// observed interaction, or 0 when either end is missing.
func (m *SessionMetrics) DurationSeconds() int {
	if m.FirstTimestamp == nil || m.LastTimestamp == nil {
		return 0
	}
	return int(m.LastTimestamp.Sub(*m.FirstTimestamp).Seconds())
}

// TotalTokens is the sum of input and output tokens.
func (m *SessionMetrics) TotalTokens() int {
	return m.TokensIn + m.TokensOut
}

// AddModel records a model name, keeping ModelsUsed sorted and free of
// duplicates.
func (m *SessionMetrics) AddModel(model string) {
	if model == "" {
		return
	}
	idx := sort.SearchStrings(m.ModelsUsed, model)
	if idx < len(m.ModelsUsed) && m.ModelsUsed[idx] == model {
		return
	}
	m.ModelsUsed = append(m.ModelsUsed, "")
	copy(m.ModelsUsed[idx+1:], m.ModelsUsed[idx:])
	m.ModelsUsed[idx] = model
}

// Observe widens the first/last timestamp span to include ts.
func (m *SessionMetrics) Observe(ts time.Time) {
	if m.FirstTimestamp == nil || ts.Before(*m.FirstTimestamp) {
		t := ts
		m.FirstTimestamp = &t
	}
	if m.LastTimestamp == nil || ts.After(*m.LastTimestamp) {
		t := ts
		m.LastTimestamp = &t
	}
}

// Merge folds other into m. The fold is commutative, so per-file partial
// metrics can be merged in any order.
func (m *SessionMetrics) Merge(other SessionMetrics) {
	m.Interactions += other.Interactions
	m.TokensIn += other.TokensIn
	m.TokensOut += other.TokensOut
	m.CostUSD += other.CostUSD
	if other.FirstTimestamp != nil {
		m.Observe(*other.FirstTimestamp)
	}
	if other.LastTimestamp != nil {
		m.Observe(*other.LastTimestamp)
	}
	for _, model := range other.ModelsUsed {
		m.AddModel(model)
	}
}

// MarshalJSON includes the derived duration_seconds field so the persisted
// session document matches the schema consumers expect.
func (m SessionMetrics) MarshalJSON() ([]byte, error) {
	type alias SessionMetrics
	return json.Marshal(struct {
		alias
		DurationSeconds int `json:"duration_seconds"`
	}{
		alias:           alias(m),
		DurationSeconds: m.DurationSeconds(),
	})
}

// UnmarshalJSON accepts the persisted form, discarding the derived
// duration_seconds field (it is recomputed from the timestamps).
func (m *SessionMetrics) UnmarshalJSON(data []byte) error {
	type alias SessionMetrics
	var aux struct {
		alias
		DurationSeconds int `json:"duration_seconds"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = SessionMetrics(aux.alias)
	return nil
}
