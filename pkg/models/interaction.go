// Package models contains domain models for rat.
package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Role of a conversation turn as recorded in Claude's JSONL logs.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCall is one tool invocation recorded in an assistant turn. Input is
// kept as raw JSON so the payload round-trips verbatim through exports.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Interaction is one user or assistant turn extracted from a conversation
// log line. Immutable after extraction.
type Interaction struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Timestamp time.Time  `json:"timestamp"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Model     string     `json:"model,omitempty"`
	TokensIn  int        `json:"tokens_in"`
	TokensOut int        `json:"tokens_out"`
	CostUSD   float64    `json:"cost_usd,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Thinking  string     `json:"thinking,omitempty"`
}

// IsAssistant reports whether this turn was produced by the model.
func (i *Interaction) IsAssistant() bool {
	return i.Role == RoleAssistant
}
