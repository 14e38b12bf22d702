// Package claude reads Claude Code's append-only JSONL conversation logs:
// extracting interactions from raw records, tailing files incrementally,
// and aggregating session metrics on demand.
package claude

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/wundervaflja/rat/pkg/models"
)

// rawEntry mirrors one line of a conversation JSONL file. Only the fields
// consumed here are declared; everything else is ignored by the decoder.
type rawEntry struct {
	Type      string     `json:"type"`
	UUID      string     `json:"uuid"`
	SessionID string     `json:"sessionId"`
	Timestamp string     `json:"timestamp"`
	CostUSD   float64    `json:"costUSD"`
	Message   rawMessage `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   rawUsage        `json:"usage"`
}

type rawUsage struct {
	InputTokens          int `json:"input_tokens"`
	OutputTokens         int `json:"output_tokens"`
	CacheReadInputTokens int `json:"cache_read_input_tokens"`
}

// rawBlock is one element of a typed content list. The discriminator is
// Type: "text", "tool_use" or "thinking".
type rawBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
	Thinking string          `json:"thinking"`
}

// ExtractLine parses one JSONL line into an Interaction. It returns nil for
// blank lines, malformed JSON, and records whose type is not a user or
// assistant turn; callers skip those and continue with the next line.
func ExtractLine(line []byte) *models.Interaction {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var entry rawEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil
	}
	return extract(&entry)
}

// extract normalizes a decoded record into an Interaction, or returns nil
// if the record is not a conversation turn.
func extract(entry *rawEntry) *models.Interaction {
	if entry.Type != models.RoleUser && entry.Type != models.RoleAssistant {
		return nil
	}

	role := entry.Message.Role
	if role == "" {
		role = entry.Type
	}

	content, toolCalls, thinking := normalizeContent(entry.Message.Content)

	// Cache reads are billed as input, so they count toward tokens in.
	tokensIn := entry.Message.Usage.InputTokens + entry.Message.Usage.CacheReadInputTokens

	return &models.Interaction{
		ID:        entry.UUID,
		SessionID: entry.SessionID,
		Timestamp: parseTimestamp(entry.Timestamp),
		Role:      role,
		Content:   content,
		Model:     entry.Message.Model,
		TokensIn:  tokensIn,
		TokensOut: entry.Message.Usage.OutputTokens,
		CostUSD:   entry.CostUSD,
		ToolCalls: toolCalls,
		Thinking:  thinking,
	}
}

// normalizeContent handles the polymorphic message content: either a plain
// string or a list of typed blocks. Text blocks are newline-joined, tool_use
// blocks are collected in order, and the last thinking block wins (earlier
// ones in the same record are discarded, matching the log producer).
func normalizeContent(raw json.RawMessage) (string, []models.ToolCall, string) {
	if len(raw) == 0 {
		return "", nil, ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil, ""
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return string(raw), nil, ""
	}

	var (
		textParts []string
		toolCalls []models.ToolCall
		thinking  string
	)
	for _, b := range blocks {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			textParts = append(textParts, s)
			continue
		}

		var block rawBlock
		if err := json.Unmarshal(b, &block); err != nil {
			continue
		}
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			toolCalls = append(toolCalls, models.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
		case "thinking":
			thinking = block.Thinking
		}
	}

	return strings.Join(textParts, "\n"), toolCalls, thinking
}

// parseTimestamp accepts ISO-8601 with a trailing Z. An unparseable
// timestamp falls back to the current UTC instant so the record stays in
// the stream rather than being rejected.
func parseTimestamp(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}
