// Package export renders conversation transcripts and session summaries
// for humans: markdown and HTML documents, commit messages, and PR bodies.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/wundervaflja/rat/pkg/models"
)

// Options control what a transcript export includes.
type Options struct {
	IncludeTools    bool
	IncludeThinking bool
}

const timeLayout = "2006-01-02 15:04:05"

// Markdown renders a transcript document. interactions are expected
// newest first, as returned by the reader; the document shows them in
// chronological order.
func Markdown(session *models.WorktreeSession, interactions []models.Interaction, opts Options) string {
	var b strings.Builder

	b.WriteString("# AI Conversation Export\n\n")
	fmt.Fprintf(&b, "**Exported**: %s\n\n", time.Now().Format(timeLayout))

	if session != nil {
		b.WriteString("## Session Info\n\n")
		fmt.Fprintf(&b, "- **Branch**: %s\n", session.Branch)
		fmt.Fprintf(&b, "- **Duration**: %s\n", session.DurationDisplay())
		fmt.Fprintf(&b, "- **Interactions**: %d\n", session.Metrics.Interactions)
		fmt.Fprintf(&b, "- **Tokens**: %d (%d in / %d out)\n",
			session.Metrics.TotalTokens(), session.Metrics.TokensIn, session.Metrics.TokensOut)
		if len(session.Metrics.ModelsUsed) > 0 {
			fmt.Fprintf(&b, "- **Models**: %s\n", strings.Join(session.Metrics.ModelsUsed, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conversation\n\n")

	for i := len(interactions) - 1; i >= 0; i-- {
		interaction := &interactions[i]
		if skipEmpty(interaction, opts) {
			continue
		}

		ts := interaction.Timestamp.Format(timeLayout)
		if interaction.Role == models.RoleUser {
			b.WriteString("### 👤 User\n")
			fmt.Fprintf(&b, "*%s*\n\n", ts)
		} else {
			model := interaction.Model
			if model == "" {
				model = "unknown"
			}
			fmt.Fprintf(&b, "### 🤖 Assistant (%s)\n", model)
			fmt.Fprintf(&b, "*%s* - %d in / %d out\n\n", ts, interaction.TokensIn, interaction.TokensOut)
		}

		if opts.IncludeThinking && interaction.Thinking != "" {
			b.WriteString("<details>\n<summary>Thinking</summary>\n\n```\n")
			b.WriteString(interaction.Thinking)
			b.WriteString("\n```\n\n</details>\n\n")
		}

		if content := strings.TrimSpace(interaction.Content); content != "" {
			b.WriteString(content)
			b.WriteString("\n\n")
		}

		if opts.IncludeTools && len(interaction.ToolCalls) > 0 {
			b.WriteString("<details>\n<summary>Tool Calls</summary>\n\n")
			for _, tc := range interaction.ToolCalls {
				name := tc.Name
				if name == "" {
					name = "unknown"
				}
				fmt.Fprintf(&b, "**%s**\n```json\n%s\n```\n\n", name, indentJSON(tc.Input))
			}
			b.WriteString("</details>\n\n")
		}

		b.WriteString("---\n\n")
	}

	return b.String()
}

// skipEmpty reports whether an interaction renders to nothing under the
// given options.
func skipEmpty(interaction *models.Interaction, opts Options) bool {
	if strings.TrimSpace(interaction.Content) != "" {
		return false
	}
	if opts.IncludeTools && len(interaction.ToolCalls) > 0 {
		return false
	}
	if opts.IncludeThinking && interaction.Thinking != "" {
		return false
	}
	return true
}

// indentJSON pretty-prints a raw payload, falling back to the raw bytes.
func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}
