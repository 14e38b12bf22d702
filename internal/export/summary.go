package export

import (
	"fmt"
	"strings"

	"github.com/wundervaflja/rat/pkg/models"
)

// TitleFromBranch turns a branch name into a human title, e.g.
// "feature/user-auth" becomes "Feature: User Auth".
func TitleFromBranch(branch string) string {
	s := strings.ReplaceAll(branch, "-", " ")
	s = strings.ReplaceAll(s, "/", ": ")

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

// CommitMessage builds a merge commit message carrying the session
// summary and the tail of the conversation. interactions are expected
// newest first; the last 20 turns render chronologically, each truncated
// to 500 characters.
func CommitMessage(session *models.WorktreeSession, interactions []models.Interaction, branch string) string {
	var b strings.Builder

	b.WriteString(TitleFromBranch(branch))
	b.WriteString("\n\n")

	if session != nil {
		b.WriteString("AI Session:\n")
		fmt.Fprintf(&b, "  Duration: %s\n", session.DurationDisplay())
		fmt.Fprintf(&b, "  Interactions: %d\n", session.Metrics.Interactions)
		fmt.Fprintf(&b, "  Tokens: %d\n", session.Metrics.TotalTokens())
		fmt.Fprintf(&b, "  Cost: %s\n", session.CostDisplay())
		b.WriteString("\n")
	}

	tail := interactions
	if len(tail) > 20 {
		tail = tail[:20]
	}
	if len(tail) > 0 {
		b.WriteString("Conversation:\n\n")
		for i := len(tail) - 1; i >= 0; i-- {
			interaction := &tail[i]
			content := strings.TrimSpace(interaction.Content)
			if content == "" {
				continue
			}
			if len(content) > 500 {
				content = content[:500] + "..."
			}

			prefix := "Assistant:"
			if interaction.Role == models.RoleUser {
				prefix = "User:"
			}
			fmt.Fprintf(&b, "  %s\n", prefix)
			fmt.Fprintf(&b, "    %s\n\n", strings.ReplaceAll(content, "\n", "\n  "))
		}
	}

	b.WriteString("---\nGenerated by rat")
	return b.String()
}

// PRBody builds a pull request description with session metrics and a
// collapsible conversation history. interactions are expected newest
// first; the last 50 turns render chronologically.
func PRBody(session *models.WorktreeSession, interactions []models.Interaction, branch string) string {
	var b strings.Builder

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "Branch: `%s`\n\n", branch)

	if session != nil {
		b.WriteString("## AI Session Metrics\n\n")
		fmt.Fprintf(&b, "- **Duration**: %s\n", session.DurationDisplay())
		fmt.Fprintf(&b, "- **Interactions**: %d\n", session.Metrics.Interactions)
		fmt.Fprintf(&b, "- **Tokens**: %d (%d in / %d out)\n",
			session.Metrics.TotalTokens(), session.Metrics.TokensIn, session.Metrics.TokensOut)
		fmt.Fprintf(&b, "- **Cost**: %s\n", session.CostDisplay())
		if len(session.Metrics.ModelsUsed) > 0 {
			fmt.Fprintf(&b, "- **Models**: %s\n", strings.Join(session.Metrics.ModelsUsed, ", "))
		}
		b.WriteString("\n")
	}

	tail := interactions
	if len(tail) > 50 {
		tail = tail[:50]
	}
	if len(tail) > 0 {
		b.WriteString("## AI Conversation\n\n")
		b.WriteString("<details>\n<summary>Click to expand conversation history</summary>\n\n")

		for i := len(tail) - 1; i >= 0; i-- {
			interaction := &tail[i]

			if interaction.Role == models.RoleUser {
				b.WriteString("### 👤 User\n\n")
			} else {
				b.WriteString("### 🤖 Assistant\n\n")
			}

			content := strings.TrimSpace(interaction.Content)
			if len(content) > 2000 {
				content = content[:2000] + "\n\n*[truncated]*"
			}
			if content != "" {
				b.WriteString(content)
			} else {
				b.WriteString("*[tool calls only]*")
			}
			b.WriteString("\n\n")

			if len(interaction.ToolCalls) > 0 {
				b.WriteString("<details>\n<summary>Tool calls</summary>\n\n")
				calls := interaction.ToolCalls
				if len(calls) > 10 {
					calls = calls[:10]
				}
				for _, tc := range calls {
					name := tc.Name
					if name == "" {
						name = "unknown"
					}
					fmt.Fprintf(&b, "- `%s`\n", name)
				}
				b.WriteString("\n</details>\n\n")
			}
		}

		b.WriteString("</details>\n\n")
	}

	b.WriteString("---\n*Generated by rat*")
	return b.String()
}
