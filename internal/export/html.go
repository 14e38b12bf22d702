package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wundervaflja/rat/pkg/models"
)

// markdown converter shared by all exports; the configuration never
// changes and goldmark parsers are safe to share.
var (
	mdOnce sync.Once
	md     goldmark.Markdown
)

func converter() goldmark.Markdown {
	mdOnce.Do(func() {
		md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return md
}

// renderMarkdown converts message markdown into HTML. On conversion
// failure the content falls back to an escaped preformatted block.
func renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(source), &buf); err != nil {
		return "<pre>" + html.EscapeString(source) + "</pre>"
	}
	return buf.String()
}

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AI Conversation Export</title>
    <style>
        * { box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 900px;
            margin: 0 auto;
            padding: 20px;
            background: #f5f5f5;
            color: #333;
        }
        h1 { color: #1a1a1a; border-bottom: 2px solid #ddd; padding-bottom: 10px; }
        .session-info {
            background: #fff;
            padding: 15px 20px;
            border-radius: 8px;
            margin-bottom: 20px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.1);
        }
        .session-info h2 { margin-top: 0; }
        .session-info ul { list-style: none; padding: 0; margin: 0; }
        .session-info li { padding: 5px 0; }
        .message {
            background: #fff;
            padding: 15px 20px;
            border-radius: 8px;
            margin-bottom: 15px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.1);
        }
        .message.user { border-left: 4px solid #007bff; }
        .message.assistant { border-left: 4px solid #28a745; }
        .message-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 10px;
            padding-bottom: 10px;
            border-bottom: 1px solid #eee;
        }
        .message-role { font-weight: bold; font-size: 1.1em; }
        .message-meta { color: #666; font-size: 0.85em; }
        .message-content { line-height: 1.6; }
        .message-content code {
            background: #f0f0f0;
            padding: 2px 6px;
            border-radius: 3px;
            font-family: 'SF Mono', Consolas, monospace;
        }
        .message-content pre {
            background: #1e1e1e;
            color: #d4d4d4;
            padding: 15px;
            border-radius: 6px;
            overflow-x: auto;
        }
        .message-content pre code { background: none; padding: 0; }
        details {
            margin-top: 10px;
            padding: 10px;
            background: #f9f9f9;
            border-radius: 4px;
        }
        details summary {
            cursor: pointer;
            font-weight: 500;
            color: #555;
        }
        .thinking { background: #fff8e1; }
        .tools { background: #e3f2fd; }
    </style>
</head>
<body>
    <h1>AI Conversation Export</h1>
`

// HTML renders a self-contained transcript document. Message bodies are
// converted from markdown via goldmark; metadata is escaped verbatim.
func HTML(session *models.WorktreeSession, interactions []models.Interaction, opts Options) string {
	var b strings.Builder
	b.WriteString(htmlHeader)

	if session != nil {
		b.WriteString("    <div class=\"session-info\">\n        <h2>Session Info</h2>\n        <ul>\n")
		fmt.Fprintf(&b, "            <li><strong>Branch:</strong> %s</li>\n", html.EscapeString(session.Branch))
		fmt.Fprintf(&b, "            <li><strong>Duration:</strong> %s</li>\n", session.DurationDisplay())
		fmt.Fprintf(&b, "            <li><strong>Interactions:</strong> %d</li>\n", session.Metrics.Interactions)
		fmt.Fprintf(&b, "            <li><strong>Tokens:</strong> %d (%d in / %d out)</li>\n",
			session.Metrics.TotalTokens(), session.Metrics.TokensIn, session.Metrics.TokensOut)
		b.WriteString("        </ul>\n    </div>\n")
	}

	b.WriteString("    <h2>Conversation</h2>\n")

	for i := len(interactions) - 1; i >= 0; i-- {
		interaction := &interactions[i]
		if skipEmpty(interaction, opts) {
			continue
		}

		ts := interaction.Timestamp.Format(timeLayout)
		roleClass := "assistant"
		roleLabel := "Assistant"
		meta := ts
		if interaction.Role == models.RoleUser {
			roleClass = "user"
			roleLabel = "User"
		} else {
			model := interaction.Model
			if model == "" {
				model = "unknown"
			}
			roleLabel = fmt.Sprintf("Assistant (%s)", html.EscapeString(model))
			meta = fmt.Sprintf("%s — %d in / %d out", ts, interaction.TokensIn, interaction.TokensOut)
		}

		fmt.Fprintf(&b, "    <div class=\"message %s\">\n", roleClass)
		b.WriteString("        <div class=\"message-header\">\n")
		fmt.Fprintf(&b, "            <span class=\"message-role\">%s</span>\n", roleLabel)
		fmt.Fprintf(&b, "            <span class=\"message-meta\">%s</span>\n", meta)
		b.WriteString("        </div>\n")

		if opts.IncludeThinking && interaction.Thinking != "" {
			b.WriteString("        <details class=\"thinking\">\n            <summary>Thinking</summary>\n")
			fmt.Fprintf(&b, "            <pre><code>%s</code></pre>\n", html.EscapeString(interaction.Thinking))
			b.WriteString("        </details>\n")
		}

		if content := strings.TrimSpace(interaction.Content); content != "" {
			fmt.Fprintf(&b, "        <div class=\"message-content\">%s</div>\n", renderMarkdown(content))
		}

		if opts.IncludeTools && len(interaction.ToolCalls) > 0 {
			b.WriteString("        <details class=\"tools\">\n            <summary>Tool Calls</summary>\n")
			for _, tc := range interaction.ToolCalls {
				name := tc.Name
				if name == "" {
					name = "unknown"
				}
				fmt.Fprintf(&b, "            <p><strong>%s</strong></p>\n", html.EscapeString(name))
				fmt.Fprintf(&b, "            <pre><code>%s</code></pre>\n", html.EscapeString(indentJSON(tc.Input)))
			}
			b.WriteString("        </details>\n")
		}

		b.WriteString("    </div>\n")
	}

	fmt.Fprintf(&b, `
    <footer style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; color: #666; text-align: center;">
        Exported on %s by rat
    </footer>
</body>
</html>
`, time.Now().Format(timeLayout))

	return b.String()
}
