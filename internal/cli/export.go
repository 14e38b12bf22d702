package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/export"
	"github.com/wundervaflja/rat/internal/session"
)

var (
	exportOutput   string
	exportTools    bool
	exportThinking bool
)

var exportCmd = &cobra.Command{
	Use:   "export [md|html]",
	Short: "Export the AI conversation to markdown or HTML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "md"
		if len(args) > 0 {
			format = args[0]
		}
		if format != "md" && format != "html" {
			errorf("Invalid format '%s'. Use 'md' or 'html'", format)
			return fmt.Errorf("invalid format: %s", format)
		}

		dir := cwd()
		sess, err := trackerFor(dir).Load()
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			return err
		}

		var since time.Time
		if sess != nil {
			since = sess.CreatedAt
		}
		interactions := readerFor(dir).ReadAllInteractions(since, 0)
		if len(interactions) == 0 {
			fmt.Println(warnStyle.Render("No interactions found"))
			return nil
		}

		opts := export.Options{IncludeTools: exportTools, IncludeThinking: exportThinking}
		var content string
		if format == "md" {
			content = export.Markdown(sess, interactions, opts)
		} else {
			content = export.HTML(sess, interactions, opts)
		}

		output := exportOutput
		if output == "" {
			branch := "session"
			if sess != nil {
				branch = strings.ReplaceAll(sess.Branch, "/", "-")
			}
			stamp := time.Now().Format("20060102_150405")
			output = filepath.Join(dir, fmt.Sprintf("conversation_%s_%s.%s", branch, stamp, format))
		}

		if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("%s %s\n", okStyle.Render("Exported to:"), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().BoolVarP(&exportTools, "tools", "t", false, "Include tool calls")
	exportCmd.Flags().BoolVar(&exportThinking, "thinking", false, "Include thinking blocks")
	rootCmd.AddCommand(exportCmd)
}
