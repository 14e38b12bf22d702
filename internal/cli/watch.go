package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/watcher"
	"github.com/wundervaflja/rat/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream new Claude interactions live",
	Long:  "Watch the current project's conversation logs and print each\nnew interaction as it is written, until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()

		opts := []watcher.Option{watcher.WithDebounce(cfg.Debounce())}
		if cfg.ProjectsDir != "" {
			opts = append(opts, watcher.WithProjectsDir(cfg.ProjectsDir))
		}

		w, err := watcher.New(dir, printInteraction, opts...)
		if errors.Is(err, watcher.ErrNoConversations) {
			fmt.Println(warnStyle.Render("No Claude conversations found for this project"))
			return nil
		}
		if err != nil {
			return err
		}

		if err := w.Start(); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", dimStyle.Render("Watching"), w.Dir())
		fmt.Println(dimStyle.Render("Press Ctrl-C to stop"))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		if err := w.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop watcher cleanly")
		}

		stats := w.Stats()
		log.Info().
			Int64("extracted", stats.LinesExtracted).
			Int64("skipped", stats.LinesSkipped).
			Int64("reads", stats.IncrementalReads).
			Int64("resets", stats.OffsetResets).
			Msg("Watcher stopped")
		return nil
	},
}

// printInteraction renders one interaction as a role-colored line.
func printInteraction(interaction models.Interaction) {
	ts := interaction.Timestamp.Format("15:04:05")

	content := strings.TrimSpace(interaction.Content)
	if content == "" && len(interaction.ToolCalls) > 0 {
		names := make([]string, len(interaction.ToolCalls))
		for i, tc := range interaction.ToolCalls {
			names[i] = tc.Name
		}
		content = dimStyle.Render("[tools: " + strings.Join(names, ", ") + "]")
	}
	if first, _, more := strings.Cut(content, "\n"); more {
		content = first + dimStyle.Render(" …")
	}

	if interaction.Role == models.RoleUser {
		fmt.Printf("%s %s %s\n", dimStyle.Render(ts), cyanStyle.Render("user"), content)
		return
	}
	fmt.Printf("%s %s %s %s\n",
		dimStyle.Render(ts),
		okStyle.Render("assistant"),
		content,
		dimStyle.Render(fmt.Sprintf("(%d in / %d out)", interaction.TokensIn, interaction.TokensOut)),
	)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
