package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/internal/worktree"
	"github.com/wundervaflja/rat/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all worktrees with AI session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		worktrees, err := worktree.NewManager(dir).List()
		if err != nil {
			return err
		}
		if len(worktrees) == 0 {
			fmt.Println(warnStyle.Render("No worktrees found"))
			return nil
		}

		t := table.New().
			Headers("Branch", "Path", "Status", "Duration", "Cost", "Interactions")

		for _, wt := range worktrees {
			var sess *models.WorktreeSession
			tracker := trackerFor(wt.Path)
			if tracker.HasSession() {
				if loaded, err := tracker.Load(); err == nil {
					sess = loaded
				} else if !errors.Is(err, session.ErrNoSession) {
					return err
				}
			}

			branch := wt.Branch
			if wt.IsMain {
				branch += " " + dimStyle.Render("(main)")
			}
			if wt.Path == dir {
				branch = boldStyle.Render(branch) + " *"
			}

			if sess == nil {
				dash := dimStyle.Render("-")
				t.Row(branch, wt.Path, dash, dash, dash, dash)
				continue
			}
			t.Row(branch, wt.Path,
				statusBadge(sess.Status),
				sess.DurationDisplay(),
				sess.CostDisplay(),
				strconv.Itoa(sess.Metrics.Interactions),
			)
		}

		fmt.Println(boldStyle.Render("Worktrees"))
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
