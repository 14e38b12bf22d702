package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/internal/worktree"
	"github.com/wundervaflja/rat/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current worktree's AI session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		tracker := trackerFor(dir)
		sess, err := tracker.Load()
		if errors.Is(err, session.ErrNoSession) {
			body := fmt.Sprintf("%s\n\n%s\n\nTo start tracking:\n  %s  Create a new worktree\n  %s          Initialize in current directory",
				logoStyle.Render(logo),
				warnStyle.Render("No session found"),
				cyanStyle.Render("rat new <branch>"),
				cyanStyle.Render("rat init"),
			)
			fmt.Println(panel(body, colorYellow))
			return nil
		}
		if err != nil {
			return err
		}

		worktreeName := dir
		if current, err := worktree.NewManager(dir).Current(); err == nil {
			worktreeName = current.Branch
		}

		status := statusBadge(sess.Status)
		if sess.Status == models.SessionStatusActive {
			status += " (Claude running)"
		}
		sessionID := sess.ID
		if sessionID == "" {
			sessionID = dimStyle.Render("not started")
		}

		var b strings.Builder
		b.WriteString(logoStyle.Render(logo))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s  %s\n", boldStyle.Render("Worktree:"), worktreeName)
		fmt.Fprintf(&b, "%s   %s\n", boldStyle.Render("Session:"), sessionID)
		fmt.Fprintf(&b, "%s    %s\n", boldStyle.Render("Status:"), status)
		fmt.Fprintf(&b, "%s  %s\n", boldStyle.Render("Duration:"), sess.DurationDisplay())
		fmt.Fprintf(&b, "%s    %d (%d in / %d out)",
			boldStyle.Render("Tokens:"), sess.Metrics.TotalTokens(), sess.Metrics.TokensIn, sess.Metrics.TokensOut)

		planFile := sess.PlanFile
		if planFile == "" {
			planFile = tracker.PlanFile()
		}
		if planFile != "" {
			fmt.Fprintf(&b, "\n%s      %s", boldStyle.Render("Plan:"), planFile)
		}

		fmt.Println(panel(b.String(), statusBorder(sess.Status)))

		if sess.Metrics.Interactions > 0 {
			t := table.New().Headers("Metric", "Value")
			t.Row("Interactions", strconv.Itoa(sess.Metrics.Interactions))
			t.Row("Tokens (in)", strconv.Itoa(sess.Metrics.TokensIn))
			t.Row("Tokens (out)", strconv.Itoa(sess.Metrics.TokensOut))
			t.Row("Duration", sess.DurationDisplay())
			if len(sess.Metrics.ModelsUsed) > 0 {
				t.Row("Models", strings.Join(sess.Metrics.ModelsUsed, ", "))
			}
			fmt.Println()
			fmt.Println(boldStyle.Render("Session Statistics"))
			fmt.Println(t.Render())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
