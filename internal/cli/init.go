package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/worktree"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize session tracking in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not a git repository")
			fmt.Println("Run 'git init' first or navigate to a git repository.")
			return errors.New("not a git repository")
		}

		if _, err := os.Stat(filepath.Join(dir, ".rat")); err == nil {
			fmt.Println(warnStyle.Render("Already initialized"))
			fmt.Printf("Session file at %s\n", filepath.Join(dir, ".rat", "session.json"))
			return nil
		}

		branch := worktree.NewRepo(dir).CurrentBranch()
		sess, err := trackerFor(dir).Create(branch, "")
		if err != nil {
			return err
		}

		updateGitignore(filepath.Join(dir, ".gitignore"))

		body := fmt.Sprintf("%s\n\n%s %s\n%s %s\n\n%s\n%s\n\n%s\n  %s   Create parallel worktree\n  %s          List all worktrees\n  %s        Switch between worktrees",
			okStyle.Render("Initialized in "+filepath.Base(dir)),
			boldStyle.Render("Branch:"), branch,
			boldStyle.Render("Session:"), string(sess.Status),
			dimStyle.Render("Session tracking is now enabled."),
			dimStyle.Render("Use 'rat status' to view session metrics."),
			boldStyle.Render("Worktree commands:"),
			cyanStyle.Render("rat new <branch>"),
			cyanStyle.Render("rat list"),
			cyanStyle.Render("rat switch"),
		)
		fmt.Println(panel(body, colorGreen))
		return nil
	},
}

// updateGitignore appends rat's local state entries once.
func updateGitignore(path string) {
	entries := ".rat/\n.claude-session-id\n"

	data, err := os.ReadFile(path)
	if err == nil {
		content := string(data)
		if strings.Contains(content, ".rat/") {
			return
		}
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		_ = os.WriteFile(path, []byte(content+"\n"+entries), 0o644)
		return
	}
	_ = os.WriteFile(path, []byte(entries), 0o644)
}

func init() {
	rootCmd.AddCommand(initCmd)
}
