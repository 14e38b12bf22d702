package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/hints"
	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/internal/shell"
	"github.com/wundervaflja/rat/internal/worktree"
	"github.com/wundervaflja/rat/pkg/models"
)

// shellHintFeature keys the one-time shell integration tip.
const shellHintFeature = "shell-integration"

var switchPrintPath bool

var switchCmd = &cobra.Command{
	Use:   "switch [branch]",
	Short: "Switch to a different worktree",
	Long: "Switch to a different worktree. Without a branch, shows an\n" +
		"interactive fzf picker when fzf is installed.\n\n" +
		"For automatic directory changing, install shell integration:\n\n" +
		"    rat shell setup",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			if !switchPrintPath {
				errorf("Not in a git repository")
			}
			return errors.New("not a git repository")
		}

		worktrees, err := worktree.NewManager(dir).List()
		if err != nil {
			if !switchPrintPath {
				errorf("%v", err)
			}
			return err
		}
		if len(worktrees) == 0 {
			if !switchPrintPath {
				fmt.Println(warnStyle.Render("No worktrees found"))
			}
			return errors.New("no worktrees found")
		}

		branch := ""
		if len(args) > 0 {
			branch = args[0]
		} else {
			branch = pickWithFzf(worktrees)
			if branch == "" {
				if !switchPrintPath {
					fmt.Println(warnStyle.Render("No worktree selected"))
				}
				return nil
			}
		}

		var target *models.Worktree
		for i := range worktrees {
			if worktrees[i].Branch == branch || worktrees[i].Path == branch {
				target = &worktrees[i]
				break
			}
		}
		if target == nil {
			if !switchPrintPath {
				errorf("Worktree not found: %s", branch)
			}
			return fmt.Errorf("worktree not found: %s", branch)
		}

		if switchPrintPath {
			fmt.Println(target.Path)
			return nil
		}

		fmt.Printf("\n%s %s\n", boldStyle.Render("Switching to:"), target.Branch)
		fmt.Printf("%s %s\n", boldStyle.Render("Path:"), target.Path)

		if sess, err := trackerFor(target.Path).Load(); err == nil {
			fmt.Printf("%s %s\n", boldStyle.Render("Status:"), string(sess.Status))
			if sess.Metrics.Interactions > 0 {
				fmt.Printf("%s %d interactions, %s\n",
					boldStyle.Render("Session:"), sess.Metrics.Interactions, sess.CostDisplay())
			}
		} else if !errors.Is(err, session.ErrNoSession) {
			return err
		}

		fmt.Printf("\n%s\n", dimStyle.Render("Run: cd "+target.Path))
		showShellHint(hints.NewFileStore(""))
		return nil
	},
}

// showShellHint prints the shell integration tip once per machine, and
// only while the integration is not installed.
func showShellHint(store hints.Store) {
	if store.Seen(shellHintFeature) {
		return
	}
	detected := shell.Detect()
	if detected == "" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	if rc, err := shell.RCFile(home, detected); err == nil && shell.Installed(rc) {
		return
	}

	fmt.Println()
	fmt.Printf("%s Enable automatic directory switching:\n", warnStyle.Render("Tip:"))
	fmt.Printf("  %s\n", cyanStyle.Render("rat shell setup"))
	fmt.Println(dimStyle.Render(`Or add to your shell config: eval "$(rat shell init)"`))
	_ = store.MarkSeen(shellHintFeature)
}

// pickWithFzf runs the interactive worktree picker, returning the chosen
// branch or "" when fzf is unavailable or nothing was picked.
func pickWithFzf(worktrees []models.Worktree) string {
	if _, err := exec.LookPath("fzf"); err != nil {
		fmt.Println(warnStyle.Render("fzf not found. Please specify a branch."))
		fmt.Println(dimStyle.Render("Install fzf for interactive selection."))
		return ""
	}

	var lines []string
	for _, wt := range worktrees {
		marker := "  "
		if wt.IsMain {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("%s%s\t%s", marker, wt.Branch, wt.Path))
	}

	cmd := exec.Command("fzf", "--ansi", "--reverse", "--height=40%")
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return ""
	}

	selection := strings.TrimSpace(string(out))
	selection = strings.TrimLeft(selection, "* ")
	branch, _, _ := strings.Cut(selection, "\t")
	return strings.TrimSpace(branch)
}

func init() {
	switchCmd.Flags().BoolVarP(&switchPrintPath, "print-path", "p", false, "Print path only (for shell integration)")
	rootCmd.AddCommand(switchCmd)
}
