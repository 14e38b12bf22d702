package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/worktree"
)

var (
	removeForce bool
	removeYes   bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <branch>",
	Short: "Remove a worktree",
	Long:  "Remove the git worktree and its directory. Use --force to\nremove worktrees with uncommitted changes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		branch := args[0]
		manager := worktree.NewManager(dir)

		target, err := manager.FindByBranch(branch)
		if err != nil {
			errorf("Worktree not found: %s", branch)
			return err
		}
		if target.IsMain {
			errorf("Cannot remove main worktree")
			return worktree.ErrMainWorktree
		}

		if !removeYes {
			fmt.Printf("%s This will remove:\n", warnStyle.Render("Warning:"))
			fmt.Printf("  Branch: %s\n", target.Branch)
			fmt.Printf("  Path: %s\n\n", target.Path)
			if !confirm("Are you sure you want to remove this worktree?") {
				fmt.Println(dimStyle.Render("Cancelled"))
				return nil
			}
		}

		if err := manager.Remove(branch, removeForce); err != nil {
			errorf("%v", err)
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "uncommitted changes") || strings.Contains(msg, "dirty") {
				fmt.Println(dimStyle.Render("Use --force to remove anyway"))
			}
			return err
		}

		fmt.Printf("%s %s\n", okStyle.Render("Removed worktree:"), branch)
		return nil
	},
}

// confirm asks a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Force removal even if worktree is dirty")
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(removeCmd)
}
