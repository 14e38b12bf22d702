package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/worktree"
)

var (
	newBase      string
	newNoBranch  bool
	newNoContext bool
)

var newCmd = &cobra.Command{
	Use:   "new <branch> [path]",
	Short: "Create a new worktree with AI context",
	Long: "Create a git worktree for parallel AI-assisted development.\n" +
		"Copies CLAUDE.local.md and initializes session tracking.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		manager := worktree.NewManager(dir)
		if !manager.Repo().HasCommits() {
			errorf("No commits yet")
			fmt.Println("Git worktrees require at least one commit.")
			fmt.Println(dimStyle.Render("Run: git add . && git commit -m 'Initial commit'"))
			return errors.New("no commits")
		}

		opts := worktree.CreateOptions{
			Base:             newBase,
			CheckoutExisting: newNoBranch,
			SkipContext:      newNoContext,
		}
		if len(args) > 1 {
			opts.Path = args[1]
		}

		wt, err := manager.Create(args[0], opts)
		if err != nil {
			return err
		}

		body := fmt.Sprintf("%s\n\n%s  %s\n%s    %s\n\n%s\n  %s\n  %s\n  %s",
			okStyle.Render("Worktree created"),
			boldStyle.Render("Branch:"), wt.Branch,
			boldStyle.Render("Path:"), wt.Path,
			dimStyle.Render("To switch to this worktree:"),
			cyanStyle.Render("cd "+wt.Path),
			dimStyle.Render("or"),
			cyanStyle.Render("rat switch "+wt.Branch),
		)
		fmt.Println(panel(body, colorGreen))
		return nil
	},
}

func init() {
	newCmd.Flags().StringVarP(&newBase, "base", "b", "", "Base branch/commit to create from")
	newCmd.Flags().BoolVar(&newNoBranch, "no-branch", false, "Checkout existing branch instead of creating new")
	newCmd.Flags().BoolVar(&newNoContext, "no-context", false, "Don't copy CLAUDE.local.md and other context files")
	rootCmd.AddCommand(newCmd)
}
