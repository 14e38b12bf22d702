package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/export"
	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/internal/worktree"
)

var (
	mergeSquash bool
	mergeDelete bool
	mergeTarget string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the current branch to main with AI session context",
	Long:  "Merge the current branch into the target branch from the main\nworktree, with the session summary in the commit message.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		repo := worktree.NewRepo(dir)
		branch := repo.CurrentBranch()
		if branch == "main" || branch == "master" {
			errorf("Already on main/master branch")
			return errors.New("already on main/master")
		}

		sess, err := trackerFor(dir).Load()
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			return err
		}
		var since time.Time
		if sess != nil {
			since = sess.CreatedAt
		}
		interactions := readerFor(dir).ReadAllInteractions(since, 0)
		commitMsg := export.CommitMessage(sess, interactions, branch)

		mainPath, err := worktree.NewManager(dir).MainWorktree()
		if err != nil {
			return err
		}

		if !repo.IsClean() {
			errorf("Uncommitted changes in worktree")
			fmt.Println(dimStyle.Render("Commit or stash changes first"))
			return errors.New("worktree dirty")
		}

		fmt.Println(warnStyle.Render(fmt.Sprintf("Merging %s into %s...", branch, mergeTarget)))

		main := worktree.NewRepo(mainPath)
		_, _ = main.Git("fetch", "origin", branch)

		if _, err := main.Git("checkout", mergeTarget); err != nil {
			if _, err := main.Git("checkout", "-b", mergeTarget); err != nil {
				errorf("Cannot checkout %s", mergeTarget)
				return err
			}
		}
		_, _ = main.Git("pull", "--ff-only")

		if mergeSquash {
			if _, err := main.Git("merge", "--squash", branch); err != nil {
				errorf("Merge conflict: %v", err)
				fmt.Println(dimStyle.Render("Resolve conflicts in " + mainPath))
				return err
			}
			if _, err := main.Git("commit", "-m", commitMsg); err != nil {
				errorf("Error committing: %v", err)
				return err
			}
		} else {
			if _, err := main.Git("merge", branch, "-m", commitMsg); err != nil {
				errorf("Merge conflict: %v", err)
				fmt.Println(dimStyle.Render("Resolve conflicts in " + mainPath))
				return err
			}
		}

		fmt.Println(okStyle.Render(fmt.Sprintf("Merged %s into %s", branch, mergeTarget)))

		if mergeDelete {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Removing worktree %s...", branch)))
			if _, err := main.Git("worktree", "remove", dir); err != nil {
				fmt.Printf("%s Could not remove worktree: %v\n", warnStyle.Render("Warning:"), err)
			} else {
				fmt.Println(okStyle.Render("Worktree removed"))
			}
			_, _ = main.Git("branch", "-d", branch)
		}

		fmt.Printf("\n%s\n", dimStyle.Render("Main worktree: "+mainPath))
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVarP(&mergeSquash, "squash", "s", true, "Squash commits into one")
	mergeCmd.Flags().BoolVarP(&mergeDelete, "delete", "d", false, "Delete worktree after merge")
	mergeCmd.Flags().StringVarP(&mergeTarget, "target", "t", "main", "Target branch to merge into")
	rootCmd.AddCommand(mergeCmd)
}
