package cli

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/export"
	"github.com/wundervaflja/rat/internal/session"
	"github.com/wundervaflja/rat/internal/worktree"
)

var (
	prTitle string
	prDraft bool
	prPush  bool
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Create a GitHub PR with AI session context",
	Long:  "Push the current branch and create a PR with the session summary\nand interaction history in the description. Requires the gh CLI.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cwd()
		if !isGitRepo(dir) {
			errorf("Not in a git repository")
			return errors.New("not a git repository")
		}

		if _, err := exec.LookPath("gh"); err != nil {
			errorf("GitHub CLI (gh) not found")
			fmt.Println(dimStyle.Render("Install: https://cli.github.com/"))
			return errors.New("gh not found")
		}

		repo := worktree.NewRepo(dir)
		branch := repo.CurrentBranch()
		if branch == "main" || branch == "master" {
			errorf("Cannot create PR from main/master branch")
			return errors.New("on main/master")
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
		body := export.PRBody(sess, interactions, branch)

		if prPush {
			fmt.Println(warnStyle.Render(fmt.Sprintf("Pushing %s...", branch)))
			if _, err := repo.Git("push", "-u", "origin", branch); err != nil {
				errorf("Error pushing: %v", err)
				return err
			}
		}

		title := prTitle
		if title == "" {
			title = export.TitleFromBranch(branch)
		}

		fmt.Println(warnStyle.Render("Creating PR..."))
		ghArgs := []string{"pr", "create", "--title", title, "--body", body}
		if prDraft {
			ghArgs = append(ghArgs, "--draft")
		}

		ghCmd := exec.Command("gh", ghArgs...)
		ghCmd.Dir = dir
		var stderr strings.Builder
		ghCmd.Stderr = &stderr
		out, err := ghCmd.Output()
		if err != nil {
			errorf("Error creating PR: %s", strings.TrimSpace(stderr.String()))
			return err
		}

		fmt.Printf("%s %s\n", okStyle.Render("PR created:"), strings.TrimSpace(string(out)))
		return nil
	},
}

func init() {
	prCmd.Flags().StringVarP(&prTitle, "title", "t", "", "PR title (defaults to branch name)")
	prCmd.Flags().BoolVarP(&prDraft, "draft", "d", false, "Create as draft PR")
	prCmd.Flags().BoolVar(&prPush, "push", true, "Push branch before creating PR")
	rootCmd.AddCommand(prCmd)
}
