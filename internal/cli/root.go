// Package cli wires the rat command set: worktree lifecycle, session
// status, live watch, export, merge/PR, and shell integration.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/claude"
	"github.com/wundervaflja/rat/internal/config"
	"github.com/wundervaflja/rat/internal/session"
)

// version is set at build time via -ldflags.
var version = "dev"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "rat",
	Short:         "AI worktree manager for parallel development",
	Long:          "rat manages git worktrees for parallel AI-assisted development\nand tracks each worktree's Claude Code session.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level, parseErr := zerolog.ParseLevel(cfg.LogLevel)
		if parseErr != nil {
			level = zerolog.WarnLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(logoStyle.Render(logo))
			fmt.Printf("\n%s v%s\n", dimStyle.Render("rat"), version)
			return nil
		}
		fmt.Println(logoStyle.Render(logo))
		fmt.Println()
		return cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errorf("%v", err)
		os.Exit(1)
	}
}

// cwd returns the current directory or exits.
func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		errorf("cannot determine working directory: %v", err)
		os.Exit(1)
	}
	return dir
}

// isGitRepo reports whether dir is inside a git worktree (.git may be a
// directory or, in linked worktrees, a file).
func isGitRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// readerFor builds a conversation reader for path with the configured
// tunables.
func readerFor(path string) *claude.Reader {
	opts := []claude.ReaderOption{claude.WithTailWindow(cfg.TailWindowBytes)}
	if cfg.ProjectsDir != "" {
		opts = append(opts, claude.WithProjectsDir(cfg.ProjectsDir))
	}
	return claude.NewReader(path, opts...)
}

// trackerFor builds a session tracker for path with the configured
// tunables.
func trackerFor(path string) *session.Tracker {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return session.NewTracker(path,
		session.WithReader(readerFor(path)),
		session.WithProcessChecker(session.NewPgrepChecker(cfg.ProcessPattern)),
		session.WithActivityWindow(cfg.ActivityWindow()),
	)
}
