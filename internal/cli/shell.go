package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wundervaflja/rat/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Shell integration for directory switching",
}

var shellInitCmd = &cobra.Command{
	Use:   "init [bash|zsh|fish]",
	Short: "Output shell integration code",
	Long:  "Output the wrapper function for your shell. Add to your config:\n\n    eval \"$(rat shell init)\"",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resolveShell(args, "rat shell init bash")
		if err != nil {
			return err
		}
		script, err := shell.InitScript(name)
		if err != nil {
			errorf("Unsupported shell: %s", name)
			return err
		}
		// Plain stdout: this output gets eval'd.
		fmt.Println(script)
		return nil
	},
}

var (
	shellSetupShell string
	shellSetupForce bool
)

var shellSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install shell integration to your rc file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := shellSetupShell
		if name == "" {
			name = shell.Detect()
		}
		if name == "" {
			errorf("Could not detect shell")
			fmt.Println("Specify shell: rat shell setup --shell bash")
			return fmt.Errorf("could not detect shell")
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		rcFile, err := shell.RCFile(home, name)
		if err != nil {
			errorf("Unsupported shell: %s", name)
			return err
		}

		if shell.Installed(rcFile) && !shellSetupForce {
			fmt.Println(warnStyle.Render("Already installed in " + rcFile))
			fmt.Println("Use --force to reinstall")
			return nil
		}

		if err := shell.Install(rcFile, name, shellSetupForce); err != nil {
			return err
		}

		body := fmt.Sprintf("%s\n\n%s %s\n%s %s\n\n%s\n  %s",
			okStyle.Render("Shell integration installed!"),
			boldStyle.Render("File:"), rcFile,
			boldStyle.Render("Shell:"), name,
			dimStyle.Render("Restart your shell or run:"),
			cyanStyle.Render("source "+rcFile),
		)
		fmt.Println(panel(body, colorGreen))
		return nil
	},
}

var shellStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check shell integration status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := shell.Detect()
		if name == "" {
			fmt.Println(warnStyle.Render("Could not detect shell"))
			return nil
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		rcFile, _ := shell.RCFile(home, name)

		fmt.Printf("%s %s\n", boldStyle.Render("Shell:"), name)
		fmt.Printf("%s %s\n", boldStyle.Render("Config:"), rcFile)

		if rcFile != "" && shell.Installed(rcFile) {
			fmt.Printf("%s %s\n", boldStyle.Render("Status:"), okStyle.Render("Installed"))
			return nil
		}
		fmt.Printf("%s %s\n", boldStyle.Render("Status:"), warnStyle.Render("Not installed"))
		fmt.Printf("\n%s\n", dimStyle.Render("Run 'rat shell setup' to install"))
		return nil
	},
}

var shellUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove shell integration from your rc file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := shell.Detect()
		if name == "" {
			errorf("Could not detect shell")
			return fmt.Errorf("could not detect shell")
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		rcFile, err := shell.RCFile(home, name)
		if err != nil || !shell.Installed(rcFile) {
			fmt.Println(warnStyle.Render("Shell integration not installed"))
			return nil
		}

		if err := shell.Uninstall(rcFile); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Removed shell integration from " + rcFile))
		fmt.Println(dimStyle.Render("Restart your shell or run: source " + rcFile))
		return nil
	},
}

// resolveShell picks the shell from args or $SHELL, printing a usage hint
// on failure.
func resolveShell(args []string, example string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if name := shell.Detect(); name != "" {
		return name, nil
	}
	fmt.Fprintln(os.Stderr, errStyle.Render("Error:")+" Could not detect shell")
	fmt.Fprintf(os.Stderr, "Specify shell explicitly: %s\n", example)
	return "", fmt.Errorf("could not detect shell")
}

func init() {
	shellSetupCmd.Flags().StringVarP(&shellSetupShell, "shell", "s", "", "Shell type (auto-detected if omitted)")
	shellSetupCmd.Flags().BoolVarP(&shellSetupForce, "force", "f", false, "Overwrite existing installation")

	shellCmd.AddCommand(shellInitCmd, shellSetupCmd, shellStatusCmd, shellUninstallCmd)
	rootCmd.AddCommand(shellCmd)
}
