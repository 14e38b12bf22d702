// Package shell installs the rat wrapper function into the user's shell
// so `rat switch` can change the working directory.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MarkerStart and MarkerEnd delimit the managed block in rc files.
	MarkerStart = "# >>> rat shell integration >>>"
	MarkerEnd   = "# <<< rat shell integration <<<"
)

// ErrUnsupported means the shell is not one of bash, zsh or fish.
var ErrUnsupported = errors.New("unsupported shell")

// wrapper functions per shell. `rat switch` resolves to a cd in the
// calling shell; everything else passes through to the binary.
var functions = map[string]string{
	"bash": `rat() {
    if [[ "$1" == "switch" ]]; then
        local dir=$(command rat switch --print-path "${@:2}")
        if [[ -n "$dir" && -d "$dir" ]]; then
            cd "$dir"
        else
            return 1
        fi
    else
        command rat "$@"
    fi
}`,
	"zsh": `rat() {
    if [[ "$1" == "switch" ]]; then
        local dir=$(command rat switch --print-path "${@:2}")
        if [[ -n "$dir" && -d "$dir" ]]; then
            cd "$dir"
        else
            return 1
        fi
    else
        command rat "$@"
    fi
}`,
	"fish": `function rat
    if test "$argv[1]" = "switch"
        set -l dir (command rat switch --print-path $argv[2..])
        if test -n "$dir" -a -d "$dir"
            cd "$dir"
        else
            return 1
        end
    else
        command rat $argv
    end
end`,
}

// rcFiles lists candidate rc files per shell, relative to home, in
// preference order.
var rcFiles = map[string][]string{
	"bash": {".bashrc", ".bash_profile"},
	"zsh":  {".zshrc"},
	"fish": {filepath.Join(".config", "fish", "config.fish")},
}

// Supported lists the shells integration works with.
func Supported() []string {
	return []string{"bash", "zsh", "fish"}
}

// Detect infers the shell type from $SHELL, or "" when unknown.
func Detect() string {
	shell := os.Getenv("SHELL")
	switch {
	case strings.Contains(shell, "zsh"):
		return "zsh"
	case strings.Contains(shell, "bash"):
		return "bash"
	case strings.Contains(shell, "fish"):
		return "fish"
	}
	return ""
}

// InitScript returns the wrapper function for shell, suitable for eval.
func InitScript(shell string) (string, error) {
	fn, ok := functions[shell]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, shell)
	}
	return fn, nil
}

// RCFile resolves the rc file for shell: the first candidate that exists,
// else the preferred one.
func RCFile(home, shell string) (string, error) {
	candidates, ok := rcFiles[shell]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, shell)
	}
	for _, rc := range candidates {
		path := filepath.Join(home, rc)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return filepath.Join(home, candidates[0]), nil
}

// Installed reports whether the rc file carries the managed block.
func Installed(rcFile string) bool {
	data, err := os.ReadFile(rcFile)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), MarkerStart)
}

// Install appends the managed eval block to the rc file. With force, an
// existing block is replaced; without, installing twice is an error.
func Install(rcFile, shell string, force bool) error {
	if _, ok := functions[shell]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, shell)
	}

	content := ""
	if data, err := os.ReadFile(rcFile); err == nil {
		content = string(data)
	}

	if strings.Contains(content, MarkerStart) {
		if !force {
			return fmt.Errorf("shell integration already installed in %s", rcFile)
		}
		content = removeBlock(content)
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += fmt.Sprintf("\n%s\neval \"$(rat shell init %s)\"\n%s\n", MarkerStart, shell, MarkerEnd)

	if err := os.MkdirAll(filepath.Dir(rcFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(rcFile, []byte(content), 0o644)
}

// Uninstall removes the managed block from the rc file.
func Uninstall(rcFile string) error {
	data, err := os.ReadFile(rcFile)
	if err != nil {
		return err
	}
	content := string(data)
	if !strings.Contains(content, MarkerStart) {
		return nil
	}
	return os.WriteFile(rcFile, []byte(removeBlock(content)), 0o644)
}

// removeBlock strips the marker-delimited block from content.
func removeBlock(content string) string {
	start := strings.Index(content, MarkerStart)
	end := strings.Index(content, MarkerEnd)
	if start < 0 || end < 0 {
		return content
	}
	return strings.TrimSpace(content[:start]+content[end+len(MarkerEnd):]) + "\n"
}
