package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct{ env, want string }{
		{"/bin/zsh", "zsh"},
		{"/usr/bin/bash", "bash"},
		{"/usr/local/bin/fish", "fish"},
		{"/bin/dash", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Setenv("SHELL", tc.env)
		assert.Equal(t, tc.want, Detect(), tc.env)
	}
}

func TestInitScript(t *testing.T) {
	for _, shell := range Supported() {
		script, err := InitScript(shell)
		require.NoError(t, err, shell)
		assert.Contains(t, script, "switch --print-path", shell)
	}

	_, err := InitScript("powershell")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRCFile(t *testing.T) {
	home := t.TempDir()

	// No candidate exists: the preferred one is returned.
	rc, err := RCFile(home, "bash")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".bashrc"), rc)

	// An existing later candidate wins over a missing preferred one.
	require.NoError(t, os.WriteFile(filepath.Join(home, ".bash_profile"), nil, 0o644))
	rc, err = RCFile(home, "bash")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".bash_profile"), rc)

	_, err = RCFile(home, "powershell")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestInstallUninstall(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	require.NoError(t, os.WriteFile(rc, []byte("export EDITOR=vim\n"), 0o644))

	require.NoError(t, Install(rc, "zsh", false))
	assert.True(t, Installed(rc))

	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "export EDITOR=vim")
	assert.Contains(t, content, MarkerStart)
	assert.Contains(t, content, `eval "$(rat shell init zsh)"`)
	assert.Contains(t, content, MarkerEnd)

	// Installing again without force is refused and leaves one block.
	err = Install(rc, "zsh", false)
	assert.Error(t, err)

	require.NoError(t, Install(rc, "zsh", true))
	data, err = os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), MarkerStart))

	require.NoError(t, Uninstall(rc))
	assert.False(t, Installed(rc))
	data, err = os.ReadFile(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export EDITOR=vim")
	assert.NotContains(t, string(data), MarkerStart)
}

func TestInstall_CreatesRCFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".config", "fish", "config.fish")
	require.NoError(t, Install(rc, "fish", false))
	assert.True(t, Installed(rc))
}

func TestInstall_UnsupportedShell(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".profile")
	assert.ErrorIs(t, Install(rc, "powershell", false), ErrUnsupported)
}

func TestUninstall_NoBlockIsNoop(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")
	require.NoError(t, os.WriteFile(rc, []byte("plain\n"), 0o644))
	require.NoError(t, Uninstall(rc))

	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, "plain\n", string(data))
}
