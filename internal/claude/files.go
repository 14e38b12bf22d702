package claude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// convExt is the extension of conversation log files.
	convExt = ".jsonl"

	// agentFilePrefix marks sub-agent transcripts, which are excluded
	// from session tracking.
	agentFilePrefix = "agent-"
)

// DefaultProjectsDir is Claude's per-project conversation root,
// typically ~/.claude/projects.
func DefaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}

// ProjectDir maps a project root to Claude's log directory for it. Claude
// names project directories by replacing path separators with dashes
// (e.g. -Users-alice-repo-rat). Two candidates are tried, with and without
// the leading dash. Returns false when neither exists, meaning no data for
// this project.
func ProjectDir(projectsDir, projectRoot string) (string, bool) {
	if projectsDir == "" {
		return "", false
	}
	if _, err := os.Stat(projectsDir); err != nil {
		return "", false
	}

	name := strings.ReplaceAll(projectRoot, string(filepath.Separator), "-")
	if !strings.HasPrefix(name, "-") {
		name = "-" + name
	}
	candidate := filepath.Join(projectsDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}

	alt := strings.TrimLeft(projectRoot, string(filepath.Separator))
	alt = "-" + strings.ReplaceAll(alt, string(filepath.Separator), "-")
	candidate = filepath.Join(projectsDir, alt)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true
	}

	return "", false
}

// conversationFiles lists the top-level conversation logs in dir, newest
// modified first. Sub-agent transcripts and non-JSONL files are skipped.
func conversationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type fileInfo struct {
		path  string
		mtime int64
	}
	var files []fileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != convExt {
			continue
		}
		if strings.HasPrefix(name, agentFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:  filepath.Join(dir, name),
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].mtime > files[j].mtime
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths
}

// EligibleConversationFile reports whether name looks like a top-level
// conversation log. Used by the watcher to filter events with the same
// rule as file listing.
func EligibleConversationFile(name string) bool {
	base := filepath.Base(name)
	return filepath.Ext(base) == convExt && !strings.HasPrefix(base, agentFilePrefix)
}
