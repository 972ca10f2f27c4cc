package sync

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/entrydrive/syncbox/internal/utils"
)

// IgnoreFileName is the per-drive ignore file, gitignore syntax.
const IgnoreFileName = ".syncboxignore"

var defaultIgnoreLines = []string{
	// syncbox
	IgnoreFileName,
	lockFile,
	// General excludes
	".git",
	"*.tmp",
	"*.log",
	"logs/",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
}

// IgnoreList decides which entries a scan skips. Rules come from a built-in
// list plus the drive's .syncboxignore file, if present.
type IgnoreList struct {
	baseDir string
	ignore  *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string) *IgnoreList {
	il := &IgnoreList{baseDir: baseDir}
	il.Load()
	return il
}

// Load compiles the rule set. Safe to call again to pick up edits to the
// ignore file.
func (il *IgnoreList) Load() {
	ignorePath := filepath.Join(il.baseDir, IgnoreFileName)
	lines := append([]string{}, defaultIgnoreLines...)

	if utils.FileExists(ignorePath) {
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()
			rules := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				if line := scanner.Text(); line != "" {
					lines = append(lines, line)
					rules++
				}
			}
			if err := scanner.Err(); err != nil {
				slog.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				slog.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	il.ignore = gitignore.CompileIgnoreLines(lines...)
}

// ShouldIgnore matches a path (relative to the drive root) against the rules.
func (il *IgnoreList) ShouldIgnore(relPath string) bool {
	return il.ignore.MatchesPath(relPath)
}
