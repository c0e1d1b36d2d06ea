// Package projectroot locates the nearest ancestor directory marked as a
// polysafe project, the way git walks up from the working directory to
// find the repository root.
package projectroot

import (
	"os"
	"path/filepath"
)

// markerDir is the directory name that marks a polysafe project root.
const markerDir = ".polysafe"

// Detect walks up from startDir looking for a directory containing a
// .polysafe marker directory. Returns the marked directory's path, or
// "" if none is found before reaching the filesystem root. An empty
// startDir defaults to the current working directory.
func Detect(startDir string) string {
	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return ""
		}
	}

	dir := startDir
	for {
		marker := filepath.Join(dir, markerDir)
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}

	return ""
}

// HasAuditLog reports whether root's marker directory contains an
// audit.jsonl file, i.e. whether this project has ever recorded an
// audited operation.
func HasAuditLog(root string) bool {
	if root == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(root, markerDir, "audit.jsonl"))
	return err == nil
}

// IsInsideProject reports whether dir is within a polysafe project.
func IsInsideProject(dir string) bool {
	return Detect(dir) != ""
}
