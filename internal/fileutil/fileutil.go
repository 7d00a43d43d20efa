// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather
// than a name. A string containing path separators (/, \) is treated as
// a path.
//
// Examples:
//   - "default" -> false (name)
//   - "./render.yaml" -> true (relative path)
//   - "/etc/html2png/render.yaml" -> true (absolute)
//   - "C:\configs\render.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// ReplaceExt returns path with its extension replaced by newExt.
// newExt must include the leading dot. A path without an extension gets
// newExt appended.
func ReplaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

// RelWithinRoot resolves target relative to root and reports whether the
// target stays inside the root. Both paths are made absolute first, so
// the containment check cannot be fooled by "..". The returned relative
// path uses forward slashes, suitable for URL construction.
func RelWithinRoot(root, target string) (rel string, ok bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", false
	}

	rel, err = filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
