// Package fileutil handles project-relative paths written with either
// separator, as they appear in project files authored on Windows.
package fileutil

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath unifies separators, resolves "." and ".." segments and
// returns the path with the host separator. An empty path stays empty.
// A trailing separator is dropped.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.FromSlash(path.Clean(ToSlash(p)))
}

// ToSlash replaces backslashes with forward slashes regardless of the host.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// IsAbsolute reports whether p is rooted, including Windows drive paths
// ("C:\tools") and UNC paths, which filepath.IsAbs rejects on Unix hosts.
func IsAbsolute(p string) bool {
	p = ToSlash(strings.TrimSpace(p))
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/' && isLetter(p[0])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Combine resolves rel against baseDir. A rooted rel is returned normalized
// and baseDir is ignored.
func Combine(baseDir, rel string) string {
	if rel == "" {
		return NormalizePath(baseDir)
	}
	if IsAbsolute(rel) || baseDir == "" {
		return NormalizePath(rel)
	}
	return NormalizePath(ToSlash(baseDir) + "/" + ToSlash(rel))
}
