package watch

import (
	"path/filepath"
	"strings"
)

// IgnorePolicy filters noisy paths before they reach any consumer.
// Directories are matched as path fragments, suffixes against the basename.
type IgnorePolicy struct {
	Directories []string
	Suffixes    []string
}

// DefaultIgnorePolicy covers VCS metadata, editor swap files and OS litter.
func DefaultIgnorePolicy() IgnorePolicy {
	return IgnorePolicy{
		Directories: []string{".git", "node_modules", "vendor", "__pycache__", ".idea", ".vscode"},
		Suffixes:    []string{".swp", ".swo", ".swx", "~", ".tmp", ".bak", ".orig", ".DS_Store", "Thumbs.db"},
	}
}

// Merge overlays configured extras onto the policy.
func (p IgnorePolicy) Merge(dirs, suffixes []string) IgnorePolicy {
	out := IgnorePolicy{
		Directories: append(append([]string{}, p.Directories...), dirs...),
		Suffixes:    append(append([]string{}, p.Suffixes...), suffixes...),
	}
	return out
}

// Ignored reports whether path should never be emitted downstream.
func (p IgnorePolicy) Ignored(path string) bool {
	norm := filepath.ToSlash(path)
	for _, dir := range p.Directories {
		if dir == "" {
			continue
		}
		if norm == dir || strings.Contains(norm, "/"+dir+"/") ||
			strings.HasPrefix(norm, dir+"/") || strings.HasSuffix(norm, "/"+dir) {
			return true
		}
	}
	base := filepath.Base(path)
	for _, suffix := range p.Suffixes {
		if suffix != "" && strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IgnoredDir reports whether a directory subtree can be skipped wholesale.
func (p IgnorePolicy) IgnoredDir(path string) bool {
	base := filepath.Base(path)
	for _, dir := range p.Directories {
		if base == dir {
			return true
		}
	}
	return p.Ignored(path)
}
