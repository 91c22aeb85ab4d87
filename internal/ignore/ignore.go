// Package ignore implements shell-glob (fnmatch) filtering of repo-relative
// paths, adapted from the teacher's internal/walker/filter.go.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher filters repo-relative paths against a fixed set of glob patterns.
type Matcher struct {
	patterns []string
}

// New builds a Matcher from the project's configured ignore_files patterns.
func New(patterns []string) *Matcher {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &Matcher{patterns: cleaned}
}

// Matches reports whether relPath matches any configured ignore pattern.
// An empty pattern set ignores nothing.
func (m *Matcher) Matches(relPath string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	return matchesAny(relPath, m.patterns)
}

// Filter returns the subset of paths not matched by any ignore pattern,
// preserving order.
func (m *Matcher) Filter(paths []string) []string {
	if len(m.patterns) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !m.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny checks if relPath matches any of the given glob patterns,
// trying both the full path and the base filename (fnmatch-style).
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
