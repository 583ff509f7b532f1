// Package ignore matches repository-relative paths against a set of
// glob-style ignore patterns, the core operation behind add's
// "failed-because-ignored" list and status's Untracked classification.
package ignore

import (
	"github.com/bmatcuk/doublestar/v4"
)

// Matcher holds a fixed set of ignore patterns. Patterns are matched
// both against the exact path and against every parent directory of
// the path, so a pattern like "build" also ignores everything under
// "build/".
type Matcher struct {
	patterns []string
}

// New compiles patterns into a Matcher. Invalid patterns are dropped
// silently, mirroring a `.gitignore`-style tool that skips malformed
// lines rather than failing the whole load.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if _, err := doublestar.Match(p, "probe"); err != nil {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether relPath (or one of its ancestor directories)
// matches any configured pattern.
func (m *Matcher) Match(relPath string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
		if matchesAncestor(p, relPath) {
			return true
		}
	}
	return false
}

// matchesAncestor reports whether pattern matches any ancestor
// directory of relPath, so an ignored directory ignores its contents.
func matchesAncestor(pattern, relPath string) bool {
	for i := len(relPath) - 1; i >= 0; i-- {
		if relPath[i] == '/' {
			dir := relPath[:i]
			if ok, _ := doublestar.Match(pattern, dir); ok {
				return true
			}
		}
	}
	return false
}
