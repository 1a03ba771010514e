// Package services implements domain business logic and use cases.
package services

import "strings"

// DefaultNonSystemPatterns match install locations of package managers and
// user home directories, as opposed to the operating system's own libraries
var DefaultNonSystemPatterns = []string{
	"/opt/",
	"/Cellar/",
	"/.conan/",
	"/Users/",
	"/home/",
}

// LocationFilter decides whether a library path lives outside system locations
type LocationFilter struct {
	patterns []string
}

// NewLocationFilter creates a filter; with no patterns it uses DefaultNonSystemPatterns
func NewLocationFilter(patterns ...string) *LocationFilter {
	if len(patterns) == 0 {
		patterns = DefaultNonSystemPatterns
	}
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &LocationFilter{patterns: cleaned}
}

// IsNonSystem reports whether path contains one of the filter's patterns
func (f *LocationFilter) IsNonSystem(path string) bool {
	for _, p := range f.patterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Filter keeps the non-system entries of paths, preserving order
func (f *LocationFilter) Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.IsNonSystem(p) {
			out = append(out, p)
		}
	}
	return out
}

// Patterns returns the configured patterns
func (f *LocationFilter) Patterns() []string {
	out := make([]string, len(f.patterns))
	copy(out, f.patterns)
	return out
}
