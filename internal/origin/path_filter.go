package origin

import (
	"github.com/gobwas/glob"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	allFilesPatternConstant     = "**"
	pathSeparatorRuneConstant   = '/'
	invalidGlobTemplateConstant = "Invalid glob pattern '%s': %v"
	emptyGlobMessageConstant    = "glob requires at least one pattern"
)

// PathFilter selects files by their repository-relative path.
type PathFilter struct {
	patterns []string
	matchers []glob.Glob
}

// AllFiles matches every path.
func AllFiles() PathFilter {
	pathFilter, _ := NewPathFilter([]string{allFilesPatternConstant})
	return pathFilter
}

// NewPathFilter compiles the patterns. "*" stays within a directory and "**" crosses directories.
func NewPathFilter(patterns []string) (PathFilter, error) {
	if len(patterns) == 0 {
		return PathFilter{}, failures.NewValidationError(emptyGlobMessageConstant)
	}
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, compileError := glob.Compile(pattern, pathSeparatorRuneConstant)
		if compileError != nil {
			return PathFilter{}, failures.NewValidationError(invalidGlobTemplateConstant, pattern, compileError)
		}
		matchers = append(matchers, matcher)
	}
	return PathFilter{patterns: append([]string(nil), patterns...), matchers: matchers}, nil
}

// Patterns returns the source patterns.
func (pathFilter PathFilter) Patterns() []string {
	return append([]string(nil), pathFilter.patterns...)
}

// IsAllFiles reports whether the filter is the match-everything glob.
func (pathFilter PathFilter) IsAllFiles() bool {
	return len(pathFilter.patterns) == 1 && pathFilter.patterns[0] == allFilesPatternConstant
}

// Matches reports whether the path is selected.
func (pathFilter PathFilter) Matches(path string) bool {
	for _, matcher := range pathFilter.matchers {
		if matcher.Match(path) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether at least one of the paths is selected.
func (pathFilter PathFilter) MatchesAny(paths []string) bool {
	for _, path := range paths {
		if pathFilter.Matches(path) {
			return true
		}
	}
	return false
}
