package transform

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	replaceDescriptionTemplateConstant = "Replace %s"
	emptyBeforeMessageConstant         = "'before' must not be empty in core.replace"
	invalidReplaceGlobTemplateConstant = "Invalid path pattern '%s': %v"
	replaceFailureTemplateConstant     = "Cannot replace text in %s"
	noMatchTemplateConstant            = "Transformation '%s' was a no-op because it didn't change any of the matching files"
	defaultReplacePathPatternConstant  = "**"
	replacePathSeparatorRuneConstant   = '/'
)

// Replace substitutes literal text in files whose relative path matches one of the patterns.
type Replace struct {
	before       string
	after        string
	pathPatterns []string
	matchers     []glob.Glob
}

// NewReplace compiles the path patterns. No patterns means every file.
func NewReplace(before string, after string, pathPatterns []string) (*Replace, error) {
	if len(before) == 0 {
		return nil, failures.NewValidationError(emptyBeforeMessageConstant)
	}
	if len(pathPatterns) == 0 {
		pathPatterns = []string{defaultReplacePathPatternConstant}
	}
	matchers := make([]glob.Glob, 0, len(pathPatterns))
	for _, pattern := range pathPatterns {
		matcher, compileError := glob.Compile(pattern, replacePathSeparatorRuneConstant)
		if compileError != nil {
			return nil, failures.NewValidationError(invalidReplaceGlobTemplateConstant, pattern, compileError)
		}
		matchers = append(matchers, matcher)
	}
	return &Replace{before: before, after: after, pathPatterns: append([]string(nil), pathPatterns...), matchers: matchers}, nil
}

// Transform rewrites every matching file. Touching no file is reported as a warning.
func (replace *Replace) Transform(executionContext context.Context, work Work) error {
	if len(replace.before) == 0 {
		return failures.NewValidationError(emptyBeforeMessageConstant)
	}
	beforeBytes := []byte(replace.before)
	afterBytes := []byte(replace.after)
	changedFiles := 0

	walkError := filepath.WalkDir(work.CheckoutDirectory, func(absolutePath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		relativePath, relativeError := filepath.Rel(work.CheckoutDirectory, absolutePath)
		if relativeError != nil {
			return relativeError
		}
		if !replace.matches(filepath.ToSlash(relativePath)) {
			return nil
		}

		content, readError := os.ReadFile(absolutePath)
		if readError != nil {
			return readError
		}
		if !bytes.Contains(content, beforeBytes) {
			return nil
		}
		info, infoError := entry.Info()
		if infoError != nil {
			return infoError
		}
		changedFiles++
		return os.WriteFile(absolutePath, bytes.ReplaceAll(content, beforeBytes, afterBytes), info.Mode().Perm())
	})
	if walkError != nil {
		return failures.NewRepositoryError(walkError, replaceFailureTemplateConstant, work.CheckoutDirectory)
	}
	if changedFiles == 0 && work.Console != nil {
		work.Console.Warn(fmt.Sprintf(noMatchTemplateConstant, replace.Describe()))
	}
	return nil
}

// Reverse swaps the before and after text.
func (replace *Replace) Reverse() Transformation {
	return &Replace{before: replace.after, after: replace.before, pathPatterns: replace.pathPatterns, matchers: replace.matchers}
}

// Describe names the replaced text.
func (replace *Replace) Describe() string {
	return fmt.Sprintf(replaceDescriptionTemplateConstant, replace.before)
}

func (replace *Replace) matches(relativePath string) bool {
	for _, matcher := range replace.matchers {
		if matcher.Match(relativePath) {
			return true
		}
	}
	return false
}
