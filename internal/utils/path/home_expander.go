package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant               = "~"
	tildeForwardSlashPrefixConstant   = "~/"
	absolutePathErrorTemplateConstant = "unable to resolve path '%s': %w"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves a leading "~" or "~/" to the user's home directory.
// "~user" forms are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	var relativePath string
	switch {
	case candidatePath == tildeSymbolConstant:
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		relativePath = strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant)
	case strings.HasPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator)):
		relativePath = strings.TrimPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator))
	default:
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(resolvedHomeDirectory, relativePath)
}

// ResolvePath expands the home shortcut and returns a cleaned absolute path.
// Empty input stays empty so callers can apply their own fallback.
func (expander *HomeExpander) ResolvePath(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", nil
	}
	absolutePath, absoluteError := filepath.Abs(expander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, candidatePath, absoluteError)
	}
	return absolutePath, nil
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
