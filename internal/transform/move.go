package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	moveDescriptionTemplateConstant    = "Moving %s"
	moveMissingSourceTemplateConstant  = "Error moving '%s'. It doesn't exist in the workdir"
	moveExistingTargetTemplateConstant = "Cannot move file to '%s' because it already exists"
	moveFailureTemplateConstant        = "Cannot move '%s' to '%s'"
	invalidPathTemplateConstant        = "'%s' is not a valid relative path"
	samePathTemplateConstant           = "Moving from the same folder to the same folder is a noop: '%s'"
	parentDirectoryComponentConstant   = ".."
	currentDirectoryComponentConstant  = "."
	slashSeparatorConstant             = "/"
	directoryPermissionsConstant       = 0o755
)

// Move renames a file or directory inside the working tree.
type Move struct {
	before string
	after  string
}

// NewMove validates that both paths are relative and stay inside the working tree.
func NewMove(before string, after string) (*Move, error) {
	cleanBefore, beforeError := validateRelativePath(before)
	if beforeError != nil {
		return nil, beforeError
	}
	cleanAfter, afterError := validateRelativePath(after)
	if afterError != nil {
		return nil, afterError
	}
	if cleanBefore == cleanAfter {
		return nil, failures.NewValidationError(samePathTemplateConstant, before)
	}
	return &Move{before: cleanBefore, after: cleanAfter}, nil
}

// Transform performs the rename, creating missing parent directories.
func (move *Move) Transform(executionContext context.Context, work Work) error {
	sourcePath := filepath.Join(work.CheckoutDirectory, filepath.FromSlash(move.before))
	targetPath := filepath.Join(work.CheckoutDirectory, filepath.FromSlash(move.after))

	if _, statError := os.Lstat(sourcePath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return failures.NewValidationError(moveMissingSourceTemplateConstant, move.before)
		}
		return failures.NewRepositoryError(statError, moveFailureTemplateConstant, move.before, move.after)
	}
	if _, statError := os.Lstat(targetPath); statError == nil {
		return failures.NewValidationError(moveExistingTargetTemplateConstant, move.after)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(targetPath), directoryPermissionsConstant); mkdirError != nil {
		return failures.NewRepositoryError(mkdirError, moveFailureTemplateConstant, move.before, move.after)
	}
	if renameError := os.Rename(sourcePath, targetPath); renameError != nil {
		return failures.NewRepositoryError(renameError, moveFailureTemplateConstant, move.before, move.after)
	}
	return nil
}

// Reverse moves the file back.
func (move *Move) Reverse() Transformation {
	return &Move{before: move.after, after: move.before}
}

// Describe names the moved path.
func (move *Move) Describe() string {
	return fmt.Sprintf(moveDescriptionTemplateConstant, move.before)
}

// Before returns the source path.
func (move *Move) Before() string {
	return move.before
}

// After returns the target path.
func (move *Move) After() string {
	return move.after
}

func validateRelativePath(relativePath string) (string, error) {
	trimmedPath := strings.TrimSpace(relativePath)
	if len(trimmedPath) == 0 || path.IsAbs(trimmedPath) || filepath.IsAbs(trimmedPath) {
		return "", failures.NewValidationError(invalidPathTemplateConstant, relativePath)
	}
	cleanPath := path.Clean(filepath.ToSlash(trimmedPath))
	if cleanPath == currentDirectoryComponentConstant || cleanPath == parentDirectoryComponentConstant || strings.HasPrefix(cleanPath, parentDirectoryComponentConstant+slashSeparatorConstant) {
		return "", failures.NewValidationError(invalidPathTemplateConstant, relativePath)
	}
	return cleanPath, nil
}
