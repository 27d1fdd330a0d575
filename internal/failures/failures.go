package failures

import (
	"errors"
	"fmt"
	"strings"
)

const (
	repositoryErrorTemplateConstant        = "%s: %v"
	hookErrorTemplateConstant              = "%s (exit code %d)"
	hookErrorStandardErrorTemplateConstant = "%s (exit code %d): %s"
)

// RepositoryError reports an environmental failure while operating on a repository.
type RepositoryError struct {
	Message string
	Cause   error
}

// Error renders the message followed by the cause when one is present.
func (repositoryError RepositoryError) Error() string {
	if repositoryError.Cause == nil {
		return repositoryError.Message
	}
	return fmt.Sprintf(repositoryErrorTemplateConstant, repositoryError.Message, repositoryError.Cause)
}

// Unwrap exposes the underlying cause.
func (repositoryError RepositoryError) Unwrap() error {
	return repositoryError.Cause
}

// ValidationError reports a configuration defect.
type ValidationError struct {
	Message string
}

// Error returns the validation message.
func (validationError ValidationError) Error() string {
	return validationError.Message
}

// HookError reports a checkout hook that exited with a non-zero code.
type HookError struct {
	Message       string
	HookPath      string
	ExitCode      int
	StandardError string
}

// Error renders the message, the exit code and the captured standard error.
func (hookError HookError) Error() string {
	trimmedStandardError := strings.TrimSpace(hookError.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(hookErrorTemplateConstant, hookError.Message, hookError.ExitCode)
	}
	return fmt.Sprintf(hookErrorStandardErrorTemplateConstant, hookError.Message, hookError.ExitCode, trimmedStandardError)
}

// NewRepositoryError builds a RepositoryError from a formatted message.
func NewRepositoryError(cause error, messageTemplate string, arguments ...any) error {
	return RepositoryError{Message: fmt.Sprintf(messageTemplate, arguments...), Cause: cause}
}

// NewValidationError builds a ValidationError from a formatted message.
func NewValidationError(messageTemplate string, arguments ...any) error {
	return ValidationError{Message: fmt.Sprintf(messageTemplate, arguments...)}
}

// IsRepositoryError reports whether the chain contains a repository or hook failure.
func IsRepositoryError(err error) bool {
	var repositoryError RepositoryError
	if errors.As(err, &repositoryError) {
		return true
	}
	var hookError HookError
	return errors.As(err, &hookError)
}

// IsValidationError reports whether the chain contains a configuration defect.
func IsValidationError(err error) bool {
	var validationError ValidationError
	return errors.As(err, &validationError)
}
