package origin

import (
	"context"
	"errors"

	"github.com/google/shlex"

	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	hookFailureMessageConstant         = "Error executing the git checkout hook"
	hookExecutorMissingMessageConstant = "checkout hook executor not configured"
	invalidHookCommandTemplateConstant = "Invalid checkout hook '%s'"
)

// ErrHookExecutorNotConfigured indicates a checkout hook was configured without an executor.
var ErrHookExecutorNotConfigured = errors.New(hookExecutorMissingMessageConstant)

// CheckoutHook is a command run inside the checkout directory after every checkout.
type CheckoutHook struct {
	command    string
	executable string
	arguments  []string
	executor   HookExecutor
}

// NewCheckoutHook splits the command with shell quoting rules.
func NewCheckoutHook(command string, executor HookExecutor) (*CheckoutHook, error) {
	if executor == nil {
		return nil, ErrHookExecutorNotConfigured
	}
	commandParts, splitError := shlex.Split(command)
	if splitError != nil || len(commandParts) == 0 {
		return nil, failures.NewValidationError(invalidHookCommandTemplateConstant, command)
	}
	return &CheckoutHook{
		command:    command,
		executable: commandParts[0],
		arguments:  commandParts[1:],
		executor:   executor,
	}, nil
}

// Run executes the hook with the checkout directory as working directory.
func (hook *CheckoutHook) Run(executionContext context.Context, checkoutDirectory string) error {
	_, executionError := hook.executor.ExecuteCommand(executionContext, hook.executable, execshell.CommandDetails{
		Arguments:        hook.arguments,
		WorkingDirectory: checkoutDirectory,
	})
	if executionError == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failures.HookError{
			Message:       hookFailureMessageConstant,
			HookPath:      hook.command,
			ExitCode:      failedError.Result.ExitCode,
			StandardError: failedError.Result.StandardError,
		}
	}
	return failures.NewRepositoryError(executionError, hookFailureMessageConstant)
}
