package ui

import (
	"fmt"
	"strings"

	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s failed with exit code %d"
	commandExecutionFailureMessageTemplateConstant = "%s failed: %s"
	repositorySuffixTemplateConstant               = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	gitDirectoryArgumentPrefixConstant             = "--git-dir="
	workTreeArgumentPrefixConstant                 = "--work-tree="
)

// CommandEventFormatter builds human-readable messages for command lifecycle events.
// Repository plumbing arguments are folded into a location suffix.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return baseMessage
	}
	return baseMessage + fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	location := strings.TrimSpace(command.Details.WorkingDirectory)
	for _, argument := range command.Details.Arguments {
		switch {
		case strings.HasPrefix(argument, gitDirectoryArgumentPrefixConstant):
			location = strings.TrimPrefix(argument, gitDirectoryArgumentPrefixConstant)
		case strings.HasPrefix(argument, workTreeArgumentPrefixConstant):
			continue
		default:
			commandParts = append(commandParts, argument)
		}
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	if len(location) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(repositorySuffixTemplateConstant, location)
}

// ConsoleCommandEventLogger reports command lifecycle events to a console.
type ConsoleCommandEventLogger struct {
	console   console.Console
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs an event logger writing to the console.
func NewConsoleCommandEventLogger(eventConsole console.Console) *ConsoleCommandEventLogger {
	if eventConsole == nil {
		eventConsole = console.NewLoggerConsole(nil)
	}
	return &ConsoleCommandEventLogger{console: eventConsole, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.console.Progress(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are warnings
// because callers such as rev-parse --verify treat some of them as answers.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.console.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.console.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.console.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
