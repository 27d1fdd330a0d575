package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/ui"
)

const (
	testGitDirectoryConstant           = "/tmp/cache/abcd"
	testRemoteURLConstant              = "file:///tmp/origin"
	testCommandLabelConstant           = "git fetch --prune " + testRemoteURLConstant + " (in " + testGitDirectoryConstant + ")"
	testExecutionFailureReasonConstant = "execution failed"
	testStandardErrorMessageConstant   = "fatal: remote error"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments: []string{"--git-dir=" + testGitDirectoryConstant, "--work-tree=/tmp/checkout", "fetch", "--prune", testRemoteURLConstant},
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedType    console.MessageType
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedType:    console.MessageTypeProgress,
			expectedMessage: "Running " + testCommandLabelConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedType:    console.MessageTypeInfo,
			expectedMessage: "Completed " + testCommandLabelConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant + "\n"})
			},
			expectedType:    console.MessageTypeWarning,
			expectedMessage: testCommandLabelConstant + " failed with exit code 1: " + testStandardErrorMessageConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedType:    console.MessageTypeError,
			expectedMessage: testCommandLabelConstant + " failed: " + testExecutionFailureReasonConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingConsole := console.NewRecordingConsole()
			eventLogger := ui.NewConsoleCommandEventLogger(recordingConsole)

			testCase.invoke(eventLogger)

			messages := recordingConsole.Messages()
			require.Len(testInstance, messages, 1)
			require.Equal(testInstance, testCase.expectedType, messages[0].Type)
			require.Equal(testInstance, testCase.expectedMessage, messages[0].Text)
		})
	}
}

func TestCommandEventFormatterUsesWorkingDirectory(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name:    execshell.CommandName("/opt/hooks/checkout.sh"),
		Details: execshell.CommandDetails{WorkingDirectory: "/tmp/checkout"},
	}
	formatter := ui.CommandEventFormatter{}
	require.Equal(testInstance, "Running /opt/hooks/checkout.sh (in /tmp/checkout)", formatter.BuildStartedMessage(command))
}
