package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitmigrate/internal/execshell"
)

const (
	testStandardErrorOutputConstant = " ! [rejected]        master -> master (non-fast-forward)\n"
	testHookExecutableConstant      = "/opt/hooks/post-checkout"
	testGitDirectoryConstant        = "/var/cache/gitmigrate/origin"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	events []string
}

func (eventObserver *recordingEventObserver) CommandStarted(execshell.ShellCommand) {
	eventObserver.events = append(eventObserver.events, "started")
}

func (eventObserver *recordingEventObserver) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	eventObserver.events = append(eventObserver.events, fmt.Sprintf("completed:%d", result.ExitCode))
}

func (eventObserver *recordingEventObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	eventObserver.events = append(eventObserver.events, "failed")
}

func TestNewShellExecutorRequiresCollaborators(testInstance *testing.T) {
	_, missingLoggerError := execshell.NewShellExecutor(nil, &recordingCommandRunner{})
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)

	_, missingRunnerError := execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, missingRunnerError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, nil)
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorExecuteGit(testInstance *testing.T) {
	fetchArguments := []string{"--git-dir=" + testGitDirectoryConstant, "fetch", "--prune", "origin"}
	testCases := []struct {
		name           string
		runnerResult   execshell.ExecutionResult
		runnerError    error
		expectedError  any
		expectedEvents []string
		expectedLevels []zapcore.Level
	}{
		{
			name:           "fetch_succeeds",
			runnerResult:   execshell.ExecutionResult{StandardOutput: "ok"},
			expectedEvents: []string{"started", "completed:0"},
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.DebugLevel},
		},
		{
			name:           "push_rejected",
			runnerResult:   execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
			expectedError:  execshell.CommandFailedError{},
			expectedEvents: []string{"started", "completed:1"},
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.DebugLevel},
		},
		{
			name:           "git_missing",
			runnerError:    errors.New("exec: \"git\": executable file not found in $PATH"),
			expectedError:  execshell.CommandExecutionError{},
			expectedEvents: []string{"started", "failed"},
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			runner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}
			eventObserver := &recordingEventObserver{}

			executor, creationError := execshell.NewShellExecutor(zap.New(observerCore), runner, eventObserver)
			require.NoError(testInstance, creationError)

			result, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: fetchArguments})
			if testCase.expectedError != nil {
				require.IsType(testInstance, testCase.expectedError, executionError)
				require.Empty(testInstance, result.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, result.StandardOutput)
			}

			require.Equal(testInstance, testCase.expectedEvents, eventObserver.events)
			require.Len(testInstance, runner.recordedCommands, 1)
			require.Equal(testInstance, fetchArguments, runner.recordedCommands[0].Details.Arguments)

			observedLevels := make([]zapcore.Level, 0, observedLogs.Len())
			for _, entry := range observedLogs.All() {
				observedLevels = append(observedLevels, entry.Level)
				require.Equal(testInstance, string(execshell.CommandGit), entry.ContextMap()["command"])
			}
			require.Equal(testInstance, testCase.expectedLevels, observedLevels)
		})
	}
}

func TestCommandFailedErrorIncludesStandardError(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{StandardError: testStandardErrorOutputConstant, ExitCode: 1},
	}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"push"}})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "[rejected]")

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, 1, failedError.Result.ExitCode)
}

func TestShellExecutorCommandNames(testInstance *testing.T) {
	testCases := []struct {
		name            string
		invoke          func(executor *execshell.ShellExecutor) error
		expectedCommand execshell.CommandName
	}{
		{
			name: "git_wrapper",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandGit,
		},
		{
			name: "arbitrary_executable",
			invoke: func(executor *execshell.ShellExecutor) error {
				_, executionError := executor.ExecuteCommand(context.Background(), testHookExecutableConstant, execshell.CommandDetails{})
				return executionError
			},
			expectedCommand: execshell.CommandName(testHookExecutableConstant),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{
				executionResult: execshell.ExecutionResult{ExitCode: 1},
			}

			executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
			require.NoError(testInstance, creationError)

			executionError := testCase.invoke(executor)
			require.Error(testInstance, executionError)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedCommand, recordingRunner.recordedCommands[0].Name)
		})
	}
}
