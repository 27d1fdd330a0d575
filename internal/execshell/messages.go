package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	referencesJoinSeparatorConstant         = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	exitCodeSuffixTemplateConstant          = " (exit code %d%s)"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	gitDirectoryFlagPrefixConstant          = "--git-dir="
	gitWorkTreeFlagPrefixConstant           = "--work-tree="
)

const (
	gitRevParseSubcommandNameConstant      = "rev-parse"
	gitFetchSubcommandNameConstant         = "fetch"
	gitPushSubcommandNameConstant          = "push"
	gitLogSubcommandNameConstant           = "log"
	gitReadTreeSubcommandNameConstant      = "read-tree"
	gitCheckoutIndexSubcommandNameConstant = "checkout-index"
	gitForEachRefSubcommandNameConstant    = "for-each-ref"
	gitLsRemoteSubcommandNameConstant      = "ls-remote"
	gitInitSubcommandNameConstant          = "init"
)

const (
	gitRevParseStartTemplateConstant                 = "Resolving %s in %s"
	gitRevParseSuccessTemplateConstant               = "Resolved %s in %s"
	gitRevParseFailureTemplateConstant               = "Failed to resolve %s in %s"
	gitRevParseExecutionFailureTemplateConstant      = "Unable to resolve %s in %s: %s"
	gitFetchStartTemplateConstant                    = "Fetching %s from %s in %s"
	gitFetchSuccessTemplateConstant                  = "Fetched %s from %s in %s"
	gitFetchFailureTemplateConstant                  = "Failed to fetch %s from %s in %s"
	gitFetchExecutionFailureTemplateConstant         = "Unable to fetch %s from %s in %s: %s"
	gitPushStartTemplateConstant                     = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                   = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                   = "Failed to push %s to %s from %s"
	gitPushExecutionFailureTemplateConstant          = "Unable to push %s to %s from %s: %s"
	gitLogStartTemplateConstant                      = "Reading history of %s in %s"
	gitLogSuccessTemplateConstant                    = "Read history of %s in %s"
	gitLogFailureTemplateConstant                    = "Failed to read history of %s in %s"
	gitLogExecutionFailureTemplateConstant           = "Unable to read history of %s in %s: %s"
	gitReadTreeStartTemplateConstant                 = "Reading tree %s into the index of %s"
	gitReadTreeSuccessTemplateConstant               = "Read tree %s into the index of %s"
	gitReadTreeFailureTemplateConstant               = "Failed to read tree %s into the index of %s"
	gitReadTreeExecutionFailureTemplateConstant      = "Unable to read tree %s into the index of %s: %s"
	gitCheckoutIndexStartTemplateConstant            = "Writing index files into %s"
	gitCheckoutIndexSuccessTemplateConstant          = "Wrote index files into %s"
	gitCheckoutIndexFailureTemplateConstant          = "Failed to write index files into %s"
	gitCheckoutIndexExecutionFailureTemplateConstant = "Unable to write index files into %s: %s"
	gitForEachRefStartTemplateConstant               = "Listing references in %s"
	gitForEachRefSuccessTemplateConstant             = "Listed references in %s"
	gitForEachRefFailureTemplateConstant             = "Failed to list references in %s"
	gitForEachRefExecutionFailureTemplateConstant    = "Unable to list references in %s: %s"
	gitLsRemoteStartTemplateConstant                 = "Listing references of %s"
	gitLsRemoteSuccessTemplateConstant               = "Listed references of %s"
	gitLsRemoteFailureTemplateConstant               = "Failed to list references of %s"
	gitLsRemoteExecutionFailureTemplateConstant      = "Unable to list references of %s: %s"
	gitInitStartTemplateConstant                     = "Initializing repository in %s"
	gitInitSuccessTemplateConstant                   = "Initialized repository in %s"
	gitInitFailureTemplateConstant                   = "Failed to initialize repository in %s"
	gitInitExecutionFailureTemplateConstant          = "Unable to initialize repository in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := formatter.stripGlobalOptions(command.Details.Arguments)
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	location := formatter.describeWorkingDirectory(command)
	subcommandArguments := arguments[1:]

	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		revision := formatter.ensureValue(formatter.lastNonFlagArgument(subcommandArguments))
		return formatter.render(stageTemplates{
			start:            gitRevParseStartTemplateConstant,
			success:          gitRevParseSuccessTemplateConstant,
			failure:          gitRevParseFailureTemplateConstant,
			executionFailure: gitRevParseExecutionFailureTemplateConstant,
		}, stage, result, failure, revision, location)
	case gitFetchSubcommandNameConstant:
		remote, references := formatter.extractRemoteAndReferences(subcommandArguments)
		return formatter.render(stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, stage, result, failure, formatter.joinReferences(references), remote, location)
	case gitPushSubcommandNameConstant:
		remote, references := formatter.extractRemoteAndReferences(subcommandArguments)
		return formatter.render(stageTemplates{
			start:            gitPushStartTemplateConstant,
			success:          gitPushSuccessTemplateConstant,
			failure:          gitPushFailureTemplateConstant,
			executionFailure: gitPushExecutionFailureTemplateConstant,
		}, stage, result, failure, formatter.joinReferences(references), remote, location)
	case gitLogSubcommandNameConstant:
		revisionRange := formatter.ensureValue(formatter.lastNonFlagArgument(subcommandArguments))
		return formatter.render(stageTemplates{
			start:            gitLogStartTemplateConstant,
			success:          gitLogSuccessTemplateConstant,
			failure:          gitLogFailureTemplateConstant,
			executionFailure: gitLogExecutionFailureTemplateConstant,
		}, stage, result, failure, revisionRange, location)
	case gitReadTreeSubcommandNameConstant:
		treeish := formatter.ensureValue(formatter.lastNonFlagArgument(subcommandArguments))
		return formatter.render(stageTemplates{
			start:            gitReadTreeStartTemplateConstant,
			success:          gitReadTreeSuccessTemplateConstant,
			failure:          gitReadTreeFailureTemplateConstant,
			executionFailure: gitReadTreeExecutionFailureTemplateConstant,
		}, stage, result, failure, treeish, formatter.describeWorkTree(command))
	case gitCheckoutIndexSubcommandNameConstant:
		return formatter.render(stageTemplates{
			start:            gitCheckoutIndexStartTemplateConstant,
			success:          gitCheckoutIndexSuccessTemplateConstant,
			failure:          gitCheckoutIndexFailureTemplateConstant,
			executionFailure: gitCheckoutIndexExecutionFailureTemplateConstant,
		}, stage, result, failure, formatter.describeWorkTree(command))
	case gitForEachRefSubcommandNameConstant:
		return formatter.render(stageTemplates{
			start:            gitForEachRefStartTemplateConstant,
			success:          gitForEachRefSuccessTemplateConstant,
			failure:          gitForEachRefFailureTemplateConstant,
			executionFailure: gitForEachRefExecutionFailureTemplateConstant,
		}, stage, result, failure, location)
	case gitLsRemoteSubcommandNameConstant:
		remote, _ := formatter.extractRemoteAndReferences(subcommandArguments)
		return formatter.render(stageTemplates{
			start:            gitLsRemoteStartTemplateConstant,
			success:          gitLsRemoteSuccessTemplateConstant,
			failure:          gitLsRemoteFailureTemplateConstant,
			executionFailure: gitLsRemoteExecutionFailureTemplateConstant,
		}, stage, result, failure, remote)
	case gitInitSubcommandNameConstant:
		target := formatter.lastNonFlagArgument(subcommandArguments)
		if len(target) == 0 {
			target = location
		}
		return formatter.render(stageTemplates{
			start:            gitInitStartTemplateConstant,
			success:          gitInitSuccessTemplateConstant,
			failure:          gitInitFailureTemplateConstant,
			executionFailure: gitInitExecutionFailureTemplateConstant,
		}, stage, result, failure, target)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) render(templates stageTemplates, stage messageStage, result ExecutionResult, failure error, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		baseMessage := fmt.Sprintf(templates.failure, values...)
		return baseMessage + fmt.Sprintf(exitCodeSuffixTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, append(values, formatter.describeFailure(failure))...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// describeWorkingDirectory prefers an explicit --git-dir over the process working directory.
func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	for _, argument := range command.Details.Arguments {
		if strings.HasPrefix(argument, gitDirectoryFlagPrefixConstant) {
			return strings.TrimPrefix(argument, gitDirectoryFlagPrefixConstant)
		}
	}
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeWorkTree(command ShellCommand) string {
	for _, argument := range command.Details.Arguments {
		if strings.HasPrefix(argument, gitWorkTreeFlagPrefixConstant) {
			return strings.TrimPrefix(argument, gitWorkTreeFlagPrefixConstant)
		}
	}
	return formatter.describeWorkingDirectory(command)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// stripGlobalOptions drops the options placed before the git subcommand.
func (formatter CommandMessageFormatter) stripGlobalOptions(arguments []string) []string {
	for argumentIndex, argument := range arguments {
		if !strings.HasPrefix(argument, flagPrefixConstant) {
			return arguments[argumentIndex:]
		}
	}
	return nil
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		trimmedArgument := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	var positionalArguments []string
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, trimmedArgument)
	}
	if len(positionalArguments) == 0 {
		return fallbackUnknownValueLabelConstant, nil
	}
	return positionalArguments[0], positionalArguments[1:]
}

func (formatter CommandMessageFormatter) joinReferences(references []string) string {
	if len(references) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.Join(references, referencesJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}
