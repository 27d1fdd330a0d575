package migrations

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	pathutils "github.com/temirov/gitmigrate/internal/utils/path"
)

const (
	runCommandUseConstant                 = "run <config> [migration] [source-ref]"
	runCommandShortDescriptionConstant    = "Run a migration from a configuration file"
	runCommandLongDescriptionConstant     = "run loads the migrations file, selects the named migration (default 'default') and runs it for the optional source reference."
	workdirFlagNameConstant               = "workdir"
	workdirFlagUsageConstant              = "Working directory for checkouts. A temporary directory is used and removed when empty."
	forcePushFlagNameConstant             = "force-push"
	forcePushFlagUsageConstant            = "Allow non-fast-forward updates when mirroring."
	repositoryStorageFlagNameConstant     = "git-repo-storage"
	repositoryStorageFlagUsageConstant    = "Directory holding the cached bare repositories."
	checkoutHookFlagNameConstant          = "origin-checkout-hook"
	checkoutHookFlagUsageConstant         = "Command run inside every git origin checkout."
	originURLFlagNameConstant             = "git-origin-url"
	originURLFlagUsageConstant            = "Fetch every git origin from this URL instead of the configured one."
	defaultMigrationNameConstant          = "default"
	temporaryWorkdirPatternConstant       = "gitmigrate-workdir-"
	temporaryWorkdirErrorTemplateConstant = "unable to create working directory: %w"
	workdirErrorTemplateConstant          = "unable to resolve working directory: %w"
	migrationStartedMessageConstant       = "running migration"
	migrationFinishedMessageConstant      = "migration finished"
	logFieldMigrationConstant             = "migration"
	logFieldSourceReferenceConstant       = "source_ref"
	logFieldWorkdirConstant               = "workdir"
	logFieldConfigurationPathConstant     = "config"
	runMinimumArgumentsConstant           = 1
	runMaximumArgumentsConstant           = 3
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     Executor
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.RangeArgs(runMinimumArgumentsConstant, runMaximumArgumentsConstant),
		RunE:  builder.run,
	}

	command.Flags().String(workdirFlagNameConstant, "", workdirFlagUsageConstant)
	command.Flags().Bool(forcePushFlagNameConstant, false, forcePushFlagUsageConstant)
	command.Flags().String(repositoryStorageFlagNameConstant, "", repositoryStorageFlagUsageConstant)
	command.Flags().String(checkoutHookFlagNameConstant, "", checkoutHookFlagUsageConstant)
	command.Flags().String(originURLFlagNameConstant, "", originURLFlagUsageConstant)

	return command, nil
}

func (builder *RunCommandBuilder) environment() commandEnvironment {
	return commandEnvironment{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
		Executor:                     builder.Executor,
		HomeExpander:                 builder.HomeExpander,
	}
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) (runError error) {
	environment := builder.environment()
	commandConfiguration := applyRunFlags(command, environment.configuration())

	configurationPath := strings.TrimSpace(arguments[0])
	migrationName := defaultMigrationNameConstant
	if len(arguments) > 1 && len(strings.TrimSpace(arguments[1])) > 0 {
		migrationName = strings.TrimSpace(arguments[1])
	}
	sourceReference := ""
	if len(arguments) > 2 {
		sourceReference = strings.TrimSpace(arguments[2])
	}

	loadedConfiguration, loadError := environment.loadMigrations(configurationPath, commandConfiguration)
	if loadError != nil {
		return loadError
	}
	selectedMigration, lookupError := loadedConfiguration.Migration(migrationName)
	if lookupError != nil {
		return lookupError
	}

	workdir, workdirError := environment.homeExpander().ResolvePath(commandConfiguration.Workdir)
	if workdirError != nil {
		return fmt.Errorf(workdirErrorTemplateConstant, workdirError)
	}
	if len(workdir) == 0 {
		temporaryWorkdir, temporaryError := os.MkdirTemp("", temporaryWorkdirPatternConstant)
		if temporaryError != nil {
			return fmt.Errorf(temporaryWorkdirErrorTemplateConstant, temporaryError)
		}
		workdir = temporaryWorkdir
		defer func() {
			runError = multierr.Append(runError, os.RemoveAll(temporaryWorkdir))
		}()
	}

	logger := environment.logger()
	logger.Info(
		migrationStartedMessageConstant,
		zap.String(logFieldMigrationConstant, migrationName),
		zap.String(logFieldSourceReferenceConstant, sourceReference),
		zap.String(logFieldWorkdirConstant, workdir),
		zap.String(logFieldConfigurationPathConstant, configurationPath),
	)
	if migrationError := selectedMigration.Run(command.Context(), workdir, sourceReference); migrationError != nil {
		return migrationError
	}
	logger.Info(migrationFinishedMessageConstant, zap.String(logFieldMigrationConstant, migrationName))
	return nil
}

// applyRunFlags overlays explicitly set flags on the configured values.
func applyRunFlags(command *cobra.Command, commandConfiguration CommandConfiguration) CommandConfiguration {
	flagSet := command.Flags()
	if flagSet.Changed(workdirFlagNameConstant) {
		commandConfiguration.Workdir, _ = flagSet.GetString(workdirFlagNameConstant)
	}
	if flagSet.Changed(forcePushFlagNameConstant) {
		commandConfiguration.ForcePush, _ = flagSet.GetBool(forcePushFlagNameConstant)
	}
	if flagSet.Changed(repositoryStorageFlagNameConstant) {
		commandConfiguration.RepositoryStorage, _ = flagSet.GetString(repositoryStorageFlagNameConstant)
	}
	if flagSet.Changed(checkoutHookFlagNameConstant) {
		commandConfiguration.OriginCheckoutHook, _ = flagSet.GetString(checkoutHookFlagNameConstant)
	}
	if flagSet.Changed(originURLFlagNameConstant) {
		commandConfiguration.OriginURLOverride, _ = flagSet.GetString(originURLFlagNameConstant)
	}
	return commandConfiguration.Sanitize()
}
