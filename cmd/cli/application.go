package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/cmd/cli/migrations"
	"github.com/temirov/gitmigrate/internal/utils"
	flagutils "github.com/temirov/gitmigrate/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gitmigrate"
	applicationShortDescriptionConstant     = "Move and mirror code between git repositories"
	applicationLongDescriptionConstant      = "gitmigrate mirrors git references between repositories and runs workflows that check out a revision, transform its files and write the result to a destination."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to the settings file (YAML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	gitRepositoryStorageConfigKeyConstant   = "git.repository_storage"
	environmentPrefixConstant               = "GITMIGRATE"
	configurationNameConstant               = "gitmigrate"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryNameConstant  = "gitmigrate"
)

var (
	supportedLogLevels  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	supportedLogFormats = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted settings of the CLI.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Git     ApplicationGitConfiguration    `mapstructure:"git"`
	Mirror  ApplicationMirrorConfiguration `mapstructure:"mirror"`
	Workdir string                         `mapstructure:"workdir"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationGitConfiguration stores settings applied to every git origin.
type ApplicationGitConfiguration struct {
	RepositoryStorage  string `mapstructure:"repository_storage"`
	OriginCheckoutHook string `mapstructure:"origin_checkout_hook"`
	OriginURLOverride  string `mapstructure:"origin_url_override"`
}

// ApplicationMirrorConfiguration stores settings applied to every mirror.
type ApplicationMirrorConfiguration struct {
	ForcePush bool `mapstructure:"force_push"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(DefaultSettingsDocument())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogLevelInfo), supportedLogLevels, logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), supportedLogFormats, logFormatFlagUsageConstant))

	runBuilder := migrations.RunCommandBuilder{
		LoggerProvider:               application.loggerProvider,
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.migrationsConfiguration,
	}
	if runCommand, runBuildError := runBuilder.Build(); runBuildError == nil {
		cobraCommand.AddCommand(runCommand)
	}

	validateBuilder := migrations.ValidateCommandBuilder{
		LoggerProvider:        application.loggerProvider,
		ConfigurationProvider: application.migrationsConfiguration,
	}
	if validateCommand, validateBuildError := validateBuilder.Build(); validateBuildError == nil {
		cobraCommand.AddCommand(validateCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatStructured),
		gitRepositoryStorageConfigKeyConstant: migrations.DefaultCommandConfiguration().RepositoryStorage,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		logLevel, choiceError := flagutils.NormalizeChoice(logLevelFlagNameConstant, application.logLevelFlagValue, supportedLogLevels)
		if choiceError != nil {
			return choiceError
		}
		application.configuration.Common.LogLevel = logLevel
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		logFormat, choiceError := flagutils.NormalizeChoice(logFormatFlagNameConstant, application.logFormatFlagValue, supportedLogFormats)
		if choiceError != nil {
			return choiceError
		}
		application.configuration.Common.LogFormat = logFormat
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	return nil
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) migrationsConfiguration() migrations.CommandConfiguration {
	return migrations.CommandConfiguration{
		RepositoryStorage:  application.configuration.Git.RepositoryStorage,
		OriginCheckoutHook: application.configuration.Git.OriginCheckoutHook,
		OriginURLOverride:  application.configuration.Git.OriginURLOverride,
		ForcePush:          application.configuration.Mirror.ForcePush,
		Workdir:            application.configuration.Workdir,
	}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
