package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/configuration"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/ui"
	pathutils "github.com/temirov/gitmigrate/internal/utils/path"
)

const (
	executorErrorTemplateConstant     = "unable to construct command executor: %w"
	storagePathErrorTemplateConstant  = "unable to resolve repository storage: %w"
	cacheErrorTemplateConstant        = "unable to construct repository cache: %w"
	registryErrorTemplateConstant     = "unable to construct configuration registry: %w"
	loadConfigurationTemplateConstant = "unable to load migration configuration: %w"
	configurationPathRequiredConstant = "migration configuration path required"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// Executor runs both git and checkout hook commands.
type Executor interface {
	gitrepo.GitExecutor
	ExecuteCommand(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// commandEnvironment carries the collaborators shared by run and validate.
type commandEnvironment struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     Executor
	HomeExpander                 *pathutils.HomeExpander
}

func (environment commandEnvironment) logger() *zap.Logger {
	if environment.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := environment.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (environment commandEnvironment) configuration() CommandConfiguration {
	if environment.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return environment.ConfigurationProvider().Sanitize()
}

func (environment commandEnvironment) homeExpander() *pathutils.HomeExpander {
	if environment.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return environment.HomeExpander
}

// resolveExecutor returns the injected executor or a process-backed one.
// Console logging reports every git command as a human-readable line.
func (environment commandEnvironment) resolveExecutor(logger *zap.Logger, migrationConsole console.Console) (Executor, error) {
	if environment.Executor != nil {
		return environment.Executor, nil
	}
	observers := []execshell.CommandEventObserver{}
	if environment.HumanReadableLoggingProvider != nil && environment.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(migrationConsole))
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if executorError != nil {
		return nil, fmt.Errorf(executorErrorTemplateConstant, executorError)
	}
	return shellExecutor, nil
}

// loadMigrations builds the registry from the command configuration and loads the file.
func (environment commandEnvironment) loadMigrations(configurationPath string, commandConfiguration CommandConfiguration) (*configuration.Configuration, error) {
	if len(strings.TrimSpace(configurationPath)) == 0 {
		return nil, errors.New(configurationPathRequiredConstant)
	}

	logger := environment.logger()
	migrationConsole := console.NewLoggerConsole(logger)
	executor, executorError := environment.resolveExecutor(logger, migrationConsole)
	if executorError != nil {
		return nil, executorError
	}

	storagePath, storageError := environment.homeExpander().ResolvePath(commandConfiguration.RepositoryStorage)
	if storageError != nil {
		return nil, fmt.Errorf(storagePathErrorTemplateConstant, storageError)
	}
	repositoryCache, cacheError := gitrepo.NewRepositoryCache(storagePath, executor, nil, logger)
	if cacheError != nil {
		return nil, fmt.Errorf(cacheErrorTemplateConstant, cacheError)
	}

	registry, registryError := configuration.NewRegistry(configuration.Dependencies{
		RepositoryCache:    repositoryCache,
		HookExecutor:       executor,
		Console:            migrationConsole,
		Logger:             logger,
		OriginCheckoutHook: commandConfiguration.OriginCheckoutHook,
		OriginURLOverride:  commandConfiguration.OriginURLOverride,
		ForcePush:          commandConfiguration.ForcePush,
	})
	if registryError != nil {
		return nil, fmt.Errorf(registryErrorTemplateConstant, registryError)
	}

	loadedConfiguration, loadError := configuration.LoadFile(configurationPath, registry)
	if loadError != nil {
		return nil, fmt.Errorf(loadConfigurationTemplateConstant, loadError)
	}
	return loadedConfiguration, nil
}
