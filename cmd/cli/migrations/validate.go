package migrations

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pathutils "github.com/temirov/gitmigrate/internal/utils/path"
)

const (
	validateCommandUseConstant              = "validate <config>"
	validateCommandShortDescriptionConstant = "Check a migrations file and list its migrations"
	validateCommandLongDescriptionConstant  = "validate evaluates every migration in the file without fetching or writing anything and prints the migration names."
	validatedMigrationTemplateConstant      = "%s\n"
	validateArgumentCountConstant           = 1
)

// ValidateCommandBuilder assembles the validate command.
type ValidateCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Executor              Executor
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the validate command.
func (builder *ValidateCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   validateCommandUseConstant,
		Short: validateCommandShortDescriptionConstant,
		Long:  validateCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(validateArgumentCountConstant),
		RunE:  builder.run,
	}, nil
}

func (builder *ValidateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	environment := commandEnvironment{
		LoggerProvider:        builder.LoggerProvider,
		ConfigurationProvider: builder.ConfigurationProvider,
		Executor:              builder.Executor,
		HomeExpander:          builder.HomeExpander,
	}
	loadedConfiguration, loadError := environment.loadMigrations(strings.TrimSpace(arguments[0]), environment.configuration())
	if loadError != nil {
		return loadError
	}
	for _, declaredMigration := range loadedConfiguration.Migrations() {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), validatedMigrationTemplateConstant, declaredMigration.Name()); writeError != nil {
			return writeError
		}
	}
	return nil
}
