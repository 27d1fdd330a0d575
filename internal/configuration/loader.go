package configuration

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/migration"
)

const (
	pathRequiredMessageConstant        = "migration configuration path must be provided"
	readFailureTemplateConstant        = "failed to load migration configuration: %w"
	parseFailureTemplateConstant       = "failed to parse migration configuration: %v"
	noMigrationsMessageConstant        = "migration configuration must define at least one migration"
	notMigrationTemplateConstant       = "migrations element %d is a %s, not a migration"
	duplicateMigrationTemplateConstant = "A migration with the name '%s' is already defined"
	unknownMigrationTemplateConstant   = "Cannot find migration '%s'. Available migrations: %s"
	migrationNamesSeparatorConstant    = ", "
)

// File is the document layout of a migration configuration.
type File struct {
	Migrations []map[string]any `yaml:"migrations"`
}

// Configuration holds the migrations declared in one file, in declaration order.
type Configuration struct {
	migrations []migration.Migration
	byName     map[string]migration.Migration
}

// LoadFile reads and evaluates a migration configuration.
func LoadFile(filePath string, registry *Registry) (*Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, failures.NewValidationError(pathRequiredMessageConstant)
	}
	contents, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(readFailureTemplateConstant, readError)
	}
	return Load(contents, registry)
}

// Load evaluates a migration configuration document.
func Load(contents []byte, registry *Registry) (*Configuration, error) {
	var document File
	if unmarshalError := yaml.Unmarshal(contents, &document); unmarshalError != nil {
		return nil, failures.NewValidationError(parseFailureTemplateConstant, unmarshalError)
	}
	if len(document.Migrations) == 0 {
		return nil, failures.NewValidationError(noMigrationsMessageConstant)
	}

	configuration := &Configuration{byName: map[string]migration.Migration{}}
	for migrationIndex, call := range document.Migrations {
		evaluated, evaluationError := registry.Evaluate(call)
		if evaluationError != nil {
			return nil, evaluationError
		}
		declaredMigration, isMigration := evaluated.(migration.Migration)
		if !isMigration {
			return nil, failures.NewValidationError(notMigrationTemplateConstant, migrationIndex, kindName(evaluated))
		}
		if _, duplicate := configuration.byName[declaredMigration.Name()]; duplicate {
			return nil, failures.NewValidationError(duplicateMigrationTemplateConstant, declaredMigration.Name())
		}
		configuration.byName[declaredMigration.Name()] = declaredMigration
		configuration.migrations = append(configuration.migrations, declaredMigration)
	}
	return configuration, nil
}

// Migrations returns every migration in declaration order.
func (configuration *Configuration) Migrations() []migration.Migration {
	return append([]migration.Migration(nil), configuration.migrations...)
}

// Migration looks a migration up by name.
func (configuration *Configuration) Migration(name string) (migration.Migration, error) {
	declaredMigration, exists := configuration.byName[name]
	if !exists {
		names := make([]string, 0, len(configuration.migrations))
		for _, candidate := range configuration.migrations {
			names = append(names, candidate.Name())
		}
		return nil, failures.NewValidationError(unknownMigrationTemplateConstant, name, strings.Join(names, migrationNamesSeparatorConstant))
	}
	return declaredMigration, nil
}
