package migrations

import "strings"

const (
	defaultRepositoryStorageConstant = "~/.gitmigrate/cache"
)

// CommandConfiguration captures the settings shared by the migration commands.
type CommandConfiguration struct {
	RepositoryStorage  string
	OriginCheckoutHook string
	OriginURLOverride  string
	ForcePush          bool
	Workdir            string
}

// DefaultCommandConfiguration provides default migration command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RepositoryStorage: defaultRepositoryStorageConstant}
}

// Sanitize trims values and restores the default repository storage.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryStorage = strings.TrimSpace(configuration.RepositoryStorage)
	sanitized.OriginCheckoutHook = strings.TrimSpace(configuration.OriginCheckoutHook)
	sanitized.OriginURLOverride = strings.TrimSpace(configuration.OriginURLOverride)
	sanitized.Workdir = strings.TrimSpace(configuration.Workdir)
	if len(sanitized.RepositoryStorage) == 0 {
		sanitized.RepositoryStorage = defaultRepositoryStorageConstant
	}
	return sanitized
}
