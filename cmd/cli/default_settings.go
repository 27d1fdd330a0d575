package cli

import (
	"bytes"
	_ "embed"
)

//go:embed default_config.yaml
var defaultSettingsDocument []byte

// DefaultSettingsDocument returns a private copy of the built-in gitmigrate.yaml together with its viper format.
func DefaultSettingsDocument() ([]byte, string) {
	return bytes.Clone(defaultSettingsDocument), configurationTypeConstant
}
