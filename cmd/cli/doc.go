// Package cli constructs the gitmigrate command-line interface. It wires the
// Cobra command hierarchy to the viper settings loader and the zap logger and
// registers the run and validate migration commands.
package cli
