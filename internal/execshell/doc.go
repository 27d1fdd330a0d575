// Package execshell runs external processes for the migration tooling.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// notifications, turning non-zero exit codes into CommandFailedError so git
// and checkout hook failures surface with their captured standard error.
package execshell
