// Package migrations provides the run and validate commands that load a
// migrations file and execute one of its migrations.
package migrations
