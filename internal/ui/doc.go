// Package ui renders git subprocess events as console messages for people
// watching a migration run.
package ui
