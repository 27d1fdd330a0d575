// Package mirror copies references from one git repository to another.
//
// A run fetches the configured refspecs into the shared repository cache,
// pushes them to the destination and, when pruning is enabled, deletes
// destination references that no longer have an origin counterpart.
package mirror
