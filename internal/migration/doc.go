// Package migration composes origins, transformations and destinations into
// runnable migrations.
package migration
