package migration

import (
	"context"

	"github.com/temirov/gitmigrate/internal/revision"
)

// Migration is a named unit of work started from the command line.
type Migration interface {
	Name() string
	// Run executes the migration. An empty source reference selects the
	// default reference of the origin.
	Run(executionContext context.Context, workdir string, sourceReference string) error
}

// Destination receives a transformed tree together with the change it was built from.
type Destination interface {
	Write(executionContext context.Context, change revision.Change, treeDirectory string) error
}
