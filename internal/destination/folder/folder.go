// Package folder writes migrated trees into a local directory.
package folder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/revision"
)

const (
	// RevisionFileName records the last migrated reference inside the destination folder.
	RevisionFileName = ".gitmigrate-revision"

	missingPathMessageConstant        = "folder destination requires a non-empty 'path' field"
	prepareFailureTemplateConstant    = "Cannot prepare destination folder '%s'"
	copyFailureTemplateConstant       = "Cannot copy '%s' to destination folder '%s'"
	revisionFailureTemplateConstant   = "Cannot record revision in destination folder '%s'"
	revisionLineTemplateConstant      = "%s: %s\n"
	revisionSeparatorConstant         = ":"
	malformedRevisionTemplateConstant = "Malformed revision file '%s'"
	directoryPermissionsConstant      = 0o755
	filePermissionsConstant           = 0o644
	writeCompletedMessageConstant     = "destination folder updated"
	logFieldPathConstant              = "path"
	logFieldReferenceConstant         = "reference"
)

// Destination replaces the contents of a folder with each migrated tree.
type Destination struct {
	folderPath string
	logger     *zap.Logger
}

// NewDestination validates the folder path.
func NewDestination(folderPath string, logger *zap.Logger) (*Destination, error) {
	if len(strings.TrimSpace(folderPath)) == 0 {
		return nil, failures.NewValidationError(missingPathMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Destination{folderPath: folderPath, logger: logger}, nil
}

// Path returns the destination folder.
func (destination *Destination) Path() string {
	return destination.folderPath
}

// Write mirrors treeDirectory into the folder and records the change reference
// under its label name.
func (destination *Destination) Write(executionContext context.Context, change revision.Change, treeDirectory string) error {
	if prepareError := emptyDirectory(destination.folderPath); prepareError != nil {
		return failures.NewRepositoryError(prepareError, prepareFailureTemplateConstant, destination.folderPath)
	}

	copyOptions := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
	}
	if copyError := copy.Copy(treeDirectory, destination.folderPath, copyOptions); copyError != nil {
		return failures.NewRepositoryError(copyError, copyFailureTemplateConstant, treeDirectory, destination.folderPath)
	}

	revisionLine := fmt.Sprintf(revisionLineTemplateConstant, change.Reference.LabelName(), change.Reference.AsString())
	revisionPath := filepath.Join(destination.folderPath, RevisionFileName)
	if writeError := os.WriteFile(revisionPath, []byte(revisionLine), filePermissionsConstant); writeError != nil {
		return failures.NewRepositoryError(writeError, revisionFailureTemplateConstant, destination.folderPath)
	}

	destination.logger.Info(
		writeCompletedMessageConstant,
		zap.String(logFieldPathConstant, destination.folderPath),
		zap.String(logFieldReferenceConstant, change.Reference.AsString()),
	)
	return nil
}

// LastRevision returns the reference recorded by the previous write, or false
// when the folder has never been written.
func (destination *Destination) LastRevision() (string, bool, error) {
	contents, readError := os.ReadFile(filepath.Join(destination.folderPath, RevisionFileName))
	if os.IsNotExist(readError) {
		return "", false, nil
	}
	if readError != nil {
		return "", false, failures.NewRepositoryError(readError, revisionFailureTemplateConstant, destination.folderPath)
	}
	_, reference, found := strings.Cut(strings.TrimSpace(string(contents)), revisionSeparatorConstant)
	if !found {
		return "", false, failures.NewRepositoryError(nil, malformedRevisionTemplateConstant, RevisionFileName)
	}
	return strings.TrimSpace(reference), true, nil
}

func emptyDirectory(directory string) error {
	if mkdirError := os.MkdirAll(directory, directoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}
	entries, readError := os.ReadDir(directory)
	if readError != nil {
		return readError
	}
	for _, entry := range entries {
		if removeError := os.RemoveAll(filepath.Join(directory, entry.Name())); removeError != nil {
			return removeError
		}
	}
	return nil
}
