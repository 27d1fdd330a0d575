package revision

import (
	"time"
)

// Reference points at a specific revision in an origin.
type Reference interface {
	// AsString returns the stable textual identity of the revision.
	AsString() string
	// ReadTimestamp returns the revision time when it is known.
	ReadTimestamp() (time.Time, bool, error)
	// LabelName is the label used to record this reference in a destination.
	LabelName() string
}

// FolderReference points at a directory snapshot.
type FolderReference struct {
	path      string
	timestamp time.Time
	labelName string
}

// NewFolderReference builds a FolderReference. A zero timestamp means the time is unknown.
func NewFolderReference(path string, timestamp time.Time, labelName string) FolderReference {
	return FolderReference{path: path, timestamp: timestamp, labelName: labelName}
}

// AsString returns the folder path.
func (folderReference FolderReference) AsString() string {
	return folderReference.path
}

// ReadTimestamp returns the snapshot time when one was recorded.
func (folderReference FolderReference) ReadTimestamp() (time.Time, bool, error) {
	if folderReference.timestamp.IsZero() {
		return time.Time{}, false, nil
	}
	return folderReference.timestamp, true, nil
}

// LabelName returns the configured label name.
func (folderReference FolderReference) LabelName() string {
	return folderReference.labelName
}
