package origin

import (
	"time"
)

const (
	gitOriginLabelNameConstant = "GitOrigin-RevId"
)

// GitReference is a resolved commit in a git origin.
type GitReference struct {
	commitHash string
	authorTime time.Time
	labelName  string
}

// NewGitReference builds a reference for a resolved commit.
func NewGitReference(commitHash string, authorTime time.Time) GitReference {
	return GitReference{commitHash: commitHash, authorTime: authorTime, labelName: gitOriginLabelNameConstant}
}

// AsString returns the commit hash.
func (reference GitReference) AsString() string {
	return reference.commitHash
}

// ReadTimestamp returns the author time of the commit.
func (reference GitReference) ReadTimestamp() (time.Time, bool, error) {
	return reference.authorTime, !reference.authorTime.IsZero(), nil
}

// LabelName returns GitOrigin-RevId.
func (reference GitReference) LabelName() string {
	return reference.labelName
}
