package revision_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/revision"
)

const (
	testLabelNameConstant = "GitOrigin-RevId"
)

func TestParseLabels(testInstance *testing.T) {
	testCases := []struct {
		name             string
		message          string
		expectedLabels   map[string]string
		expectedWarnings []string
	}{
		{
			name:             "no_labels",
			message:          "subject only\n",
			expectedLabels:   map[string]string{},
			expectedWarnings: nil,
		},
		{
			name:             "colon_and_equals",
			message:          "subject\n\nBUG=123\nReviewed-by: someone\n",
			expectedLabels:   map[string]string{"BUG": "123", "Reviewed-by": "someone"},
			expectedWarnings: nil,
		},
		{
			name:             "subject_is_not_a_label",
			message:          "fix: crash on start\n\nbody text\n",
			expectedLabels:   map[string]string{},
			expectedWarnings: nil,
		},
		{
			name:           "duplicate_keeps_last",
			message:        "I am a commit with a label happening twice\n\nfoo: bar\n\nfoo: baz\n",
			expectedLabels: map[string]string{"foo": "baz"},
			expectedWarnings: []string{
				"Possible duplicate label 'foo' happening multiple times in commit. Keeping only the last value: 'baz'\n  Discarded value: 'bar'",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingConsole := console.NewRecordingConsole()
			labels := revision.ParseLabels(testCase.message, recordingConsole)
			require.Equal(testInstance, testCase.expectedLabels, labels)
			require.Equal(testInstance, testCase.expectedWarnings, recordingConsole.MessagesOfType(console.MessageTypeWarning))
		})
	}
}

func TestChangeFirstLineMessage(testInstance *testing.T) {
	reference := revision.NewFolderReference("/tmp/folder", time.Time{}, testLabelNameConstant)
	change := revision.NewChange(reference, authoring.NewAuthor("John Name", "john@name.com"), "change2\n\nbody\n", time.Unix(0, 0), nil)

	require.Equal(testInstance, "change2", change.FirstLineMessage())
	require.Equal(testInstance, "/tmp/folder", change.Reference.AsString())
	require.Equal(testInstance, "john@name.com", change.Author.Email)
}

func TestFolderReferenceTimestamp(testInstance *testing.T) {
	unknownReference := revision.NewFolderReference("/tmp/folder", time.Time{}, testLabelNameConstant)
	_, known, readError := unknownReference.ReadTimestamp()
	require.NoError(testInstance, readError)
	require.False(testInstance, known)
	require.Equal(testInstance, testLabelNameConstant, unknownReference.LabelName())

	snapshotTime := time.Date(2037, time.February, 16, 13, 0, 0, 0, time.UTC)
	knownReference := revision.NewFolderReference("/tmp/folder", snapshotTime, testLabelNameConstant)
	timestamp, known, readError := knownReference.ReadTimestamp()
	require.NoError(testInstance, readError)
	require.True(testInstance, known)
	require.True(testInstance, snapshotTime.Equal(timestamp))
}
