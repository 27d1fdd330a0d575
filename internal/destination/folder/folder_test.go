package folder_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/destination/folder"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/revision"
)

const (
	testLabelNameConstant = "GitOrigin-RevId"
	testReferenceConstant = "0123456789abcdef0123456789abcdef01234567"
)

func writeTree(testInstance *testing.T, root string, files map[string]string) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, relativePath)
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
}

func testChange() revision.Change {
	reference := revision.NewFolderReference(testReferenceConstant, time.Time{}, testLabelNameConstant)
	return revision.NewChange(reference, authoring.NewAuthor("Foo", "foo@example.com"), "subject\n", time.Unix(1400110011, 0), nil)
}

func TestNewDestinationRequiresPath(testInstance *testing.T) {
	_, destinationError := folder.NewDestination("  ", nil)
	require.EqualError(testInstance, destinationError, "folder destination requires a non-empty 'path' field")
	require.True(testInstance, failures.IsValidationError(destinationError))
}

func TestDestinationWriteReplacesContents(testInstance *testing.T) {
	treeDirectory := testInstance.TempDir()
	writeTree(testInstance, treeDirectory, map[string]string{
		"test.txt":        "some content",
		"nested/file.txt": "nested content",
	})
	folderPath := filepath.Join(testInstance.TempDir(), "out")
	writeTree(testInstance, folderPath, map[string]string{"stale.txt": "stale"})

	observedCore, observedLogs := observer.New(zap.InfoLevel)
	destination, destinationError := folder.NewDestination(folderPath, zap.New(observedCore))
	require.NoError(testInstance, destinationError)
	require.Equal(testInstance, folderPath, destination.Path())

	require.NoError(testInstance, destination.Write(context.Background(), testChange(), treeDirectory))

	testCases := []struct {
		name            string
		relativePath    string
		expectedContent string
	}{
		{name: "top_level_file", relativePath: "test.txt", expectedContent: "some content"},
		{name: "nested_file", relativePath: "nested/file.txt", expectedContent: "nested content"},
		{name: "revision_file", relativePath: folder.RevisionFileName, expectedContent: testLabelNameConstant + ": " + testReferenceConstant + "\n"},
	}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			contents, readError := os.ReadFile(filepath.Join(folderPath, testCase.relativePath))
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedContent, string(contents))
		})
	}

	_, statError := os.Stat(filepath.Join(folderPath, "stale.txt"))
	require.True(testInstance, os.IsNotExist(statError))
	require.Equal(testInstance, 1, observedLogs.FilterMessage("destination folder updated").Len())
}

func TestDestinationLastRevision(testInstance *testing.T) {
	folderPath := filepath.Join(testInstance.TempDir(), "out")
	destination, destinationError := folder.NewDestination(folderPath, nil)
	require.NoError(testInstance, destinationError)

	_, found, readError := destination.LastRevision()
	require.NoError(testInstance, readError)
	require.False(testInstance, found)

	require.NoError(testInstance, destination.Write(context.Background(), testChange(), testInstance.TempDir()))

	lastRevision, found, readError := destination.LastRevision()
	require.NoError(testInstance, readError)
	require.True(testInstance, found)
	require.Equal(testInstance, testReferenceConstant, lastRevision)
}
