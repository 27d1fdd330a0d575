package transform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/transform"
)

func TestNewMoveValidation(testInstance *testing.T) {
	testCases := []struct {
		name   string
		before string
		after  string
	}{
		{name: "absolute_before", before: "/etc/passwd", after: "passwd"},
		{name: "escaping_after", before: "file", after: "../file"},
		{name: "empty_before", before: "", after: "file"},
		{name: "same_path", before: "dir/file", after: "dir/./file"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, moveError := transform.NewMove(testCase.before, testCase.after)
			require.Error(testInstance, moveError)
			require.True(testInstance, failures.IsValidationError(moveError))
		})
	}
}

func TestMoveTransformAndReverse(testInstance *testing.T) {
	checkoutDirectory := newCheckoutDirectory(testInstance, "file1")
	move := newMove(testInstance, "file1", "nested/dir/file1")
	work := transform.Work{CheckoutDirectory: checkoutDirectory}

	require.Equal(testInstance, "Moving file1", move.Describe())
	require.NoError(testInstance, move.Transform(context.Background(), work))
	require.FileExists(testInstance, filepath.Join(checkoutDirectory, "nested", "dir", "file1"))

	reverse := move.Reverse()
	require.Equal(testInstance, "Moving nested/dir/file1", reverse.Describe())
	require.NoError(testInstance, reverse.Transform(context.Background(), work))
	require.FileExists(testInstance, filepath.Join(checkoutDirectory, "file1"))
}

func TestMoveFailures(testInstance *testing.T) {
	checkoutDirectory := newCheckoutDirectory(testInstance, "file1", "file2")
	work := transform.Work{CheckoutDirectory: checkoutDirectory}

	missingError := newMove(testInstance, "missing", "other").Transform(context.Background(), work)
	require.EqualError(testInstance, missingError, "Error moving 'missing'. It doesn't exist in the workdir")

	existingError := newMove(testInstance, "file1", "file2").Transform(context.Background(), work)
	require.EqualError(testInstance, existingError, "Cannot move file to 'file2' because it already exists")

	_, statError := os.Stat(filepath.Join(checkoutDirectory, "file1"))
	require.NoError(testInstance, statError)
}
