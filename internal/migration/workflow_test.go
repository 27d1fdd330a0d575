package migration_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/destination/folder"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/gitrepo/gitrepotest"
	"github.com/temirov/gitmigrate/internal/migration"
	"github.com/temirov/gitmigrate/internal/mirror"
	"github.com/temirov/gitmigrate/internal/origin"
	"github.com/temirov/gitmigrate/internal/revision"
	"github.com/temirov/gitmigrate/internal/transform"
)

const (
	testDefaultAuthorConstant = "Default <default@example.com>"
	testOriginAuthorConstant  = "John Name <john@name.com>"
)

var (
	_ migration.Migration   = (*mirror.Mirror)(nil)
	_ migration.Migration   = (*migration.Workflow)(nil)
	_ migration.Destination = (*folder.Destination)(nil)
)

type recordingDestination struct {
	changes []revision.Change
	trees   []map[string]string
	err     error
}

func (destination *recordingDestination) Write(executionContext context.Context, change revision.Change, treeDirectory string) error {
	if destination.err != nil {
		return destination.err
	}
	tree := map[string]string{}
	walkError := filepath.WalkDir(treeDirectory, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil || entry.IsDir() {
			return walkErr
		}
		contents, readError := os.ReadFile(path)
		if readError != nil {
			return readError
		}
		relativePath, _ := filepath.Rel(treeDirectory, path)
		tree[filepath.ToSlash(relativePath)] = string(contents)
		return nil
	})
	destination.changes = append(destination.changes, change)
	destination.trees = append(destination.trees, tree)
	return walkError
}

type workflowFixture struct {
	scratch  *gitrepotest.ScratchRepository
	origin   *origin.GitOrigin
	console  *console.RecordingConsole
	pipeline *transform.Pipeline
	workdir  string
}

func newWorkflowFixture(testInstance *testing.T) *workflowFixture {
	testInstance.Helper()
	environment := gitrepotest.HermeticEnvironment(testInstance)
	scratch := gitrepotest.NewScratchRepository(testInstance, environment)
	scratch.CommitFile(testOriginAuthorConstant, "first file\n\nReviewed-by: someone", "test.txt", "some content")

	executor := gitrepotest.NewExecutor(testInstance)
	cache, cacheError := gitrepo.NewRepositoryCache(filepath.Join(testInstance.TempDir(), "repos"), executor, environment, zaptest.NewLogger(testInstance))
	require.NoError(testInstance, cacheError)

	recordingConsole := console.NewRecordingConsole()
	gitOrigin, originError := origin.NewGitOrigin(scratch.URL(), "master", origin.RepoTypeGit, origin.Options{}, origin.Dependencies{
		RepositoryCache: cache,
		HookExecutor:    executor,
		Console:         recordingConsole,
		Logger:          zaptest.NewLogger(testInstance),
	})
	require.NoError(testInstance, originError)

	move, moveError := transform.NewMove("test.txt", "moved/test.txt")
	require.NoError(testInstance, moveError)
	pipeline, pipelineError := transform.NewPipeline([]transform.Transformation{move}, []transform.Transformation{move.Reverse()})
	require.NoError(testInstance, pipelineError)

	return &workflowFixture{
		scratch:  scratch,
		origin:   gitOrigin,
		console:  recordingConsole,
		pipeline: pipeline,
		workdir:  testInstance.TempDir(),
	}
}

func (fixture *workflowFixture) newWorkflow(testInstance *testing.T, authoringPolicy authoring.Authoring, destination migration.Destination) *migration.Workflow {
	testInstance.Helper()
	workflow, workflowError := migration.NewWorkflow(migration.WorkflowConfiguration{
		Name:        "default",
		Origin:      fixture.origin,
		Authoring:   authoringPolicy,
		Pipeline:    fixture.pipeline,
		Destination: destination,
	}, migration.WorkflowDependencies{Console: fixture.console, Logger: zaptest.NewLogger(testInstance)})
	require.NoError(testInstance, workflowError)
	return workflow
}

func TestWorkflowRunAppliesAuthoring(testInstance *testing.T) {
	passThru, passThruError := authoring.PassThru(testDefaultAuthorConstant)
	require.NoError(testInstance, passThruError)
	overwrite, overwriteError := authoring.Overwrite(testDefaultAuthorConstant)
	require.NoError(testInstance, overwriteError)
	whitelisted, whitelistedError := authoring.Whitelisted(testDefaultAuthorConstant, []string{"john@name.com"})
	require.NoError(testInstance, whitelistedError)

	testCases := []struct {
		name           string
		authoring      authoring.Authoring
		expectedAuthor string
	}{
		{name: "pass_thru", authoring: passThru, expectedAuthor: testOriginAuthorConstant},
		{name: "overwrite", authoring: overwrite, expectedAuthor: testDefaultAuthorConstant},
		{name: "whitelisted", authoring: whitelisted, expectedAuthor: testOriginAuthorConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newWorkflowFixture(testInstance)
			destination := &recordingDestination{}
			workflow := fixture.newWorkflow(testInstance, testCase.authoring, destination)
			require.Equal(testInstance, "default", workflow.Name())

			require.NoError(testInstance, workflow.Run(context.Background(), fixture.workdir, ""))

			require.Len(testInstance, destination.changes, 1)
			change := destination.changes[0]
			require.Equal(testInstance, testCase.expectedAuthor, change.Author.String())
			require.Equal(testInstance, fixture.scratch.Head(), change.Reference.AsString())
			require.Equal(testInstance, "someone", change.Labels["Reviewed-by"])
			require.Equal(testInstance, map[string]string{"moved/test.txt": "some content"}, destination.trees[0])
			require.Equal(testInstance, []string{"[1/1] Transform Moving test.txt"}, fixture.console.MessagesOfType(console.MessageTypeProgress))
		})
	}
}

func TestWorkflowRunWritesFolderDestination(testInstance *testing.T) {
	fixture := newWorkflowFixture(testInstance)
	overwrite, overwriteError := authoring.Overwrite(testDefaultAuthorConstant)
	require.NoError(testInstance, overwriteError)
	folderPath := filepath.Join(testInstance.TempDir(), "destination")
	destination, destinationError := folder.NewDestination(folderPath, zaptest.NewLogger(testInstance))
	require.NoError(testInstance, destinationError)

	firstHead := fixture.scratch.Head()
	secondHead := fixture.scratch.CommitFile("", "second", "test.txt", "other content")
	workflow := fixture.newWorkflow(testInstance, overwrite, destination)

	require.NoError(testInstance, workflow.Run(context.Background(), fixture.workdir, firstHead))
	lastRevision, found, readError := destination.LastRevision()
	require.NoError(testInstance, readError)
	require.True(testInstance, found)
	require.Equal(testInstance, firstHead, lastRevision)

	require.NoError(testInstance, workflow.Run(context.Background(), fixture.workdir, ""))
	lastRevision, _, readError = destination.LastRevision()
	require.NoError(testInstance, readError)
	require.Equal(testInstance, secondHead, lastRevision)

	contents, contentsError := os.ReadFile(filepath.Join(folderPath, "moved", "test.txt"))
	require.NoError(testInstance, contentsError)
	require.Equal(testInstance, "other content", string(contents))
}

func TestWorkflowRunPropagatesErrors(testInstance *testing.T) {
	passThru, passThruError := authoring.PassThru(testDefaultAuthorConstant)
	require.NoError(testInstance, passThruError)
	destinationFailure := errors.New("destination unavailable")

	testCases := []struct {
		name            string
		sourceReference string
		workdir         func(*workflowFixture) string
		destinationErr  error
		assertError     func(*testing.T, error)
	}{
		{
			name:            "unknown_reference",
			sourceReference: "unknown",
			workdir:         func(fixture *workflowFixture) string { return fixture.workdir },
			assertError: func(testInstance *testing.T, runError error) {
				require.True(testInstance, failures.IsRepositoryError(runError))
				require.Contains(testInstance, runError.Error(), "Cannot find reference 'unknown'")
			},
		},
		{
			name:    "missing_workdir",
			workdir: func(*workflowFixture) string { return "" },
			assertError: func(testInstance *testing.T, runError error) {
				require.True(testInstance, failures.IsValidationError(runError))
			},
		},
		{
			name:           "destination_failure",
			workdir:        func(fixture *workflowFixture) string { return fixture.workdir },
			destinationErr: destinationFailure,
			assertError: func(testInstance *testing.T, runError error) {
				require.ErrorIs(testInstance, runError, destinationFailure)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newWorkflowFixture(testInstance)
			workflow := fixture.newWorkflow(testInstance, passThru, &recordingDestination{err: testCase.destinationErr})
			runError := workflow.Run(context.Background(), testCase.workdir(fixture), testCase.sourceReference)
			require.Error(testInstance, runError)
			testCase.assertError(testInstance, runError)
		})
	}
}

func TestNewWorkflowValidation(testInstance *testing.T) {
	fixture := newWorkflowFixture(testInstance)
	passThru, passThruError := authoring.PassThru(testDefaultAuthorConstant)
	require.NoError(testInstance, passThruError)
	destination := &recordingDestination{}

	testCases := []struct {
		name          string
		configuration migration.WorkflowConfiguration
		expectedError error
		expectedText  string
	}{
		{
			name:          "missing_name",
			configuration: migration.WorkflowConfiguration{Origin: fixture.origin, Authoring: passThru, Pipeline: fixture.pipeline, Destination: destination},
			expectedText:  "workflow requires a non-empty 'name' field",
		},
		{
			name:          "missing_authoring",
			configuration: migration.WorkflowConfiguration{Name: "w", Origin: fixture.origin, Pipeline: fixture.pipeline, Destination: destination},
			expectedText:  "workflow requires a non-empty 'authoring' field",
		},
		{
			name:          "missing_origin",
			configuration: migration.WorkflowConfiguration{Name: "w", Authoring: passThru, Pipeline: fixture.pipeline, Destination: destination},
			expectedError: migration.ErrOriginNotConfigured,
		},
		{
			name:          "missing_pipeline",
			configuration: migration.WorkflowConfiguration{Name: "w", Origin: fixture.origin, Authoring: passThru, Destination: destination},
			expectedError: migration.ErrPipelineNotConfigured,
		},
		{
			name:          "missing_destination",
			configuration: migration.WorkflowConfiguration{Name: "w", Origin: fixture.origin, Authoring: passThru, Pipeline: fixture.pipeline},
			expectedError: migration.ErrDestinationNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, workflowError := migration.NewWorkflow(testCase.configuration, migration.WorkflowDependencies{})
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, workflowError, testCase.expectedError)
				return
			}
			require.EqualError(testInstance, workflowError, testCase.expectedText)
			require.True(testInstance, failures.IsValidationError(workflowError))
		})
	}
}
