package mirror_test

import (
	"context"
	"path/filepath"
	"testing"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/gitrepo/gitrepotest"
	"github.com/temirov/gitmigrate/internal/mirror"
)

type mirrorFixture struct {
	environment map[string]string
	origin      *gitrepotest.ScratchRepository
	destination string
	cache       *gitrepo.RepositoryCache
	workdir     string
}

func newMirrorFixture(testInstance *testing.T) *mirrorFixture {
	testInstance.Helper()
	environment := gitrepotest.HermeticEnvironment(testInstance)
	originRepository := gitrepotest.NewScratchRepository(testInstance, environment)
	originRepository.CommitFile("", "first file", "test.txt", "some content")
	originRepository.Git("branch", "other")

	cache, cacheError := gitrepo.NewRepositoryCache(filepath.Join(testInstance.TempDir(), "repos"), gitrepotest.NewExecutor(testInstance), environment, zaptest.NewLogger(testInstance))
	require.NoError(testInstance, cacheError)

	return &mirrorFixture{
		environment: environment,
		origin:      originRepository,
		destination: gitrepotest.NewBareRepository(testInstance, environment),
		cache:       cache,
		workdir:     testInstance.TempDir(),
	}
}

func (fixture *mirrorFixture) newMirror(testInstance *testing.T, name string, destination string, refSpecs []string, prune bool, forcePush bool) *mirror.Mirror {
	testInstance.Helper()
	configuration, configurationError := mirror.NewConfiguration(name, fixture.origin.URL(), "file://"+destination, refSpecs, prune, forcePush)
	require.NoError(testInstance, configurationError)
	mirrorInstance, mirrorError := mirror.NewMirror(configuration, mirror.Dependencies{
		RepositoryCache: fixture.cache,
		Console:         console.NewRecordingConsole(),
		Logger:          zaptest.NewLogger(testInstance),
	})
	require.NoError(testInstance, mirrorError)
	return mirrorInstance
}

func (fixture *mirrorFixture) destinationReferences(testInstance *testing.T, destination string) string {
	testInstance.Helper()
	return gitrepotest.ShowReferences(testInstance, fixture.environment, destination)
}

func (fixture *mirrorFixture) originReferences(testInstance *testing.T) string {
	testInstance.Helper()
	return fixture.origin.Git("show-ref")
}

func TestMirrorDefaultRefSpecs(testInstance *testing.T) {
	fixture := newMirrorFixture(testInstance)
	mirrorInstance := fixture.newMirror(testInstance, "default", fixture.destination, nil, false, false)

	require.NoError(testInstance, mirrorInstance.Run(context.Background(), fixture.workdir, ""))
	require.Equal(testInstance, fixture.originReferences(testInstance), fixture.destinationReferences(testInstance, fixture.destination))
	require.Equal(testInstance, mirror.StateDone, mirrorInstance.State())
}

func TestMirrorDeletedOriginBranchIsNotResurrected(testInstance *testing.T) {
	fixture := newMirrorFixture(testInstance)
	firstDestination := gitrepotest.NewBareRepository(testInstance, fixture.environment)

	require.NoError(testInstance, fixture.newMirror(testInstance, "one", firstDestination, nil, false, false).Run(context.Background(), fixture.workdir, ""))
	fixture.origin.Git("branch", "-D", "other")
	require.NoError(testInstance, fixture.newMirror(testInstance, "two", fixture.destination, nil, false, false).Run(context.Background(), fixture.workdir, ""))

	require.NotContains(testInstance, fixture.destinationReferences(testInstance, fixture.destination), " refs/heads/other")
	require.Contains(testInstance, fixture.destinationReferences(testInstance, firstDestination), " refs/heads/other")
}

func TestMirrorPruneBehaviour(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prune         bool
		expectOther   bool
		expectedState mirror.State
	}{
		{name: "no_prune", prune: false, expectOther: true, expectedState: mirror.StateDone},
		{name: "prune", prune: true, expectOther: false, expectedState: mirror.StatePruned},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newMirrorFixture(testInstance)
			otherHash := fixture.origin.Git("show-ref", "-s", "refs/heads/other")
			mirrorInstance := fixture.newMirror(testInstance, "default", fixture.destination, nil, testCase.prune, false)

			require.NoError(testInstance, mirrorInstance.Run(context.Background(), fixture.workdir, ""))
			fixture.origin.Git("branch", "-D", "other")
			require.NoError(testInstance, mirrorInstance.Run(context.Background(), fixture.workdir, ""))

			destinationReferences := fixture.destinationReferences(testInstance, fixture.destination)
			if testCase.expectOther {
				require.Contains(testInstance, destinationReferences, otherHash+" refs/heads/other")
			} else {
				require.NotContains(testInstance, destinationReferences, " refs/heads/other")
				require.Contains(testInstance, destinationReferences, " refs/heads/master")
			}
			require.Equal(testInstance, testCase.expectedState, mirrorInstance.State())
		})
	}
}

func TestMirrorCustomRefSpec(testInstance *testing.T) {
	fixture := newMirrorFixture(testInstance)
	mirrorInstance := fixture.newMirror(testInstance, "default", fixture.destination, []string{"refs/heads/master:refs/heads/origin_master"}, false, false)

	require.NoError(testInstance, mirrorInstance.Run(context.Background(), fixture.workdir, ""))

	masterHash := fixture.origin.Git("show-ref", "-s", "refs/heads/master")
	destinationReferences := fixture.destinationReferences(testInstance, fixture.destination)
	require.Contains(testInstance, destinationReferences, masterHash+" refs/heads/origin_master")
	require.NotRegexp(testInstance, `(?m) refs/heads/master$`, destinationReferences)
	require.NotContains(testInstance, destinationReferences, " refs/heads/other")
}

func TestMirrorConflict(testInstance *testing.T) {
	testCases := []struct {
		name          string
		forcePush     bool
		expectError   bool
		expectedState mirror.State
	}{
		{name: "rejected_without_force", forcePush: false, expectError: true, expectedState: mirror.StateFailed},
		{name: "forced", forcePush: true, expectError: false, expectedState: mirror.StateDone},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newMirrorFixture(testInstance)
			unrelated := gitrepotest.NewScratchRepository(testInstance, fixture.environment)
			unrelated.CommitFile("", "another file", "test2.txt", "some content")
			unrelated.Git("branch", "other")
			unrelated.Git("push", "--quiet", "file://"+fixture.destination, "+refs/*:refs/*")

			mirrorInstance := fixture.newMirror(testInstance, "default", fixture.destination, nil, false, testCase.forcePush)
			runError := mirrorInstance.Run(context.Background(), fixture.workdir, "")
			require.Equal(testInstance, testCase.expectedState, mirrorInstance.State())
			if testCase.expectError {
				require.Error(testInstance, runError)
				require.Contains(testInstance, runError.Error(), "[rejected]")
				require.True(testInstance, failures.IsRepositoryError(runError))
				return
			}
			require.NoError(testInstance, runError)
			require.Equal(testInstance, fixture.originReferences(testInstance), fixture.destinationReferences(testInstance, fixture.destination))
		})
	}
}

func TestNewConfigurationValidation(testInstance *testing.T) {
	testCases := []struct {
		name            string
		mirrorName      string
		originURL       string
		destinationURL  string
		refSpecs        []string
		expectedMessage string
	}{
		{name: "missing_name", originURL: "file:///a", destinationURL: "file:///b", expectedMessage: "git.mirror requires a non-empty 'name' field"},
		{name: "missing_origin", mirrorName: "m", destinationURL: "file:///b", expectedMessage: "git.mirror requires a non-empty 'origin' field"},
		{name: "missing_destination", mirrorName: "m", originURL: "file:///a", expectedMessage: "git.mirror requires a non-empty 'destination' field"},
		{name: "bad_refspec", mirrorName: "m", originURL: "file:///a", destinationURL: "file:///b", refSpecs: []string{"refs/heads/*:refs/heads/x"}, expectedMessage: "Invalid refspec 'refs/heads/*:refs/heads/x': " + gitconfig.ErrRefSpecMalformedWildcard.Error()},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, configurationError := mirror.NewConfiguration(testCase.mirrorName, testCase.originURL, testCase.destinationURL, testCase.refSpecs, false, false)
			require.EqualError(testInstance, configurationError, testCase.expectedMessage)
			require.True(testInstance, failures.IsValidationError(configurationError))
		})
	}

	configuration, configurationError := mirror.NewConfiguration("m", "file:///a", "file:///b", nil, false, false)
	require.NoError(testInstance, configurationError)
	require.Equal(testInstance, []gitrepo.RefSpec{gitrepo.DefaultRefSpec()}, configuration.RefSpecs())
	require.False(testInstance, configuration.Prune())
}
