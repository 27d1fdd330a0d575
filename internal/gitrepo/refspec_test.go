package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/gitrepo"
)

func TestParseRefSpec(testInstance *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedRefSpec gitrepo.RefSpec
		expectError     bool
	}{
		{
			name:            "default",
			input:           "+refs/heads/*:refs/heads/*",
			expectedRefSpec: gitrepo.RefSpec{Source: "refs/heads/*", Destination: "refs/heads/*", Force: true},
		},
		{
			name:            "rename",
			input:           "refs/heads/master:refs/heads/origin_master",
			expectedRefSpec: gitrepo.RefSpec{Source: "refs/heads/master", Destination: "refs/heads/origin_master"},
		},
		{
			name:            "source_only",
			input:           "refs/tags/*",
			expectedRefSpec: gitrepo.RefSpec{Source: "refs/tags/*", Destination: "refs/tags/*"},
		},
		{name: "empty", input: "", expectError: true},
		{name: "force_only", input: "+", expectError: true},
		{name: "empty_destination", input: "refs/heads/master:", expectError: true},
		{name: "wildcard_one_side", input: "refs/heads/*:refs/heads/master", expectError: true},
		{name: "double_wildcard", input: "refs/*/*:refs/*/*", expectError: true},
		{name: "delete_only", input: ":refs/heads/master", expectError: true},
		{name: "two_separators", input: "refs/heads/a:refs/heads/b:refs/heads/c", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			refSpec, parseError := gitrepo.ParseRefSpec(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.True(testInstance, failures.IsValidationError(parseError))
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRefSpec, refSpec)
		})
	}
}

func TestRefSpecMapping(testInstance *testing.T) {
	refSpec, parseError := gitrepo.ParseRefSpec("refs/heads/*:refs/heads/mirror/*")
	require.NoError(testInstance, parseError)

	converted, matched := refSpec.ConvertSource("refs/heads/feature/x")
	require.True(testInstance, matched)
	require.Equal(testInstance, "refs/heads/mirror/feature/x", converted)

	_, matched = refSpec.ConvertSource("refs/tags/v1")
	require.False(testInstance, matched)

	require.True(testInstance, refSpec.MatchesDestination("refs/heads/mirror/master"))
	require.True(testInstance, refSpec.MatchesSource("refs/heads/master"))
	require.Equal(testInstance, "+refs/heads/*:refs/heads/*", refSpec.SourceToSource().WithForce(true).String())
	require.Equal(testInstance, "refs/heads/*:refs/heads/mirror/*", refSpec.String())
}

func TestRefSpecExactMapping(testInstance *testing.T) {
	refSpec, parseError := gitrepo.ParseRefSpec("+refs/heads/master:refs/heads/origin_master")
	require.NoError(testInstance, parseError)

	converted, matched := refSpec.ConvertSource("refs/heads/master")
	require.True(testInstance, matched)
	require.Equal(testInstance, "refs/heads/origin_master", converted)

	_, matched = refSpec.ConvertSource("refs/heads/master2")
	require.False(testInstance, matched)
	require.True(testInstance, refSpec.MatchesDestination("refs/heads/origin_master"))
	require.False(testInstance, refSpec.MatchesDestination("refs/heads/master"))
	require.Equal(testInstance, "+refs/heads/master:refs/heads/origin_master", refSpec.String())
}

func TestParseRefSpecsDefaults(testInstance *testing.T) {
	refSpecs, parseError := gitrepo.ParseRefSpecs(nil)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []gitrepo.RefSpec{gitrepo.DefaultRefSpec()}, refSpecs)
	require.Equal(testInstance, "+refs/heads/*:refs/heads/*", refSpecs[0].String())
}
