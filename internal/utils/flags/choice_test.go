package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testLogLevelFlagNameConstant = "log-level"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Log output format.",
			expectedOutput: "`<STRUCTURED|console>` Log output format.",
		},
		{
			name:           "default_second_choice",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Minimum log level.",
			expectedOutput: "`<debug|INFO|warn|error>` Minimum log level.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			expectedOutput: "`<structured|CONSOLE>`",
		},
		{
			name:           "duplicates_and_whitespace",
			defaultChoice:  "debug",
			choices:        []string{" debug ", "debug", " info "},
			description:    "Pick a level.",
			expectedOutput: "`<DEBUG|info>` Pick a level.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestNormalizeChoice(testInstance *testing.T) {
	choices := []string{"debug", "info", "warn", "error"}
	testCases := []struct {
		name          string
		value         string
		expectedValue string
		expectedError string
	}{
		{name: "empty", value: "", expectedValue: ""},
		{name: "exact", value: "warn", expectedValue: "warn"},
		{name: "case_insensitive", value: " DEBUG ", expectedValue: "debug"},
		{name: "unsupported", value: "verbose", expectedError: "unsupported value 'verbose' for --log-level; expected one of debug, info, warn, error"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			normalizedValue, normalizeError := NormalizeChoice(testLogLevelFlagNameConstant, testCase.value, choices)
			if len(testCase.expectedError) > 0 {
				require.EqualError(testInstance, normalizeError, testCase.expectedError)
				require.ErrorAs(testInstance, normalizeError, &UnsupportedChoiceError{})
				return
			}
			require.NoError(testInstance, normalizeError)
			require.Equal(testInstance, testCase.expectedValue, normalizedValue)
		})
	}
}
