package utils_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/utils"
)

const (
	testLogMessageConstant        = "migration finished"
	testLogMigrationFieldConstant = "migration"
	testLogMigrationNameConstant  = "export"
	testInvalidLogLevelConstant   = "verbose"
	testInvalidLogFormatConstant  = "xml"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectError        bool
		expectJSON         bool
		expectSuppressed   bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured, expectJSON: true},
		{name: "info_structured", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatStructured, expectJSON: true},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "mixed_case_warn_console", requestedLogLevel: utils.LogLevel(" WARN "), requestedLogFormat: utils.LogFormat("Console"), expectSuppressed: true},
		{name: "error_structured", requestedLogLevel: utils.LogLevelError, requestedLogFormat: utils.LogFormatStructured, expectSuppressed: true},
		{name: "unsupported_level", requestedLogLevel: utils.LogLevel(testInvalidLogLevelConstant), requestedLogFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithWriter(&output)

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Info(testLogMessageConstant, zap.String(testLogMigrationFieldConstant, testLogMigrationNameConstant))
			require.NoError(testInstance, logger.Sync())

			trimmedOutput := bytes.TrimSpace(output.Bytes())
			if testCase.expectSuppressed {
				require.Empty(testInstance, trimmedOutput)
				return
			}
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Contains(testInstance, string(trimmedOutput), testLogMigrationNameConstant)
			require.Equal(testInstance, testCase.expectJSON, json.Valid(trimmedOutput))

			if testCase.expectJSON {
				var entry map[string]any
				require.NoError(testInstance, json.Unmarshal(trimmedOutput, &entry))
				require.Equal(testInstance, testLogMigrationNameConstant, entry[testLogMigrationFieldConstant])
			}
		})
	}
}
