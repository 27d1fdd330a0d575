// Package console carries user-visible migration messages: progress lines,
// informational notes and non-fatal warnings.
package console

import (
	"sync"

	"go.uber.org/zap"
)

const (
	logFieldMessageTypeConstant = "message_type"
)

// MessageType classifies a user-visible message.
type MessageType string

// Supported message types.
const (
	MessageTypeProgress MessageType = MessageType("progress")
	MessageTypeInfo     MessageType = MessageType("info")
	MessageTypeWarning  MessageType = MessageType("warning")
	MessageTypeError    MessageType = MessageType("error")
)

// Console receives user-visible messages.
type Console interface {
	Progress(message string)
	Info(message string)
	Warn(message string)
	Error(message string)
}

// LoggerConsole renders console messages through zap.
type LoggerConsole struct {
	logger *zap.Logger
}

// NewLoggerConsole wraps the logger; a nil logger discards messages.
func NewLoggerConsole(logger *zap.Logger) *LoggerConsole {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerConsole{logger: logger}
}

// Progress logs a progress message at info level.
func (loggerConsole *LoggerConsole) Progress(message string) {
	loggerConsole.logger.Info(message, zap.String(logFieldMessageTypeConstant, string(MessageTypeProgress)))
}

// Info logs an informational message.
func (loggerConsole *LoggerConsole) Info(message string) {
	loggerConsole.logger.Info(message, zap.String(logFieldMessageTypeConstant, string(MessageTypeInfo)))
}

// Warn logs a warning.
func (loggerConsole *LoggerConsole) Warn(message string) {
	loggerConsole.logger.Warn(message, zap.String(logFieldMessageTypeConstant, string(MessageTypeWarning)))
}

// Error logs an error message.
func (loggerConsole *LoggerConsole) Error(message string) {
	loggerConsole.logger.Error(message, zap.String(logFieldMessageTypeConstant, string(MessageTypeError)))
}

// Message is a single recorded console message.
type Message struct {
	Type MessageType
	Text string
}

// RecordingConsole keeps every message in memory.
type RecordingConsole struct {
	mutex    sync.Mutex
	messages []Message
}

// NewRecordingConsole constructs an empty RecordingConsole.
func NewRecordingConsole() *RecordingConsole {
	return &RecordingConsole{}
}

// Progress records a progress message.
func (recordingConsole *RecordingConsole) Progress(message string) {
	recordingConsole.record(MessageTypeProgress, message)
}

// Info records an informational message.
func (recordingConsole *RecordingConsole) Info(message string) {
	recordingConsole.record(MessageTypeInfo, message)
}

// Warn records a warning.
func (recordingConsole *RecordingConsole) Warn(message string) {
	recordingConsole.record(MessageTypeWarning, message)
}

// Error records an error message.
func (recordingConsole *RecordingConsole) Error(message string) {
	recordingConsole.record(MessageTypeError, message)
}

// Messages returns a copy of the recorded messages in emission order.
func (recordingConsole *RecordingConsole) Messages() []Message {
	recordingConsole.mutex.Lock()
	defer recordingConsole.mutex.Unlock()
	return append([]Message(nil), recordingConsole.messages...)
}

// MessagesOfType returns the texts of recorded messages with the given type.
func (recordingConsole *RecordingConsole) MessagesOfType(messageType MessageType) []string {
	var texts []string
	for _, message := range recordingConsole.Messages() {
		if message.Type == messageType {
			texts = append(texts, message.Text)
		}
	}
	return texts
}

func (recordingConsole *RecordingConsole) record(messageType MessageType, text string) {
	recordingConsole.mutex.Lock()
	defer recordingConsole.mutex.Unlock()
	recordingConsole.messages = append(recordingConsole.messages, Message{Type: messageType, Text: text})
}
