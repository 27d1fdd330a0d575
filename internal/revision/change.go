package revision

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
)

const (
	messageLineSeparatorConstant          = "\n"
	carriageReturnConstant                = "\r"
	duplicateLabelWarningTemplateConstant = "Possible duplicate label '%s' happening multiple times in commit. Keeping only the last value: '%s'\n  Discarded value: '%s'"
	labelNameGroupConstant                = "name"
	labelValueGroupConstant               = "value"
)

var labelPattern = regexp.MustCompile(`^(?P<name>[\w-]+) *[:=] ?(?P<value>.*)$`)

// VisitResult tells a history walk whether to keep going.
type VisitResult int

// Supported visit results.
const (
	VisitResultContinue VisitResult = iota
	VisitResultTerminate
)

// ChangeVisitor receives changes during a history walk.
type ChangeVisitor func(change Change) VisitResult

// Change is a single origin revision with its metadata.
type Change struct {
	Reference Reference
	Author    authoring.Author
	Message   string
	DateTime  time.Time
	Labels    map[string]string
}

// NewChange builds a Change and extracts labels from the message body.
// Repeated labels keep the last value and report the discarded one to the console.
func NewChange(reference Reference, author authoring.Author, message string, dateTime time.Time, messageConsole console.Console) Change {
	return Change{
		Reference: reference,
		Author:    author,
		Message:   message,
		DateTime:  dateTime,
		Labels:    ParseLabels(message, messageConsole),
	}
}

// FirstLineMessage returns the subject line of the message.
func (change Change) FirstLineMessage() string {
	firstLine, _, _ := strings.Cut(change.Message, messageLineSeparatorConstant)
	return strings.TrimSpace(firstLine)
}

// ParseLabels extracts "key: value" and "key=value" lines below the subject line.
func ParseLabels(message string, messageConsole console.Console) map[string]string {
	labels := map[string]string{}
	messageLines := strings.Split(message, messageLineSeparatorConstant)
	if len(messageLines) < 2 {
		return labels
	}

	nameIndex := labelPattern.SubexpIndex(labelNameGroupConstant)
	valueIndex := labelPattern.SubexpIndex(labelValueGroupConstant)
	for _, messageLine := range messageLines[1:] {
		matches := labelPattern.FindStringSubmatch(strings.TrimRight(messageLine, carriageReturnConstant))
		if matches == nil {
			continue
		}
		labelName := matches[nameIndex]
		labelValue := strings.TrimSpace(matches[valueIndex])
		if previousValue, exists := labels[labelName]; exists && messageConsole != nil {
			messageConsole.Warn(fmt.Sprintf(duplicateLabelWarningTemplateConstant, labelName, labelValue, previousValue))
		}
		labels[labelName] = labelValue
	}
	return labels
}
