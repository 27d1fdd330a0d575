// Package flags formats and validates enumerated command-line flag values.
package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix       = "<"
	choicePlaceholderSuffix       = ">"
	choiceSeparatorLiteral        = "|"
	choiceUsageEmptyTemplate      = "`%s`"
	choiceUsageFullTemplate       = "`%s` %s"
	choiceListSeparatorLiteral    = ", "
	unsupportedChoiceErrorMessage = "unsupported value '%s' for --%s; expected one of %s"
)

// UnsupportedChoiceError reports a flag value outside the accepted set.
type UnsupportedChoiceError struct {
	FlagName string
	Value    string
	Choices  []string
}

func (unsupportedChoiceError UnsupportedChoiceError) Error() string {
	return fmt.Sprintf(unsupportedChoiceErrorMessage, unsupportedChoiceError.Value, unsupportedChoiceError.FlagName, strings.Join(unsupportedChoiceError.Choices, choiceListSeparatorLiteral))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// NormalizeChoice returns the canonical spelling of value among choices.
// An empty value is accepted and returned unchanged so callers can fall back to configuration.
func NormalizeChoice(flagName string, value string, choices []string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return "", nil
	}
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), trimmedValue) {
			return strings.TrimSpace(choice), nil
		}
	}
	return "", UnsupportedChoiceError{FlagName: flagName, Value: value, Choices: choices}
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
