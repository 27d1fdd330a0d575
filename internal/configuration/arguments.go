package configuration

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/migration"
	"github.com/temirov/gitmigrate/internal/origin"
	"github.com/temirov/gitmigrate/internal/transform"
)

const (
	mapstructureTagNameConstant   = "mapstructure"
	decodeFailureTemplateConstant = "invalid arguments in call to %s: %v"
)

// Arguments are the validated keyword arguments of a call. Absent optional
// parameters hold their declared default.
type Arguments struct {
	functionName string
	values       map[string]any
}

// FunctionName returns the factory being called.
func (arguments Arguments) FunctionName() string {
	return arguments.functionName
}

// Decode copies the scalar arguments into a struct tagged with mapstructure names.
func (arguments Arguments) Decode(target any) error {
	scalarValues := map[string]any{}
	for argumentName, argumentValue := range arguments.values {
		if isScalarArgument(argumentValue) {
			scalarValues[argumentName] = argumentValue
		}
	}
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: mapstructureTagNameConstant,
	})
	if decoderError != nil {
		return decoderError
	}
	if decodeError := decoder.Decode(scalarValues); decodeError != nil {
		return failures.NewValidationError(decodeFailureTemplateConstant, arguments.functionName, decodeError)
	}
	return nil
}

// Value returns the raw argument.
func (arguments Arguments) Value(name string) any {
	return arguments.values[name]
}

// Author returns an author argument.
func (arguments Arguments) Author(name string) authoring.Author {
	author, _ := arguments.values[name].(authoring.Author)
	return author
}

// Authoring returns an authoring argument.
func (arguments Arguments) Authoring(name string) authoring.Authoring {
	authoringPolicy, _ := arguments.values[name].(authoring.Authoring)
	return authoringPolicy
}

// Origin returns an origin argument.
func (arguments Arguments) Origin(name string) *origin.GitOrigin {
	gitOrigin, _ := arguments.values[name].(*origin.GitOrigin)
	return gitOrigin
}

// Destination returns a destination argument.
func (arguments Arguments) Destination(name string) migration.Destination {
	destination, _ := arguments.values[name].(migration.Destination)
	return destination
}

// Transformations returns a transformation list argument, or nil when it was not given.
func (arguments Arguments) Transformations(name string) []transform.Transformation {
	listValue, isList := arguments.values[name].([]any)
	if !isList {
		return nil
	}
	transformations := make([]transform.Transformation, 0, len(listValue))
	for _, element := range listValue {
		if transformation, isTransformation := element.(transform.Transformation); isTransformation {
			transformations = append(transformations, transformation)
		}
	}
	return transformations
}

func isScalarArgument(value any) bool {
	switch typedValue := value.(type) {
	case string, bool, int, int64, float64:
		return true
	case []any:
		for _, element := range typedValue {
			if _, isString := element.(string); !isString {
				return false
			}
		}
		return true
	default:
		return false
	}
}
