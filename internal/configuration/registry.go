package configuration

import (
	"sort"
	"strings"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/migration"
	"github.com/temirov/gitmigrate/internal/origin"
	"github.com/temirov/gitmigrate/internal/transform"
)

const (
	// FunctionFieldName names the factory invoked by a call.
	FunctionFieldName = "function"
	// ArgumentsFieldName holds the keyword arguments of a call.
	ArgumentsFieldName = "with"

	unknownFunctionTemplateConstant     = "unknown function '%s'"
	missingFunctionMessageConstant      = "configuration call is missing the '" + FunctionFieldName + "' field"
	unexpectedFieldTemplateConstant     = "unexpected field '%s' in configuration call to %s"
	missingArgumentTemplateConstant     = "missing mandatory argument '%s' in call to %s"
	unexpectedArgumentTemplateConstant  = "unexpected keyword argument '%s' in call to %s"
	wrongKindTemplateConstant           = "expected type %s for '%s' in call to %s but got type %s instead"
	wrongElementKindTemplateConstant    = "expected type %s for '%s' element %d but got type %s instead"
	duplicateFactoryTemplateConstant    = "function '%s' is already registered"
	argumentsNotMappingTemplateConstant = "arguments of %s must be a mapping but got type %s instead"
	nilKindNameConstant                 = "nil"
	listKindNameConstant                = "list"
	mappingKindNameConstant             = "dict"
	migrationKindNameConstant           = "migration"
)

// ParameterKind is the type a parameter accepts.
type ParameterKind string

// Supported parameter kinds.
const (
	ParameterKindString             ParameterKind = ParameterKind("string")
	ParameterKindBool               ParameterKind = ParameterKind("bool")
	ParameterKindStringList         ParameterKind = ParameterKind("string_list")
	ParameterKindAuthor             ParameterKind = ParameterKind("author")
	ParameterKindAuthoring          ParameterKind = ParameterKind("authoring")
	ParameterKindOrigin             ParameterKind = ParameterKind("origin")
	ParameterKindTransformation     ParameterKind = ParameterKind("transformation")
	ParameterKindTransformationList ParameterKind = ParameterKind("transformation_list")
	ParameterKindDestination        ParameterKind = ParameterKind("destination")
)

// Parameter declares one keyword argument of a factory.
type Parameter struct {
	Name     string
	Kind     ParameterKind
	Required bool
	Default  any
}

// BuildFunction turns validated arguments into a configuration object.
type BuildFunction func(arguments Arguments) (any, error)

// Factory is a named constructor with a declared parameter schema.
type Factory struct {
	Name       string
	Parameters []Parameter
	Build      BuildFunction
}

// Registry resolves calls to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in factories wired to the dependencies.
func NewRegistry(dependencies Dependencies) (*Registry, error) {
	registry := &Registry{factories: map[string]Factory{}}
	for _, factory := range builtinFactories(dependencies.withDefaults()) {
		if registerError := registry.Register(factory); registerError != nil {
			return nil, registerError
		}
	}
	return registry, nil
}

// Register adds a factory. Names must be unique.
func (registry *Registry) Register(factory Factory) error {
	if _, exists := registry.factories[factory.Name]; exists {
		return failures.NewValidationError(duplicateFactoryTemplateConstant, factory.Name)
	}
	registry.factories[factory.Name] = factory
	return nil
}

// FunctionNames lists the registered factories in lexical order.
func (registry *Registry) FunctionNames() []string {
	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the call described by a {function, with} mapping.
func (registry *Registry) Evaluate(call map[string]any) (any, error) {
	functionValue, hasFunction := call[FunctionFieldName]
	functionName, isString := functionValue.(string)
	if !hasFunction || !isString || len(strings.TrimSpace(functionName)) == 0 {
		return nil, failures.NewValidationError(missingFunctionMessageConstant)
	}
	factory, known := registry.factories[functionName]
	if !known {
		return nil, failures.NewValidationError(unknownFunctionTemplateConstant, functionName)
	}
	for fieldName := range call {
		if fieldName != FunctionFieldName && fieldName != ArgumentsFieldName {
			return nil, failures.NewValidationError(unexpectedFieldTemplateConstant, fieldName, functionName)
		}
	}

	rawArguments := map[string]any{}
	if argumentsValue, hasArguments := call[ArgumentsFieldName]; hasArguments && argumentsValue != nil {
		argumentsMapping, isMapping := argumentsValue.(map[string]any)
		if !isMapping {
			return nil, failures.NewValidationError(argumentsNotMappingTemplateConstant, functionName, kindName(argumentsValue))
		}
		rawArguments = argumentsMapping
	}

	arguments, argumentsError := registry.bindArguments(factory, rawArguments)
	if argumentsError != nil {
		return nil, argumentsError
	}
	return factory.Build(arguments)
}

func (registry *Registry) bindArguments(factory Factory, rawArguments map[string]any) (Arguments, error) {
	declared := map[string]Parameter{}
	for _, parameter := range factory.Parameters {
		declared[parameter.Name] = parameter
	}
	argumentNames := make([]string, 0, len(rawArguments))
	for argumentName := range rawArguments {
		argumentNames = append(argumentNames, argumentName)
	}
	sort.Strings(argumentNames)
	for _, argumentName := range argumentNames {
		if _, exists := declared[argumentName]; !exists {
			return Arguments{}, failures.NewValidationError(unexpectedArgumentTemplateConstant, argumentName, factory.Name)
		}
	}

	values := map[string]any{}
	for _, parameter := range factory.Parameters {
		rawValue, present := rawArguments[parameter.Name]
		if !present || rawValue == nil {
			if parameter.Required {
				return Arguments{}, failures.NewValidationError(missingArgumentTemplateConstant, parameter.Name, factory.Name)
			}
			values[parameter.Name] = parameter.Default
			continue
		}
		evaluatedValue, evaluationError := registry.evaluateValue(rawValue)
		if evaluationError != nil {
			return Arguments{}, evaluationError
		}
		convertedValue, conversionError := convertArgument(factory.Name, parameter, evaluatedValue)
		if conversionError != nil {
			return Arguments{}, conversionError
		}
		values[parameter.Name] = convertedValue
	}
	return Arguments{functionName: factory.Name, values: values}, nil
}

// evaluateValue replaces nested calls with their results.
func (registry *Registry) evaluateValue(rawValue any) (any, error) {
	switch typedValue := rawValue.(type) {
	case map[string]any:
		if _, isCall := typedValue[FunctionFieldName]; isCall {
			return registry.Evaluate(typedValue)
		}
		return typedValue, nil
	case []any:
		evaluatedValues := make([]any, 0, len(typedValue))
		for _, element := range typedValue {
			evaluatedElement, elementError := registry.evaluateValue(element)
			if elementError != nil {
				return nil, elementError
			}
			evaluatedValues = append(evaluatedValues, evaluatedElement)
		}
		return evaluatedValues, nil
	default:
		return rawValue, nil
	}
}

func convertArgument(functionName string, parameter Parameter, value any) (any, error) {
	wrongKind := func() error {
		return failures.NewValidationError(wrongKindTemplateConstant, parameter.Kind, parameter.Name, functionName, kindName(value))
	}
	switch parameter.Kind {
	case ParameterKindString:
		if _, isString := value.(string); !isString {
			return nil, wrongKind()
		}
		return value, nil
	case ParameterKindBool:
		if _, isBool := value.(bool); !isBool {
			return nil, wrongKind()
		}
		return value, nil
	case ParameterKindStringList:
		listValue, isList := value.([]any)
		if !isList {
			return nil, wrongKind()
		}
		for elementIndex, element := range listValue {
			if _, isString := element.(string); !isString {
				return nil, failures.NewValidationError(wrongElementKindTemplateConstant, ParameterKindString, parameter.Name, elementIndex, kindName(element))
			}
		}
		return value, nil
	case ParameterKindAuthor:
		switch typedValue := value.(type) {
		case authoring.Author:
			return typedValue, nil
		case string:
			return authoring.ParseAuthor(typedValue)
		default:
			return nil, wrongKind()
		}
	case ParameterKindAuthoring:
		if _, isAuthoring := value.(authoring.Authoring); !isAuthoring {
			return nil, wrongKind()
		}
		return value, nil
	case ParameterKindOrigin:
		if _, isOrigin := value.(*origin.GitOrigin); !isOrigin {
			return nil, wrongKind()
		}
		return value, nil
	case ParameterKindTransformation:
		if _, isTransformation := value.(transform.Transformation); !isTransformation {
			return nil, wrongKind()
		}
		return value, nil
	case ParameterKindTransformationList:
		listValue, isList := value.([]any)
		if !isList {
			return nil, wrongKind()
		}
		for elementIndex, element := range listValue {
			if _, isTransformation := element.(transform.Transformation); !isTransformation {
				return nil, failures.NewValidationError(wrongElementKindTemplateConstant, ParameterKindTransformation, parameter.Name, elementIndex, kindName(element))
			}
		}
		return listValue, nil
	case ParameterKindDestination:
		if _, isDestination := value.(migration.Destination); !isDestination {
			return nil, wrongKind()
		}
		return value, nil
	default:
		return value, nil
	}
}

// kindName names the configuration type of a value for error messages.
func kindName(value any) string {
	switch value.(type) {
	case nil:
		return nilKindNameConstant
	case []any:
		return listKindNameConstant
	case map[string]any:
		return mappingKindNameConstant
	case authoring.Author:
		return string(ParameterKindAuthor)
	case authoring.Authoring:
		return string(ParameterKindAuthoring)
	case *origin.GitOrigin:
		return string(ParameterKindOrigin)
	case migration.Destination:
		return string(ParameterKindDestination)
	case migration.Migration:
		return migrationKindNameConstant
	default:
		return transform.KindName(value)
	}
}
