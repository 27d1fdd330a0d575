package transform

import (
	"context"
	"fmt"
	"reflect"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	// TransformationsArgumentName names the forward list.
	TransformationsArgumentName = "transformations"
	// ReversalArgumentName names the reversal list.
	ReversalArgumentName = "reversal"

	pipelineFunctionNameConstant     = "core.transform"
	missingArgumentTemplateConstant  = "missing mandatory argument '%s' in call to %s"
	wrongElementKindTemplateConstant = "expected type transformation for '%s' element %d but got type %s instead"
	progressTemplateConstant         = "[%d/%d] Transform %s"
	pipelineDescriptionConstant      = "Sequence"
	transformationKindNameConstant   = "transformation"
	nilKindNameConstant              = "nil"
)

// Pipeline is an ordered list of transformations with a declared reversal.
type Pipeline struct {
	forward  []Transformation
	reversal []Transformation
}

// NewPipeline validates that both lists are present and hold no nil steps.
func NewPipeline(forward []Transformation, reversal []Transformation) (*Pipeline, error) {
	if forward == nil {
		return nil, NewMissingArgumentError(TransformationsArgumentName, pipelineFunctionNameConstant)
	}
	if reversal == nil {
		return nil, NewMissingArgumentError(ReversalArgumentName, pipelineFunctionNameConstant)
	}
	if nilError := rejectNilSteps(TransformationsArgumentName, forward); nilError != nil {
		return nil, nilError
	}
	if nilError := rejectNilSteps(ReversalArgumentName, reversal); nilError != nil {
		return nil, nilError
	}
	return &Pipeline{
		forward:  append([]Transformation{}, forward...),
		reversal: append([]Transformation{}, reversal...),
	}, nil
}

// NewMissingArgumentError reports a mandatory list absent from a call to functionName.
func NewMissingArgumentError(argumentName string, functionName string) error {
	return failures.NewValidationError(missingArgumentTemplateConstant, argumentName, functionName)
}

// BuildPipeline checks that every element of both lists is a transformation.
// A nil list is a missing argument.
func BuildPipeline(forward []any, reversal []any) (*Pipeline, error) {
	if forward == nil {
		return nil, NewMissingArgumentError(TransformationsArgumentName, pipelineFunctionNameConstant)
	}
	if reversal == nil {
		return nil, NewMissingArgumentError(ReversalArgumentName, pipelineFunctionNameConstant)
	}
	forwardTransformations, forwardError := AsTransformations(TransformationsArgumentName, forward)
	if forwardError != nil {
		return nil, forwardError
	}
	reversalTransformations, reversalError := AsTransformations(ReversalArgumentName, reversal)
	if reversalError != nil {
		return nil, reversalError
	}
	return NewPipeline(forwardTransformations, reversalTransformations)
}

func rejectNilSteps(listName string, transformations []Transformation) error {
	for transformationIndex, transformation := range transformations {
		if isNilTransformation(transformation) {
			return failures.NewValidationError(wrongElementKindTemplateConstant, listName, transformationIndex, nilKindNameConstant)
		}
	}
	return nil
}

func isNilTransformation(transformation Transformation) bool {
	if transformation == nil {
		return true
	}
	reflected := reflect.ValueOf(transformation)
	return reflected.Kind() == reflect.Pointer && reflected.IsNil()
}

// AsTransformations converts a list of configuration values, naming the
// offending position and kind when an element is not a transformation.
func AsTransformations(listName string, values []any) ([]Transformation, error) {
	transformations := make([]Transformation, 0, len(values))
	for valueIndex, value := range values {
		transformation, isTransformation := value.(Transformation)
		if !isTransformation {
			return nil, failures.NewValidationError(wrongElementKindTemplateConstant, listName, valueIndex, KindName(value))
		}
		transformations = append(transformations, transformation)
	}
	return transformations, nil
}

// KindName names the kind of a configuration value for error messages.
func KindName(value any) string {
	if value == nil {
		return nilKindNameConstant
	}
	if _, isTransformation := value.(Transformation); isTransformation {
		return transformationKindNameConstant
	}
	return reflect.ValueOf(value).Kind().String()
}

// Transform applies the forward list in order, reporting progress before each
// step. The first failure stops the pipeline; earlier steps are not undone.
func (pipeline *Pipeline) Transform(executionContext context.Context, work Work) error {
	progressConsole := work.Console
	total := len(pipeline.forward)
	for transformationIndex, transformation := range pipeline.forward {
		if progressConsole != nil {
			progressConsole.Progress(fmt.Sprintf(progressTemplateConstant, transformationIndex+1, total, transformation.Describe()))
		}
		if transformError := transformation.Transform(executionContext, work); transformError != nil {
			return transformError
		}
	}
	return nil
}

// Reverse swaps the forward and reversal lists.
func (pipeline *Pipeline) Reverse() Transformation {
	return &Pipeline{forward: pipeline.reversal, reversal: pipeline.forward}
}

// Describe summarizes the pipeline.
func (pipeline *Pipeline) Describe() string {
	return pipelineDescriptionConstant
}

// Forward returns the forward list.
func (pipeline *Pipeline) Forward() []Transformation {
	return append([]Transformation{}, pipeline.forward...)
}

// Reversal returns the reversal list.
func (pipeline *Pipeline) Reversal() []Transformation {
	return append([]Transformation{}, pipeline.reversal...)
}

var _ Transformation = (*Pipeline)(nil)
