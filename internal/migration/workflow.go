package migration

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/origin"
	"github.com/temirov/gitmigrate/internal/transform"
)

const (
	checkoutDirectoryNameConstant     = "checkout"
	originMissingMessageConstant      = "workflow origin not configured"
	pipelineMissingMessageConstant    = "workflow transformation pipeline not configured"
	destinationMissingMessageConstant = "workflow destination not configured"
	missingNameMessageConstant        = "workflow requires a non-empty 'name' field"
	missingWorkdirMessageConstant     = "workflow requires a working directory"
	missingAuthoringMessageConstant   = "workflow requires a non-empty 'authoring' field"
	workflowCompletedMessageConstant  = "workflow migration completed"
	logFieldWorkflowConstant          = "workflow"
	logFieldReferenceConstant         = "reference"
	logFieldAuthorConstant            = "author"
	logFieldCheckoutConstant          = "checkout_directory"
)

var (
	// ErrOriginNotConfigured indicates the workflow was built without an origin.
	ErrOriginNotConfigured = errors.New(originMissingMessageConstant)
	// ErrPipelineNotConfigured indicates the workflow was built without transformations.
	ErrPipelineNotConfigured = errors.New(pipelineMissingMessageConstant)
	// ErrDestinationNotConfigured indicates the workflow was built without a destination.
	ErrDestinationNotConfigured = errors.New(destinationMissingMessageConstant)
)

// WorkflowConfiguration declares what a workflow reads, how it transforms it and where it writes.
type WorkflowConfiguration struct {
	Name        string
	Origin      *origin.GitOrigin
	PathFilter  origin.PathFilter
	Authoring   authoring.Authoring
	Pipeline    *transform.Pipeline
	Destination Destination
}

// WorkflowDependencies enumerates the collaborators of a workflow.
type WorkflowDependencies struct {
	Console console.Console
	Logger  *zap.Logger
}

// Workflow migrates a single origin revision through the pipeline into the destination.
type Workflow struct {
	configuration WorkflowConfiguration
	console       console.Console
	logger        *zap.Logger
}

// NewWorkflow validates the configuration.
func NewWorkflow(configuration WorkflowConfiguration, dependencies WorkflowDependencies) (*Workflow, error) {
	if len(strings.TrimSpace(configuration.Name)) == 0 {
		return nil, failures.NewValidationError(missingNameMessageConstant)
	}
	if len(configuration.Authoring.Mode()) == 0 {
		return nil, failures.NewValidationError(missingAuthoringMessageConstant)
	}
	if configuration.Origin == nil {
		return nil, ErrOriginNotConfigured
	}
	if configuration.Pipeline == nil {
		return nil, ErrPipelineNotConfigured
	}
	if configuration.Destination == nil {
		return nil, ErrDestinationNotConfigured
	}
	if len(configuration.PathFilter.Patterns()) == 0 {
		configuration.PathFilter = origin.AllFiles()
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workflowConsole := dependencies.Console
	if workflowConsole == nil {
		workflowConsole = console.NewLoggerConsole(logger)
	}

	return &Workflow{configuration: configuration, console: workflowConsole, logger: logger}, nil
}

// Name returns the configured name.
func (workflow *Workflow) Name() string {
	return workflow.configuration.Name
}

// Configuration returns the workflow configuration.
func (workflow *Workflow) Configuration() WorkflowConfiguration {
	return workflow.configuration
}

// Run checks out the source reference under workdir, transforms it and hands
// it to the destination with the author chosen by the authoring policy.
func (workflow *Workflow) Run(executionContext context.Context, workdir string, sourceReference string) error {
	if len(strings.TrimSpace(workdir)) == 0 {
		return failures.NewValidationError(missingWorkdirMessageConstant)
	}

	reference, resolveError := workflow.configuration.Origin.Resolve(executionContext, sourceReference)
	if resolveError != nil {
		return resolveError
	}

	reader := workflow.configuration.Origin.NewReader(workflow.configuration.PathFilter, workflow.configuration.Authoring)
	checkoutDirectory := filepath.Join(workdir, checkoutDirectoryNameConstant)
	if checkoutError := reader.Checkout(executionContext, reference, checkoutDirectory); checkoutError != nil {
		return checkoutError
	}

	change, changeError := reader.Change(executionContext, reference)
	if changeError != nil {
		return changeError
	}

	work := transform.Work{
		CheckoutDirectory: checkoutDirectory,
		Message:           change.Message,
		Console:           workflow.console,
	}
	if transformError := workflow.configuration.Pipeline.Transform(executionContext, work); transformError != nil {
		return transformError
	}

	change.Author = workflow.configuration.Authoring.ResolveAuthor(change.Author)
	if writeError := workflow.configuration.Destination.Write(executionContext, change, checkoutDirectory); writeError != nil {
		return writeError
	}

	workflow.logger.Info(
		workflowCompletedMessageConstant,
		zap.String(logFieldWorkflowConstant, workflow.configuration.Name),
		zap.String(logFieldReferenceConstant, reference.AsString()),
		zap.String(logFieldAuthorConstant, change.Author.String()),
		zap.String(logFieldCheckoutConstant, checkoutDirectory),
	)
	return nil
}
