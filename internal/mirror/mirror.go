package mirror

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/gitrepo"
)

const (
	cacheMissingMessageConstant           = "mirror repository cache not configured"
	mirrorStartTemplateConstant           = "Mirroring %s to %s"
	mirrorPrunedTemplateConstant          = "Pruned %d reference(s) from %s"
	ignoredSourceReferenceMessageConstant = "mirror ignores the source reference"
	logFieldMirrorNameConstant            = "mirror"
	logFieldStateConstant                 = "state"
	logFieldSourceReferenceConstant       = "source_reference"
	logFieldPrunedReferencesConstant      = "pruned_references"
	stateTransitionMessageConstant        = "mirror state changed"
)

// ErrRepositoryCacheNotConfigured indicates the mirror was created without a repository cache.
var ErrRepositoryCacheNotConfigured = errors.New(cacheMissingMessageConstant)

// State is the progress of a mirror run.
type State string

// Mirror run states. A run moves INIT -> FETCHED -> PUSHED -> PRUNED or DONE,
// and to FAILED from any state on error.
const (
	StateInit    State = State("INIT")
	StateFetched State = State("FETCHED")
	StatePushed  State = State("PUSHED")
	StatePruned  State = State("PRUNED")
	StateDone    State = State("DONE")
	StateFailed  State = State("FAILED")
)

// Dependencies enumerates collaborators of a mirror.
type Dependencies struct {
	RepositoryCache *gitrepo.RepositoryCache
	Console         console.Console
	Logger          *zap.Logger
}

// Mirror synchronizes references between two repositories.
type Mirror struct {
	configuration   Configuration
	repositoryCache *gitrepo.RepositoryCache
	console         console.Console
	logger          *zap.Logger

	stateMutex sync.Mutex
	state      State
}

// NewMirror constructs a Mirror in the INIT state.
func NewMirror(configuration Configuration, dependencies Dependencies) (*Mirror, error) {
	if dependencies.RepositoryCache == nil {
		return nil, ErrRepositoryCacheNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mirrorConsole := dependencies.Console
	if mirrorConsole == nil {
		mirrorConsole = console.NewLoggerConsole(logger)
	}
	return &Mirror{
		configuration:   configuration,
		repositoryCache: dependencies.RepositoryCache,
		console:         mirrorConsole,
		logger:          logger,
		state:           StateInit,
	}, nil
}

// Name returns the configured name.
func (mirror *Mirror) Name() string {
	return mirror.configuration.Name()
}

// Configuration returns the mirror configuration.
func (mirror *Mirror) Configuration() Configuration {
	return mirror.configuration
}

// State returns the state reached by the latest run.
func (mirror *Mirror) State() State {
	mirror.stateMutex.Lock()
	defer mirror.stateMutex.Unlock()
	return mirror.state
}

// Run mirrors the references. The workdir and source reference are not used.
func (mirror *Mirror) Run(executionContext context.Context, workdir string, sourceReference string) error {
	mirror.transition(StateInit)
	if len(sourceReference) > 0 {
		mirror.logger.Debug(ignoredSourceReferenceMessageConstant, zap.String(logFieldSourceReferenceConstant, sourceReference))
	}
	mirror.console.Progress(fmt.Sprintf(mirrorStartTemplateConstant, mirror.configuration.OriginURL(), mirror.configuration.DestinationURL()))

	lease, leaseError := mirror.repositoryCache.Acquire(executionContext, mirror.configuration.OriginURL())
	if leaseError != nil {
		mirror.transition(StateFailed)
		return leaseError
	}

	runError := mirror.run(executionContext, lease.Repository)
	runError = multierr.Append(runError, lease.Release())
	if runError != nil {
		mirror.transition(StateFailed)
	}
	return runError
}

func (mirror *Mirror) run(executionContext context.Context, repository *gitrepo.Repository) error {
	refSpecs := mirror.configuration.RefSpecs()

	fetchRefSpecs := make([]gitrepo.RefSpec, 0, len(refSpecs))
	pushRefSpecs := make([]gitrepo.RefSpec, 0, len(refSpecs))
	for _, refSpec := range refSpecs {
		fetchRefSpecs = append(fetchRefSpecs, refSpec.SourceToSource().WithForce(true))
		pushRefSpecs = append(pushRefSpecs, refSpec.WithForce(mirror.configuration.ForcePush()))
	}

	if fetchError := repository.Fetch(executionContext, mirror.configuration.OriginURL(), true, fetchRefSpecs); fetchError != nil {
		return fetchError
	}
	mirror.transition(StateFetched)

	if pushError := repository.Push(executionContext, mirror.configuration.DestinationURL(), pushRefSpecs); pushError != nil {
		return pushError
	}
	mirror.transition(StatePushed)

	if !mirror.configuration.Prune() {
		mirror.transition(StateDone)
		return nil
	}

	staleReferences, staleError := mirror.staleDestinationReferences(executionContext, repository, refSpecs)
	if staleError != nil {
		return staleError
	}
	if deleteError := repository.DeleteRemoteReferences(executionContext, mirror.configuration.DestinationURL(), staleReferences); deleteError != nil {
		return deleteError
	}
	mirror.logger.Info(
		fmt.Sprintf(mirrorPrunedTemplateConstant, len(staleReferences), mirror.configuration.DestinationURL()),
		zap.String(logFieldMirrorNameConstant, mirror.configuration.Name()),
		zap.Strings(logFieldPrunedReferencesConstant, staleReferences),
	)
	mirror.transition(StatePruned)
	return nil
}

// staleDestinationReferences lists destination references covered by a
// refspec destination that no origin reference maps onto.
func (mirror *Mirror) staleDestinationReferences(executionContext context.Context, repository *gitrepo.Repository, refSpecs []gitrepo.RefSpec) ([]string, error) {
	localReferences, localError := repository.ListReferences(executionContext)
	if localError != nil {
		return nil, localError
	}
	destinationReferences, remoteError := repository.ListRemoteReferences(executionContext, mirror.configuration.DestinationURL())
	if remoteError != nil {
		return nil, remoteError
	}

	mappedReferences := map[string]struct{}{}
	for localReference := range localReferences {
		for _, refSpec := range refSpecs {
			if destinationReference, matched := refSpec.ConvertSource(localReference); matched {
				mappedReferences[destinationReference] = struct{}{}
			}
		}
	}

	var staleReferences []string
	for destinationReference := range destinationReferences {
		if _, mapped := mappedReferences[destinationReference]; mapped {
			continue
		}
		for _, refSpec := range refSpecs {
			if refSpec.MatchesDestination(destinationReference) {
				staleReferences = append(staleReferences, destinationReference)
				break
			}
		}
	}
	sort.Strings(staleReferences)
	return staleReferences, nil
}

func (mirror *Mirror) transition(state State) {
	mirror.stateMutex.Lock()
	mirror.state = state
	mirror.stateMutex.Unlock()
	mirror.logger.Debug(
		stateTransitionMessageConstant,
		zap.String(logFieldMirrorNameConstant, mirror.configuration.Name()),
		zap.String(logFieldStateConstant, string(state)),
	)
}
