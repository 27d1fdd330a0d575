package origin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/console"
	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/failures"
	"github.com/temirov/gitmigrate/internal/gitrepo"
)

const (
	originDescriptionTemplateConstant  = "GitOrigin{repoUrl=%s, ref=%s, repoType=%s}"
	nullReferenceDescriptionConstant   = "null"
	urlOverrideWarningTemplateConstant = "Git origin URL overwritten in the command line as %s"
	invalidGitHubURLTemplateConstant   = "Invalid Github URL: %s"
	missingURLMessageConstant          = "git origin requires a non-empty 'url' field"
	missingReferenceMessageConstant    = "No reference was passed as an argument and the origin has no default 'ref'"
	urlSchemeSeparatorConstant         = "://"
	fileURLPrefixConstant              = "file:"
	headReferenceConstant              = "HEAD"
	logFieldOriginURLConstant          = "origin_url"
	logFieldReferenceConstant          = "reference"
	logFieldCommitConstant             = "commit"
	referenceResolvedMessageConstant   = "resolved origin reference"
	cacheNotConfiguredMessageConstant  = "origin repository cache not configured"
)

// fetchAllReferencesSpecs pulls branches and tags into the cache, replacing stale values.
var fetchAllReferencesSpecs = []gitrepo.RefSpec{
	{Source: "refs/heads/*", Destination: "refs/heads/*", Force: true},
	{Source: "refs/tags/*", Destination: "refs/tags/*", Force: true},
}

// ErrRepositoryCacheNotConfigured indicates the origin was created without a repository cache.
var ErrRepositoryCacheNotConfigured = errors.New(cacheNotConfiguredMessageConstant)

// RepoType identifies the flavour of git server behind an origin.
type RepoType string

// Supported repository types.
const (
	RepoTypeGit    RepoType = RepoType("GIT")
	RepoTypeGerrit RepoType = RepoType("GERRIT")
	RepoTypeGitHub RepoType = RepoType("GITHUB")
)

// HookExecutor runs checkout hooks.
type HookExecutor interface {
	ExecuteCommand(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Options carries process-level settings that apply to every git origin.
type Options struct {
	CheckoutHook string
	URLOverride  string
}

// Dependencies enumerates collaborators shared by git origins.
type Dependencies struct {
	RepositoryCache *gitrepo.RepositoryCache
	HookExecutor    HookExecutor
	Console         console.Console
	Logger          *zap.Logger
}

// GitOrigin reads from a git repository identified by URL.
type GitOrigin struct {
	repositoryURL    string
	defaultReference string
	repoType         RepoType
	options          Options
	repositoryCache  *gitrepo.RepositoryCache
	checkoutHook     *CheckoutHook
	console          console.Console
	logger           *zap.Logger
}

// NewGitOrigin constructs an origin. An empty defaultReference means callers must always pass one.
func NewGitOrigin(repositoryURL string, defaultReference string, repoType RepoType, options Options, dependencies Dependencies) (*GitOrigin, error) {
	if len(strings.TrimSpace(repositoryURL)) == 0 {
		return nil, failures.NewValidationError(missingURLMessageConstant)
	}
	if dependencies.RepositoryCache == nil {
		return nil, ErrRepositoryCacheNotConfigured
	}
	if repoType == RepoTypeGitHub {
		if _, parseError := gitrepo.ParseGitHubProject(repositoryURL); parseError != nil {
			return nil, failures.NewValidationError(invalidGitHubURLTemplateConstant, repositoryURL)
		}
	}

	originConsole := dependencies.Console
	if originConsole == nil {
		originConsole = console.NewLoggerConsole(dependencies.Logger)
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var checkoutHook *CheckoutHook
	if len(strings.TrimSpace(options.CheckoutHook)) > 0 {
		hook, hookError := NewCheckoutHook(options.CheckoutHook, dependencies.HookExecutor)
		if hookError != nil {
			return nil, hookError
		}
		checkoutHook = hook
	}

	gitOrigin := &GitOrigin{
		repositoryURL:    repositoryURL,
		defaultReference: defaultReference,
		repoType:         repoType,
		options:          options,
		repositoryCache:  dependencies.RepositoryCache,
		checkoutHook:     checkoutHook,
		console:          originConsole,
		logger:           logger,
	}
	if len(strings.TrimSpace(options.URLOverride)) > 0 {
		originConsole.Warn(fmt.Sprintf(urlOverrideWarningTemplateConstant, options.URLOverride))
	}
	return gitOrigin, nil
}

// String describes the origin as configured.
func (gitOrigin *GitOrigin) String() string {
	referenceDescription := gitOrigin.defaultReference
	if len(referenceDescription) == 0 {
		referenceDescription = nullReferenceDescriptionConstant
	}
	return fmt.Sprintf(originDescriptionTemplateConstant, gitOrigin.repositoryURL, referenceDescription, gitOrigin.repoType)
}

// RepositoryURL returns the configured URL.
func (gitOrigin *GitOrigin) RepositoryURL() string {
	return gitOrigin.repositoryURL
}

// DefaultReference returns the configured reference, possibly empty.
func (gitOrigin *GitOrigin) DefaultReference() string {
	return gitOrigin.defaultReference
}

// RepoType returns the repository flavour.
func (gitOrigin *GitOrigin) RepoType() RepoType {
	return gitOrigin.repoType
}

// FetchURL is the URL history is read from, honouring the command line override.
func (gitOrigin *GitOrigin) FetchURL() string {
	if len(strings.TrimSpace(gitOrigin.options.URLOverride)) > 0 {
		return gitOrigin.options.URLOverride
	}
	return gitOrigin.repositoryURL
}

// Resolve turns a reference expression into a commit. An empty expression uses
// the configured default reference. A URL expression reads the HEAD of that
// repository instead of the configured one and is reported as a warning.
func (gitOrigin *GitOrigin) Resolve(executionContext context.Context, referenceExpression string) (GitReference, error) {
	expression := strings.TrimSpace(referenceExpression)
	if len(expression) == 0 {
		expression = gitOrigin.defaultReference
	}
	if len(expression) == 0 {
		return GitReference{}, failures.NewRepositoryError(nil, missingReferenceMessageConstant)
	}

	lease, leaseError := gitOrigin.repositoryCache.Acquire(executionContext, gitOrigin.repositoryURL)
	if leaseError != nil {
		return GitReference{}, leaseError
	}
	reference, resolveError := gitOrigin.resolveWithRepository(executionContext, lease.Repository, expression)
	return reference, multierr.Append(resolveError, lease.Release())
}

func (gitOrigin *GitOrigin) resolveWithRepository(executionContext context.Context, repository *gitrepo.Repository, expression string) (GitReference, error) {
	var commitHash string
	if isRepositoryURL(expression) {
		gitOrigin.console.Warn(fmt.Sprintf(urlOverrideWarningTemplateConstant, expression))
		fetchedHash, fetchError := repository.FetchReference(executionContext, expression, headReferenceConstant)
		if fetchError != nil {
			return GitReference{}, fetchError
		}
		commitHash = fetchedHash
	} else if expression == headReferenceConstant {
		fetchedHash, fetchError := repository.FetchReference(executionContext, gitOrigin.FetchURL(), headReferenceConstant)
		if fetchError != nil {
			return GitReference{}, fetchError
		}
		commitHash = fetchedHash
	} else {
		if fetchError := repository.Fetch(executionContext, gitOrigin.FetchURL(), true, fetchAllReferencesSpecs); fetchError != nil {
			return GitReference{}, fetchError
		}
		resolvedHash, resolveError := repository.ResolveReference(executionContext, expression)
		if resolveError != nil {
			// Review refs (refs/changes/*, refs/pull/*) and commits reachable only from them are not under heads or tags.
			fetchedHash, fetchError := repository.FetchReference(executionContext, gitOrigin.FetchURL(), expression)
			if fetchError != nil {
				return GitReference{}, resolveError
			}
			resolvedHash = fetchedHash
		}
		commitHash = resolvedHash
	}

	authorTime, timeError := repository.CommitTime(executionContext, commitHash)
	if timeError != nil {
		return GitReference{}, timeError
	}
	gitOrigin.logger.Debug(
		referenceResolvedMessageConstant,
		zap.String(logFieldOriginURLConstant, gitOrigin.FetchURL()),
		zap.String(logFieldReferenceConstant, expression),
		zap.String(logFieldCommitConstant, commitHash),
	)
	return NewGitReference(commitHash, authorTime), nil
}

// NewReader creates a reader restricted to the path filter.
func (gitOrigin *GitOrigin) NewReader(pathFilter PathFilter, authoringPolicy authoring.Authoring) *Reader {
	return &Reader{origin: gitOrigin, pathFilter: pathFilter, authoring: authoringPolicy}
}

func isRepositoryURL(expression string) bool {
	return strings.Contains(expression, urlSchemeSeparatorConstant) || strings.HasPrefix(expression, fileURLPrefixConstant)
}
