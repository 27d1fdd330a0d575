package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/gitmigrate/internal/execshell"
	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	gitDirectoryFlagTemplateConstant            = "--git-dir="
	gitWorkTreeFlagTemplateConstant             = "--work-tree="
	gitInitSubcommandConstant                   = "init"
	gitBareFlagConstant                         = "--bare"
	gitQuietFlagConstant                        = "--quiet"
	gitFetchSubcommandConstant                  = "fetch"
	gitPruneFlagConstant                        = "--prune"
	gitNoTagsFlagConstant                       = "--no-tags"
	gitPushSubcommandConstant                   = "push"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitVerifyFlagConstant                       = "--verify"
	gitCommitPeelSuffixConstant                 = "^{commit}"
	gitFetchHeadReferenceConstant               = "FETCH_HEAD"
	gitReadTreeSubcommandConstant               = "read-tree"
	gitCheckoutIndexSubcommandConstant          = "checkout-index"
	gitAllFlagConstant                          = "--all"
	gitForceFlagConstant                        = "--force"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitReferenceListingFormatConstant           = "--format=%(objectname) %(refname)"
	gitLsRemoteSubcommandConstant               = "ls-remote"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	gitHeadFileNameConstant                     = "HEAD"
	peeledReferenceSuffixConstant               = "^{}"
	referenceDeletionPrefixConstant             = ":"
	outputLineSeparatorConstant                 = "\n"
	gitDirectoryPermissionsConstant             = 0o755
)

const (
	gitDirectoryRequiredMessageConstant   = "git directory must be provided"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	cannotFindReferenceTemplateConstant   = "Cannot find reference '%s'"
	initFailureTemplateConstant           = "Cannot initialize repository in %s"
	fetchFailureTemplateConstant          = "Cannot fetch from %s"
	pushFailureTemplateConstant           = "Cannot push to %s"
	checkoutFailureTemplateConstant       = "Cannot check out %s into %s"
	listReferencesFailureTemplateConstant = "Cannot list references of %s"
	workTreePreparationTemplateConstant   = "Cannot prepare work tree %s"
)

// ErrGitDirectoryRequired indicates the repository was created without a git directory.
var ErrGitDirectoryRequired = errors.New(gitDirectoryRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the repository was created without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by repositories.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Repository operates on a single git directory. Work trees are supplied per call.
type Repository struct {
	gitDirectory string
	executor     GitExecutor
	environment  map[string]string
}

// NewRepository constructs a Repository for the git directory.
func NewRepository(gitDirectory string, executor GitExecutor, environment map[string]string) (*Repository, error) {
	if len(strings.TrimSpace(gitDirectory)) == 0 {
		return nil, ErrGitDirectoryRequired
	}
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	repositoryEnvironment := map[string]string{
		gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
	}
	for environmentKey, environmentValue := range environment {
		repositoryEnvironment[environmentKey] = environmentValue
	}

	return &Repository{
		gitDirectory: gitDirectory,
		executor:     executor,
		environment:  repositoryEnvironment,
	}, nil
}

// GitDirectory returns the path of the git directory.
func (repository *Repository) GitDirectory() string {
	return repository.gitDirectory
}

// IsInitialized reports whether the git directory already holds a repository.
func (repository *Repository) IsInitialized() bool {
	_, statError := os.Stat(filepath.Join(repository.gitDirectory, gitHeadFileNameConstant))
	return statError == nil
}

// InitBare creates a bare repository in the git directory.
func (repository *Repository) InitBare(executionContext context.Context) error {
	if mkdirError := os.MkdirAll(repository.gitDirectory, gitDirectoryPermissionsConstant); mkdirError != nil {
		return failures.NewRepositoryError(mkdirError, initFailureTemplateConstant, repository.gitDirectory)
	}
	_, initError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitInitSubcommandConstant, gitBareFlagConstant, gitQuietFlagConstant, repository.gitDirectory},
		EnvironmentVariables: repository.environment,
	})
	if initError != nil {
		return failures.NewRepositoryError(initError, initFailureTemplateConstant, repository.gitDirectory)
	}
	return nil
}

// Fetch retrieves the refspecs from the remote. Tags are only fetched when a refspec names them.
func (repository *Repository) Fetch(executionContext context.Context, remoteURL string, prune bool, refSpecs []RefSpec) error {
	arguments := []string{gitFetchSubcommandConstant, gitQuietFlagConstant, gitNoTagsFlagConstant}
	if prune {
		arguments = append(arguments, gitPruneFlagConstant)
	}
	arguments = append(arguments, remoteURL)
	for _, refSpec := range refSpecs {
		arguments = append(arguments, refSpec.String())
	}

	if _, fetchError := repository.run(executionContext, arguments...); fetchError != nil {
		return failures.NewRepositoryError(fetchError, fetchFailureTemplateConstant, remoteURL)
	}
	return nil
}

// FetchReference fetches a single reference expression and returns the commit it points at.
func (repository *Repository) FetchReference(executionContext context.Context, remoteURL string, referenceExpression string) (string, error) {
	if _, fetchError := repository.run(executionContext, gitFetchSubcommandConstant, gitQuietFlagConstant, gitNoTagsFlagConstant, remoteURL, referenceExpression); fetchError != nil {
		return "", failures.NewRepositoryError(fetchError, cannotFindReferenceTemplateConstant, referenceExpression)
	}
	commitHash, resolveError := repository.ResolveReference(executionContext, gitFetchHeadReferenceConstant)
	if resolveError != nil {
		return "", failures.NewRepositoryError(resolveError, cannotFindReferenceTemplateConstant, referenceExpression)
	}
	return commitHash, nil
}

// Push publishes the refspecs to the remote. Non-fast-forward updates of
// refspecs without the force flag fail with git's "[rejected]" report.
func (repository *Repository) Push(executionContext context.Context, remoteURL string, refSpecs []RefSpec) error {
	arguments := []string{gitPushSubcommandConstant, remoteURL}
	for _, refSpec := range refSpecs {
		arguments = append(arguments, refSpec.String())
	}
	if _, pushError := repository.run(executionContext, arguments...); pushError != nil {
		return failures.NewRepositoryError(pushError, pushFailureTemplateConstant, remoteURL)
	}
	return nil
}

// DeleteRemoteReferences removes the references from the remote.
func (repository *Repository) DeleteRemoteReferences(executionContext context.Context, remoteURL string, references []string) error {
	if len(references) == 0 {
		return nil
	}
	arguments := []string{gitPushSubcommandConstant, remoteURL}
	for _, reference := range references {
		arguments = append(arguments, referenceDeletionPrefixConstant+reference)
	}
	if _, pushError := repository.run(executionContext, arguments...); pushError != nil {
		return failures.NewRepositoryError(pushError, pushFailureTemplateConstant, remoteURL)
	}
	return nil
}

// ResolveReference returns the commit hash the expression points at. Annotated tags are peeled.
func (repository *Repository) ResolveReference(executionContext context.Context, referenceExpression string) (string, error) {
	executionResult, resolveError := repository.run(executionContext, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, referenceExpression+gitCommitPeelSuffixConstant)
	if resolveError != nil {
		return "", failures.NewRepositoryError(nil, cannotFindReferenceTemplateConstant, referenceExpression)
	}
	commitHash := strings.TrimSpace(executionResult.StandardOutput)
	if len(commitHash) == 0 {
		return "", failures.NewRepositoryError(nil, cannotFindReferenceTemplateConstant, referenceExpression)
	}
	return commitHash, nil
}

// Checkout replaces the content of the work tree with the tree of the commit.
// Files not tracked by the commit are removed.
func (repository *Repository) Checkout(executionContext context.Context, commitHash string, workTree string) error {
	if prepareError := resetDirectory(workTree); prepareError != nil {
		return failures.NewRepositoryError(prepareError, workTreePreparationTemplateConstant, workTree)
	}

	workTreeFlag := gitWorkTreeFlagTemplateConstant + workTree
	if _, readTreeError := repository.runInWorkTree(executionContext, workTreeFlag, gitReadTreeSubcommandConstant, commitHash); readTreeError != nil {
		return failures.NewRepositoryError(readTreeError, checkoutFailureTemplateConstant, commitHash, workTree)
	}
	if _, checkoutError := repository.runInWorkTree(executionContext, workTreeFlag, gitCheckoutIndexSubcommandConstant, gitAllFlagConstant, gitForceFlagConstant); checkoutError != nil {
		return failures.NewRepositoryError(checkoutError, checkoutFailureTemplateConstant, commitHash, workTree)
	}
	return nil
}

// ListReferences returns local references keyed by name. Patterns follow
// for-each-ref: fnmatch globs or prefixes ending at a slash. No pattern lists everything.
func (repository *Repository) ListReferences(executionContext context.Context, patterns ...string) (map[string]string, error) {
	arguments := append([]string{gitForEachRefSubcommandConstant, gitReferenceListingFormatConstant}, patterns...)
	executionResult, listError := repository.run(executionContext, arguments...)
	if listError != nil {
		return nil, failures.NewRepositoryError(listError, listReferencesFailureTemplateConstant, repository.gitDirectory)
	}
	return parseReferenceListing(executionResult.StandardOutput), nil
}

// ListRemoteReferences returns the references advertised by the remote keyed by name,
// restricted to the ls-remote patterns when any are given.
func (repository *Repository) ListRemoteReferences(executionContext context.Context, remoteURL string, patterns ...string) (map[string]string, error) {
	arguments := append([]string{gitLsRemoteSubcommandConstant, remoteURL}, patterns...)
	executionResult, listError := repository.run(executionContext, arguments...)
	if listError != nil {
		return nil, failures.NewRepositoryError(listError, listReferencesFailureTemplateConstant, remoteURL)
	}
	return parseReferenceListing(executionResult.StandardOutput), nil
}

// CommitTime returns the author time of the commit.
func (repository *Repository) CommitTime(executionContext context.Context, commitHash string) (time.Time, error) {
	commit, readError := repository.ReadCommit(executionContext, commitHash)
	if readError != nil {
		return time.Time{}, readError
	}
	return commit.AuthorTime, nil
}

func (repository *Repository) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	gitArguments := append([]string{gitDirectoryFlagTemplateConstant + repository.gitDirectory}, arguments...)
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            gitArguments,
		EnvironmentVariables: repository.environment,
	})
}

func (repository *Repository) runInWorkTree(executionContext context.Context, workTreeFlag string, arguments ...string) (execshell.ExecutionResult, error) {
	return repository.run(executionContext, append([]string{workTreeFlag}, arguments...)...)
}

func parseReferenceListing(output string) map[string]string {
	references := map[string]string{}
	for _, outputLine := range strings.Split(output, outputLineSeparatorConstant) {
		fields := strings.Fields(outputLine)
		if len(fields) != 2 {
			continue
		}
		if strings.HasSuffix(fields[1], peeledReferenceSuffixConstant) {
			continue
		}
		references[fields[1]] = fields[0]
	}
	return references
}

func resetDirectory(directory string) error {
	if mkdirError := os.MkdirAll(directory, gitDirectoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}
	entries, readError := os.ReadDir(directory)
	if readError != nil {
		return readError
	}
	for _, entry := range entries {
		if removeError := os.RemoveAll(filepath.Join(directory, entry.Name())); removeError != nil {
			return removeError
		}
	}
	return nil
}

// parseCommitTimestamp keeps the offset git recorded for the commit.
func parseCommitTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(value))
}
