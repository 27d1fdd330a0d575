package origin

import (
	"context"
	"errors"

	"go.uber.org/multierr"

	"github.com/temirov/gitmigrate/internal/authoring"
	"github.com/temirov/gitmigrate/internal/gitrepo"
	"github.com/temirov/gitmigrate/internal/revision"
)

const (
	referenceRequiredMessageConstant = "reference must be provided"
)

// ErrReferenceRequired indicates a nil reference where one is mandatory.
var ErrReferenceRequired = errors.New(referenceRequiredMessageConstant)

// Reader reads changes and trees from a git origin.
// Changes keep the origin author; destinations apply the authoring policy.
type Reader struct {
	origin     *GitOrigin
	pathFilter PathFilter
	authoring  authoring.Authoring
}

// Authoring returns the policy the reader was created with.
func (reader *Reader) Authoring() authoring.Authoring {
	return reader.authoring
}

// Checkout materializes the revision in the directory and runs the checkout hook.
func (reader *Reader) Checkout(executionContext context.Context, reference revision.Reference, checkoutDirectory string) error {
	if reference == nil {
		return ErrReferenceRequired
	}
	checkoutError := reader.withRepository(executionContext, func(repository *gitrepo.Repository) error {
		return repository.Checkout(executionContext, reference.AsString(), checkoutDirectory)
	})
	if checkoutError != nil {
		return checkoutError
	}
	if reader.origin.checkoutHook == nil {
		return nil
	}
	return reader.origin.checkoutHook.Run(executionContext, checkoutDirectory)
}

// Changes returns the first-parent changes after fromReference up to and
// including toReference, oldest first. A nil fromReference starts at the root.
func (reader *Reader) Changes(executionContext context.Context, fromReference revision.Reference, toReference revision.Reference) ([]revision.Change, error) {
	if toReference == nil {
		return nil, ErrReferenceRequired
	}
	fromHash := ""
	if fromReference != nil {
		fromHash = fromReference.AsString()
	}

	commits, logError := reader.readLog(executionContext, fromHash, toReference.AsString())
	if logError != nil {
		return nil, logError
	}

	changes := make([]revision.Change, 0, len(commits))
	for commitIndex := len(commits) - 1; commitIndex >= 0; commitIndex-- {
		if !reader.selects(commits[commitIndex]) {
			continue
		}
		changes = append(changes, reader.toChange(commits[commitIndex]))
	}
	return changes, nil
}

// Change returns the single change the reference points at.
func (reader *Reader) Change(executionContext context.Context, reference revision.Reference) (revision.Change, error) {
	if reference == nil {
		return revision.Change{}, ErrReferenceRequired
	}
	var commit gitrepo.Commit
	readError := reader.withRepository(executionContext, func(repository *gitrepo.Repository) error {
		commitHash, resolveError := repository.ResolveReference(executionContext, reference.AsString())
		if resolveError != nil {
			return resolveError
		}
		readCommit, commitError := repository.ReadCommit(executionContext, commitHash)
		commit = readCommit
		return commitError
	})
	if readError != nil {
		return revision.Change{}, readError
	}
	return reader.toChange(commit), nil
}

// VisitChanges walks first-parent history from start, newest first, until the
// visitor returns VisitResultTerminate or the root is reached.
func (reader *Reader) VisitChanges(executionContext context.Context, start revision.Reference, visitor revision.ChangeVisitor) error {
	if start == nil {
		return ErrReferenceRequired
	}
	commits, logError := reader.readLog(executionContext, "", start.AsString())
	if logError != nil {
		return logError
	}
	for _, commit := range commits {
		if !reader.selects(commit) {
			continue
		}
		if visitor(reader.toChange(commit)) == revision.VisitResultTerminate {
			return nil
		}
	}
	return nil
}

func (reader *Reader) readLog(executionContext context.Context, fromHash string, toHash string) ([]gitrepo.Commit, error) {
	var commits []gitrepo.Commit
	logError := reader.withRepository(executionContext, func(repository *gitrepo.Repository) error {
		if _, resolveError := repository.ResolveReference(executionContext, toHash); resolveError != nil {
			return resolveError
		}
		if len(fromHash) > 0 {
			if _, resolveError := repository.ResolveReference(executionContext, fromHash); resolveError != nil {
				return resolveError
			}
		}
		readCommits, readError := repository.Log(executionContext, fromHash, toHash)
		commits = readCommits
		return readError
	})
	return commits, logError
}

func (reader *Reader) withRepository(executionContext context.Context, operation func(repository *gitrepo.Repository) error) error {
	lease, leaseError := reader.origin.repositoryCache.Acquire(executionContext, reader.origin.repositoryURL)
	if leaseError != nil {
		return leaseError
	}
	return multierr.Append(operation(lease.Repository), lease.Release())
}

func (reader *Reader) selects(commit gitrepo.Commit) bool {
	if reader.pathFilter.IsAllFiles() || len(reader.pathFilter.matchers) == 0 {
		return true
	}
	return reader.pathFilter.MatchesAny(commit.Files)
}

func (reader *Reader) toChange(commit gitrepo.Commit) revision.Change {
	return revision.NewChange(
		NewGitReference(commit.Hash, commit.AuthorTime),
		authoring.NewAuthor(commit.AuthorName, commit.AuthorEmail),
		commit.Message,
		commit.AuthorTime,
		reader.origin.console,
	)
}
