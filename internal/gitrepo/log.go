package gitrepo

import (
	"context"
	"strings"
	"time"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	gitLogSubcommandConstant         = "log"
	gitFirstParentFlagConstant       = "--first-parent"
	gitNameOnlyFlagConstant          = "--name-only"
	gitSplitMergesFlagConstant       = "-m"
	gitNoColorFlagConstant           = "--no-color"
	maxCountFlagConstant             = "--max-count=1"
	commitRangeSeparatorConstant     = ".."
	logFormatFlagPrefixConstant      = "--pretty=format:"
	logRecordSeparatorConstant       = "\x1e"
	logFieldSeparatorConstant        = "\x1f"
	logRecordSeparatorFormatConstant = "%x1e"
	logFieldSeparatorFormatConstant  = "%x1f"
	logFieldCountConstant            = 7
	logFailureTemplateConstant       = "Cannot read history %s in %s"
	malformedLogTemplateConstant     = "Unexpected log record for %s"
	malformedTimeTemplateConstant    = "Unexpected timestamp %q in log record"
)

var logFieldFormats = []string{
	"%H",
	"%an",
	"%ae",
	"%aI",
	"%cI",
	"%B",
}

// Commit is a single entry of a first-parent log.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	AuthorTime  time.Time
	CommitTime  time.Time
	Message     string
	Files       []string
}

// Log returns the first-parent history reachable from toReference and not from
// fromReference, newest first. An empty fromReference walks back to the root.
// Merge commits list the files changed relative to their first parent.
func (repository *Repository) Log(executionContext context.Context, fromReference string, toReference string) ([]Commit, error) {
	revisionRange := toReference
	if len(fromReference) > 0 {
		revisionRange = fromReference + commitRangeSeparatorConstant + toReference
	}
	return repository.readLog(executionContext, []string{gitFirstParentFlagConstant, gitSplitMergesFlagConstant, gitNameOnlyFlagConstant, revisionRange})
}

// ReadCommit returns the metadata of a single commit.
func (repository *Repository) ReadCommit(executionContext context.Context, commitHash string) (Commit, error) {
	commits, logError := repository.readLog(executionContext, []string{maxCountFlagConstant, commitHash + gitCommitPeelSuffixConstant})
	if logError != nil {
		return Commit{}, logError
	}
	if len(commits) == 0 {
		return Commit{}, failures.NewRepositoryError(nil, cannotFindReferenceTemplateConstant, commitHash)
	}
	return commits[0], nil
}

func (repository *Repository) readLog(executionContext context.Context, arguments []string) ([]Commit, error) {
	logArguments := []string{gitLogSubcommandConstant, gitNoColorFlagConstant, logFormatFlagPrefixConstant + buildLogFormat()}
	logArguments = append(logArguments, arguments...)

	executionResult, logError := repository.run(executionContext, logArguments...)
	if logError != nil {
		return nil, failures.NewRepositoryError(logError, logFailureTemplateConstant, arguments[len(arguments)-1], repository.gitDirectory)
	}
	return parseLog(executionResult.StandardOutput)
}

func buildLogFormat() string {
	return logRecordSeparatorFormatConstant + strings.Join(logFieldFormats, logFieldSeparatorFormatConstant) + logFieldSeparatorFormatConstant
}

func parseLog(output string) ([]Commit, error) {
	records := strings.Split(output, logRecordSeparatorConstant)
	commits := make([]Commit, 0, len(records))
	for _, record := range records {
		if len(strings.TrimSpace(record)) == 0 {
			continue
		}
		commit, parseError := parseLogRecord(record)
		if parseError != nil {
			return nil, parseError
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func parseLogRecord(record string) (Commit, error) {
	fields := strings.SplitN(record, logFieldSeparatorConstant, logFieldCountConstant)
	if len(fields) != logFieldCountConstant {
		return Commit{}, failures.NewRepositoryError(nil, malformedLogTemplateConstant, strings.TrimSpace(record))
	}

	authorTime, authorTimeError := parseCommitTimestamp(fields[3])
	if authorTimeError != nil {
		return Commit{}, failures.NewRepositoryError(authorTimeError, malformedTimeTemplateConstant, fields[3])
	}
	commitTime, commitTimeError := parseCommitTimestamp(fields[4])
	if commitTimeError != nil {
		return Commit{}, failures.NewRepositoryError(commitTimeError, malformedTimeTemplateConstant, fields[4])
	}

	var files []string
	for _, fileLine := range strings.Split(fields[6], outputLineSeparatorConstant) {
		trimmedFile := strings.TrimSpace(fileLine)
		if len(trimmedFile) > 0 {
			files = append(files, trimmedFile)
		}
	}

	return Commit{
		Hash:        strings.TrimSpace(fields[0]),
		AuthorName:  fields[1],
		AuthorEmail: fields[2],
		AuthorTime:  authorTime,
		CommitTime:  commitTime,
		Message:     fields[5],
		Files:       files,
	}, nil
}
