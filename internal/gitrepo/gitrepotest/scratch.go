// Package gitrepotest builds throwaway git repositories for tests.
package gitrepotest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/gitmigrate/internal/execshell"
)

const (
	testUserNameConstant            = "Scratch User"
	testUserEmailConstant           = "scratch@example.com"
	defaultBranchNameConstant       = "master"
	homeDirectoryNameConstant       = "home"
	repositoryDirectoryConstant     = "repository"
	bareRepositoryDirectoryConstant = "bare.git"
	filePermissionsConstant         = 0o644
	directoryPermissionsConstant    = 0o755
	authorFlagPrefixConstant        = "--author="
	dateFlagPrefixConstant          = "--date="
	defaultBranchConfigConstant     = "init.defaultBranch=" + defaultBranchNameConstant
	gitConfigFlagConstant           = "-c"
	gitWorkingDirectoryFlagConstant = "-C"
)

// HermeticEnvironment isolates git from the user's configuration.
func HermeticEnvironment(testInstance testing.TB) map[string]string {
	testInstance.Helper()
	homeDirectory := filepath.Join(testInstance.TempDir(), homeDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(homeDirectory, directoryPermissionsConstant))
	return map[string]string{
		"HOME":                homeDirectory,
		"XDG_CONFIG_HOME":     homeDirectory,
		"GIT_CONFIG_NOSYSTEM": "1",
		"GIT_AUTHOR_NAME":     testUserNameConstant,
		"GIT_AUTHOR_EMAIL":    testUserEmailConstant,
		"GIT_COMMITTER_NAME":  testUserNameConstant,
		"GIT_COMMITTER_EMAIL": testUserEmailConstant,
		"GIT_TERMINAL_PROMPT": "0",
	}
}

// NewExecutor returns a shell executor backed by real processes and a test logger.
func NewExecutor(testInstance testing.TB) *execshell.ShellExecutor {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zaptest.NewLogger(testInstance), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	return executor
}

// ScratchRepository is a non-bare repository with a work tree.
type ScratchRepository struct {
	Path        string
	Environment map[string]string
	executor    *execshell.ShellExecutor
	testing     testing.TB
}

// NewScratchRepository initializes an empty repository whose default branch is master.
func NewScratchRepository(testInstance testing.TB, environment map[string]string) *ScratchRepository {
	testInstance.Helper()
	repositoryPath := filepath.Join(testInstance.TempDir(), repositoryDirectoryConstant)
	scratch := &ScratchRepository{
		Path:        repositoryPath,
		Environment: environment,
		executor:    NewExecutor(testInstance),
		testing:     testInstance,
	}
	scratch.run("", gitConfigFlagConstant, defaultBranchConfigConstant, "init", "--quiet", repositoryPath)
	return scratch
}

// NewBareRepository initializes an empty bare repository and returns its path.
func NewBareRepository(testInstance testing.TB, environment map[string]string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(testInstance.TempDir(), bareRepositoryDirectoryConstant)
	scratch := &ScratchRepository{Path: repositoryPath, Environment: environment, executor: NewExecutor(testInstance), testing: testInstance}
	scratch.run("", gitConfigFlagConstant, defaultBranchConfigConstant, "init", "--quiet", "--bare", repositoryPath)
	return repositoryPath
}

// URL returns the file URL of the repository.
func (scratch *ScratchRepository) URL() string {
	return "file://" + scratch.Path
}

// Git runs git inside the repository and returns trimmed standard output.
func (scratch *ScratchRepository) Git(arguments ...string) string {
	scratch.testing.Helper()
	return scratch.run(scratch.Path, arguments...)
}

// WriteFile writes a file relative to the work tree.
func (scratch *ScratchRepository) WriteFile(relativePath string, content string) {
	scratch.testing.Helper()
	absolutePath := filepath.Join(scratch.Path, relativePath)
	require.NoError(scratch.testing, os.MkdirAll(filepath.Dir(absolutePath), directoryPermissionsConstant))
	require.NoError(scratch.testing, os.WriteFile(absolutePath, []byte(content), filePermissionsConstant))
}

// CommitFile writes and commits a single file and returns the new commit hash.
// Empty author keeps the environment identity; extra arguments go to git commit.
func (scratch *ScratchRepository) CommitFile(author string, message string, relativePath string, content string, extraArguments ...string) string {
	scratch.testing.Helper()
	scratch.WriteFile(relativePath, content)
	scratch.Git("add", relativePath)
	commitArguments := []string{"commit", "--quiet", "-m", message}
	if len(author) > 0 {
		commitArguments = append(commitArguments, authorFlagPrefixConstant+author)
	}
	commitArguments = append(commitArguments, extraArguments...)
	scratch.Git(commitArguments...)
	return scratch.Head()
}

// CommitFileAt commits a file with the given author date.
func (scratch *ScratchRepository) CommitFileAt(message string, relativePath string, content string, date string) string {
	scratch.testing.Helper()
	return scratch.CommitFile("", message, relativePath, content, dateFlagPrefixConstant+date)
}

// Head returns the commit hash of HEAD.
func (scratch *ScratchRepository) Head() string {
	scratch.testing.Helper()
	return scratch.Git("rev-parse", "HEAD")
}

// CreateBranchMerge builds a history where master merges a feature branch:
// feature gets change2 and change3, master gets master1 and master2, then
// master merges feature.
func (scratch *ScratchRepository) CreateBranchMerge(author string) {
	scratch.testing.Helper()
	scratch.Git("branch", "feature")
	scratch.Git("checkout", "--quiet", "feature")
	scratch.CommitFile(author, "change2", "test2.txt", "some content2")
	scratch.CommitFile(author, "change3", "test2.txt", "some content3")
	scratch.Git("checkout", "--quiet", defaultBranchNameConstant)
	scratch.CommitFile(author, "master1", "test.txt", "some content2")
	scratch.CommitFile(author, "master2", "test.txt", "some content3")
	scratch.Git("merge", "--quiet", "--no-ff", "--no-edit", "feature")
	scratch.Git("commit", "--quiet", "--amend", "--no-edit", authorFlagPrefixConstant+author)
}

// ShowReferences returns "hash ref" lines of the repository at gitDirectory, or "" when it has none.
func ShowReferences(testInstance testing.TB, environment map[string]string, gitDirectory string) string {
	testInstance.Helper()
	executor := NewExecutor(testInstance)
	result, runError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:            []string{gitWorkingDirectoryFlagConstant, gitDirectory, "show-ref"},
		EnvironmentVariables: environment,
	})
	if runError != nil {
		return ""
	}
	return strings.TrimSpace(result.StandardOutput)
}

func (scratch *ScratchRepository) run(workingDirectory string, arguments ...string) string {
	scratch.testing.Helper()
	result, runError := scratch.executor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: scratch.Environment,
	})
	require.NoError(scratch.testing, runError)
	return strings.TrimSpace(result.StandardOutput)
}
