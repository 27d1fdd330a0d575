package gitrepo

import (
	"context"
	"crypto/md5"
	"encoding/base32"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	storagePathRequiredMessageConstant     = "repository storage path must be provided"
	storageCreationFailureTemplateConstant = "Cannot create repository storage %s"
	lockFileSuffixConstant                 = ".lock"
	base32PaddingConstant                  = "="
	logFieldRepositoryURLConstant          = "repository_url"
	logFieldGitDirectoryConstant           = "git_directory"
	cacheInitializedMessageConstant        = "initialized cached repository"
	cacheLeaseReleasedMessageConstant      = "released cached repository"
)

// ErrStoragePathRequired indicates the cache was created without a storage path.
var ErrStoragePathRequired = errors.New(storagePathRequiredMessageConstant)

// RepositoryCache keeps a bare repository per remote URL under a storage path.
type RepositoryCache struct {
	storagePath string
	executor    GitExecutor
	environment map[string]string
	logger      *zap.Logger
}

// NewRepositoryCache constructs a cache rooted at storagePath.
func NewRepositoryCache(storagePath string, executor GitExecutor, environment map[string]string, logger *zap.Logger) (*RepositoryCache, error) {
	if len(strings.TrimSpace(storagePath)) == 0 {
		return nil, ErrStoragePathRequired
	}
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryCache{storagePath: storagePath, executor: executor, environment: environment, logger: logger}, nil
}

// StoragePath returns the cache root.
func (cache *RepositoryCache) StoragePath() string {
	return cache.storagePath
}

// RepositoryLease is exclusive access to a cached repository until Release.
type RepositoryLease struct {
	Repository *Repository
	lock       *FileLock
	logger     *zap.Logger
}

// Release gives up the exclusive access.
func (lease *RepositoryLease) Release() error {
	releaseError := lease.lock.Release()
	lease.logger.Debug(cacheLeaseReleasedMessageConstant, zap.String(logFieldGitDirectoryConstant, lease.Repository.GitDirectory()))
	return releaseError
}

// Acquire locks the cached repository for the URL, creating it on first use.
func (cache *RepositoryCache) Acquire(executionContext context.Context, repositoryURL string) (*RepositoryLease, error) {
	if mkdirError := os.MkdirAll(cache.storagePath, gitDirectoryPermissionsConstant); mkdirError != nil {
		return nil, failures.NewRepositoryError(mkdirError, storageCreationFailureTemplateConstant, cache.storagePath)
	}

	gitDirectory := filepath.Join(cache.storagePath, CacheDirectoryName(repositoryURL))
	lock, lockError := AcquireFileLock(gitDirectory + lockFileSuffixConstant)
	if lockError != nil {
		return nil, lockError
	}

	repository, repositoryError := NewRepository(gitDirectory, cache.executor, cache.environment)
	if repositoryError != nil {
		return nil, multierr.Append(repositoryError, lock.Release())
	}

	if !repository.IsInitialized() {
		if initError := repository.InitBare(executionContext); initError != nil {
			return nil, multierr.Append(initError, lock.Release())
		}
		cache.logger.Debug(
			cacheInitializedMessageConstant,
			zap.String(logFieldRepositoryURLConstant, repositoryURL),
			zap.String(logFieldGitDirectoryConstant, gitDirectory),
		)
	}

	return &RepositoryLease{Repository: repository, lock: lock, logger: cache.logger}, nil
}

// CacheDirectoryName derives a stable, filesystem-safe directory name from the URL.
func CacheDirectoryName(repositoryURL string) string {
	digest := md5.Sum([]byte(repositoryURL))
	encoded := base32.StdEncoding.EncodeToString(digest[:])
	return strings.ToLower(strings.TrimRight(encoded, base32PaddingConstant))
}
