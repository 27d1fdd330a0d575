package gitrepo

import (
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/temirov/gitmigrate/internal/failures"
)

const (
	lockFilePermissionsConstant        = 0o644
	lockAcquireFailureTemplateConstant = "Cannot lock %s"
	lockReleaseFailureTemplateConstant = "Cannot unlock %s"
)

// FileLock is an exclusive advisory lock on a file.
type FileLock struct {
	path string
	file *os.File
}

// AcquireFileLock blocks until the exclusive lock on path is held.
func AcquireFileLock(path string) (*FileLock, error) {
	lockFile, openError := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFilePermissionsConstant)
	if openError != nil {
		return nil, failures.NewRepositoryError(openError, lockAcquireFailureTemplateConstant, path)
	}
	if lockError := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); lockError != nil {
		return nil, failures.NewRepositoryError(multierr.Append(lockError, lockFile.Close()), lockAcquireFailureTemplateConstant, path)
	}
	return &FileLock{path: path, file: lockFile}, nil
}

// Release unlocks and closes the lock file. Releasing twice is a no-op.
func (lock *FileLock) Release() error {
	if lock == nil || lock.file == nil {
		return nil
	}
	releaseError := multierr.Append(unix.Flock(int(lock.file.Fd()), unix.LOCK_UN), lock.file.Close())
	lock.file = nil
	if releaseError != nil {
		return failures.NewRepositoryError(releaseError, lockReleaseFailureTemplateConstant, lock.path)
	}
	return nil
}
