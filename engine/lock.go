package engine

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileLock holds an advisory, exclusive, non-blocking lock on a companion
// file next to the state path, so a second instance pointed at the same
// --state file fails fast instead of racing the first on snapshot writes
// (spec.md §5 "advisory lock on startup; fails with AlreadyRunning").
type fileLock struct {
	f *os.File
}

// acquireFileLock opens path (creating it if necessary) and takes an
// exclusive advisory lock via flock(2). It returns ErrAlreadyRunning if the
// lock is already held.
func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrAlreadyRunning
		}
		return nil, err
	}
	return &fileLock{f: f}, nil
}

// Release drops the lock and closes the underlying file descriptor.
func (l *fileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}

// lockPath derives the advisory lock's companion filename from the state
// file path, so it never collides with the state file itself mid-write.
func lockPath(statePath string) string {
	return statePath + ".lock"
}
