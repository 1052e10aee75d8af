package store

import (
	"fmt"
	"runtime"
	"syscall"
)

// lock guards a Container against a second process opening the same
// backing file. Unlike a typical reader/writer lock, pagekernel's Non-goals
// already forbid concurrent writers to the same container (spec.md §1), so
// this is a plain exclusive lock rather than the reader/writer lock a
// multi-reader store would need.
type lock interface {
	Lock() error
	Unlock()
}

// In-memory containers have no cross-process identity to protect (there is
// no file another process could open), so NewMemoryContainer never
// constructs a lock at all.

// newPlatformLock returns a lock implementation for the detected platform.
func newPlatformLock(fd uintptr) lock {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		panic(fmt.Sprintf("store: file lock does not support %s", runtime.GOOS))
	}

	return &flockLock{fd: int(fd)}
}

// flockLock is an advisory, exclusive, cross-process lock implemented with
// flock(2). It is advisory only: a process that doesn't call Lock is not
// prevented from reading or writing the file.
type flockLock struct {
	fd int
}

func (l *flockLock) Lock() error {
	if err := syscall.Flock(l.fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return fmt.Errorf("store: flock LOCK_EX: %w", err)
	}

	return nil
}

func (l *flockLock) Unlock() {
	if err := syscall.Flock(l.fd, syscall.LOCK_UN); err != nil {
		panic(fmt.Sprintf("store: flock LOCK_UN failed: %s", err))
	}
}
