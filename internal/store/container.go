// Package store implements the page-addressed storage kernel: a byte
// container, a prioritized task scheduler, a single worker that owns the
// container, and the Page/Book abstractions built on top of it.
//
// The container is the lowest layer. It never interprets the bytes it
// stores — that's the worker's (and above it, the Page/Book/B-tree's) job.
package store

import (
	"fmt"
	"os"
)

// Container is an addressable byte sequence backing the store. A read past
// the current length yields zeros rather than failing; a write past the
// current length zero-fills the gap first. Implementations must be durable
// against process crash immediately after a call returns (not against
// power loss).
type Container interface {
	// Read returns exactly length bytes starting at off. Bytes past the
	// container's current length are zero.
	Read(off int64, length int) ([]byte, error)

	// Write stores bytes at off, zero-filling any gap between the
	// container's current length and off.
	Write(off int64, bytes []byte) error

	// Append is equivalent to Write(Len(), bytes).
	Append(bytes []byte) error

	// Len returns the container's current length.
	Len() (int64, error)
}

// memoryContainer is an in-memory Container backed by a growable byte
// slice. Used for tests and for callers who don't need persistence.
type memoryContainer struct {
	buf []byte
}

// NewMemoryContainer creates an empty in-memory Container.
func NewMemoryContainer() Container {
	return &memoryContainer{}
}

func (m *memoryContainer) Read(off int64, length int) ([]byte, error) {
	out := make([]byte, length)

	if off >= int64(len(m.buf)) || length == 0 {
		return out, nil
	}

	end := off + int64(length)
	if end > int64(len(m.buf)) {
		end = int64(len(m.buf))
	}

	copy(out, m.buf[off:end])

	return out, nil
}

func (m *memoryContainer) Write(off int64, bytes []byte) error {
	m.growTo(off)

	end := off + int64(len(bytes))
	if end > int64(len(m.buf)) {
		m.buf = append(m.buf, make([]byte, end-int64(len(m.buf)))...)
	}

	copy(m.buf[off:end], bytes)

	return nil
}

func (m *memoryContainer) Append(bytes []byte) error {
	return m.Write(int64(len(m.buf)), bytes)
}

func (m *memoryContainer) Len() (int64, error) {
	return int64(len(m.buf)), nil
}

func (m *memoryContainer) growTo(off int64) {
	if off > int64(len(m.buf)) {
		m.buf = append(m.buf, make([]byte, off-int64(len(m.buf)))...)
	}
}

// fileContainer is a Container backed by a regular file, guarded by an
// advisory cross-process lock (see lock.go) so a second process opening
// the same path fails fast instead of racing the first.
type fileContainer struct {
	file *os.File
	lock lock
}

// OpenFileContainer opens (creating if necessary) a file-backed Container
// at path and acquires an advisory exclusive lock on it.
func OpenFileContainer(path string) (Container, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open container %q: %w", path, err)
	}

	l := newPlatformLock(f.Fd())

	if err := l.Lock(); err != nil {
		f.Close()
		return nil, fmt.Errorf("store: lock container %q: %w", path, err)
	}

	return &fileContainer{file: f, lock: l}, nil
}

// Close releases the container's lock and closes the underlying file.
func (c *fileContainer) Close() error {
	c.lock.Unlock()
	return c.file.Close()
}

func (c *fileContainer) Read(off int64, length int) ([]byte, error) {
	buf := make([]byte, length)

	n, err := c.file.ReadAt(buf, off)
	if err != nil && n < length {
		// Short/EOF reads past the end of the file are zero-filled, not
		// an error: the container contract treats "past EOF" as zeros.
		for i := n; i < length; i++ {
			buf[i] = 0
		}
	}

	return buf, nil
}

func (c *fileContainer) Write(off int64, bytes []byte) error {
	length, err := c.Len()
	if err != nil {
		return err
	}

	if off > length {
		if err := c.zeroFill(length, off-length); err != nil {
			return fmt.Errorf("store: zero-fill container: %w", err)
		}
	}

	if _, err := c.file.WriteAt(bytes, off); err != nil {
		return fmt.Errorf("store: write container at 0x%x: %w", off, err)
	}

	return c.file.Sync()
}

func (c *fileContainer) Append(bytes []byte) error {
	length, err := c.Len()
	if err != nil {
		return err
	}

	return c.Write(length, bytes)
}

func (c *fileContainer) Len() (int64, error) {
	info, err := c.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("store: stat container: %w", err)
	}

	return info.Size(), nil
}

func (c *fileContainer) zeroFill(off, n int64) error {
	const chunk = 4096

	zeros := make([]byte, chunk)

	for n > 0 {
		w := n
		if w > chunk {
			w = chunk
		}

		if _, err := c.file.WriteAt(zeros[:w], off); err != nil {
			return err
		}

		off += w
		n -= w
	}

	return nil
}
