// Package content provides ContentStore implementations for regular files.
package content

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
)

// ErrReleased is returned by a Memory store after Close
var ErrReleased = errors.New("content released")

// Memory is a growable in-memory byte store. It is safe for concurrent use.
type Memory struct {
	mu struct {
		sync.RWMutex
		data     []byte
		released bool
	}
}

var (
	_ jimfs.ContentStore = (*Memory)(nil)
	_ io.Closer          = (*Memory)(nil)
)

// NewMemory returns a store holding a copy of data
func NewMemory(data []byte) *Memory {
	m := &Memory{}
	m.mu.data = append([]byte(nil), data...)
	return m
}

// Read copies bytes at offset into p. It returns io.EOF once offset reaches
// the end of the data.
func (m *Memory) Read(_ context.Context, offset int64, p []byte) (int, error) {
	if offset < 0 {
		return 0, errors.Wrapf(jimfs.ErrArgument, "negative offset %d", offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.mu.released {
		return 0, ErrReleased
	}
	if offset >= int64(len(m.mu.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.mu.data[offset:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write stores p at offset, zero filling any gap past the current end.
func (m *Memory) Write(_ context.Context, offset int64, p []byte) (int, error) {
	if offset < 0 {
		return 0, errors.Wrapf(jimfs.ErrArgument, "negative offset %d", offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mu.released {
		return 0, ErrReleased
	}
	end := offset + int64(len(p))
	if end > int64(len(m.mu.data)) {
		m.grow(end)
	}
	return copy(m.mu.data[offset:], p), nil
}

// Truncate resizes the data to size, zero filling when growing
func (m *Memory) Truncate(_ context.Context, size int64) error {
	if size < 0 {
		return errors.Wrapf(jimfs.ErrArgument, "negative size %d", size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mu.released {
		return ErrReleased
	}
	if size <= int64(len(m.mu.data)) {
		clear(m.mu.data[size:])
		m.mu.data = m.mu.data[:size]
		return nil
	}
	m.grow(size)
	return nil
}

func (m *Memory) Size(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.mu.released {
		return 0, ErrReleased
	}
	return int64(len(m.mu.data)), nil
}

// Bytes returns a copy of the current data
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.mu.data...)
}

// Close drops the data. Later calls fail with ErrReleased.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mu.data = nil
	m.mu.released = true
	return nil
}

// grow extends the data to size bytes.
// Caller must hold m.mu.Lock().
func (m *Memory) grow(size int64) {
	if size <= int64(cap(m.mu.data)) {
		m.mu.data = m.mu.data[:size]
		return
	}
	data := make([]byte, size, max(size, 2*int64(cap(m.mu.data))))
	copy(data, m.mu.data)
	m.mu.data = data
}
