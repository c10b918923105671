// Package jimfs contains the core domain types and interfaces for the jimfs
// in-memory filesystem engine.
package jimfs

import (
	"context"
)

// ContentStore holds the bytes of a single regular file. The filesystem never
// inspects the bytes; it only creates stores alongside new files and releases
// them (via io.Closer, if implemented) once the owning file is destroyed.
// Instances are 1:1 with the underlying regular file and shared by all of its
// hard links.
type ContentStore interface {
	// Reads up to len(p) bytes into p starting at offset
	// Returns number of bytes read and any error
	Read(ctx context.Context, offset int64, p []byte) (int, error)

	// Writes len(p) bytes from p to the file starting at offset
	// Returns number of bytes written and any error
	Write(ctx context.Context, offset int64, p []byte) (int, error)

	// Truncate changes the size of the content, zero filling on growth
	Truncate(ctx context.Context, size int64) error

	// Returns the size of the content
	Size(ctx context.Context) (int64, error)
}

// ContentProvider is a factory for concrete [ContentStore] implementations
// generated from a request's source config.
type ContentProvider interface {
	Content() (ContentStore, error)
}

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// ID returns the process-unique file identifier
	ID() uint64

	// Type returns the node's variant
	Type() NodeType

	// LinkCount returns the number of directory entries referencing the file
	LinkCount() uint32

	// IsDel returns true once the file has been destroyed
	IsDel() bool
}

// SourceProvider builds a [ContentProvider] from the raw JSON config of one
// request source. Providers are registered by source "type".
type SourceProvider interface {
	NewSource(raw []byte) (ContentProvider, error)
}
