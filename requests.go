package jimfs

import "time"

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path  string
	Type  NodeCreateRequestType
	UUID  string    // Optional UUID to enable linking at request time
	Mtime time.Time // Last Modified at (zero keeps the creation time)
	Ctime time.Time // Changed at (zero keeps the creation time)
	Perms uint32    // Permission bits, 0 keeps the default for the type
}

// Node returns the common request fields
func (r *NodeRequest) Node() *NodeRequest {
	return r
}

// NodeCreateRequest is implemented by every concrete request type
type NodeCreateRequest interface {
	Node() *NodeRequest
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir",
// SymlinkNodeType "symlink" and HardlinkNodeType "hardlink"
type NodeCreateRequestType string

const (
	FileNodeType     NodeCreateRequestType = "file"
	DirNodeType      NodeCreateRequestType = "dir"
	SymlinkNodeType  NodeCreateRequestType = "symlink"
	HardlinkNodeType NodeCreateRequestType = "hardlink"
)

type FileCreateRequest struct {
	NodeRequest
	Sources []ContentSource
}

type DirCreateRequest struct {
	NodeRequest
}

type SymlinkCreateRequest struct {
	NodeRequest
	Target string // literal link target, stored unresolved
}

// HardlinkCreateRequest links Path to an existing file identified either by
// TargetPath or by the UUID of an earlier request in the same batch.
type HardlinkCreateRequest struct {
	NodeRequest
	TargetPath string
	TargetUUID string
}

// ContentSource is a container for concrete content providers that can be
// passed to the core filesystem
type ContentSource struct {
	ContentProvider
	Priority int // Lower number = higher priority
}
