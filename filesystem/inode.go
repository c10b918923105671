package filesystem

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/internal/util"
)

// Inode is a single file: a directory, a regular file or a symbolic link.
// Every hard link to a file is a separate [Node] sharing the same Inode.
type Inode struct {
	id   uint64 // process-unique, never reused
	kind jimfs.NodeType
	// Low-level fuse wire protocol attributes; Only access directly if
	// handling locks manually
	fuseAttr *fuse.Attr
	hLinks   []*Node            // Directory entries referencing this inode. Protected by mu
	content  jimfs.ContentStore // Regular files only
	target   string             // Symbolic links only; stored unresolved
	dir      *directory         // Directories only
	refs     atomic.Int32       // Open references held outside the tree
	isDel    atomic.Bool        // Set once the last hard link is removed
	release  sync.Once
	mu       sync.RWMutex // Protects the fields above marked as such and fuseAttr
}

var _ jimfs.NodeInfo = (*Inode)(nil)

func newInode(id uint64, kind jimfs.NodeType) *Inode {
	attr := newDefaultAttr(id)
	ino := &Inode{
		id:       id,
		kind:     kind,
		fuseAttr: attr,
		hLinks:   make([]*Node, 0, 1), // 1 init capacity since most inodes expected to have 1
	}
	switch kind {
	case jimfs.DirectoryType:
		attr.Mode = uint32(syscall.S_IFDIR | 0o755)
		ino.dir = newDirectory()
	case jimfs.SymlinkType:
		attr.Mode = uint32(syscall.S_IFLNK | 0o777)
	default:
		attr.Mode = uint32(syscall.S_IFREG | 0o644)
	}
	return ino
}

// ID returns the inode's unique identifier
func (n *Inode) ID() uint64 {
	return n.id
}

func (n *Inode) Type() jimfs.NodeType {
	return n.kind
}

func (n *Inode) IsDir() bool {
	return n.kind == jimfs.DirectoryType
}

func (n *Inode) IsRegular() bool {
	return n.kind == jimfs.RegularFileType
}

func (n *Inode) IsSymlink() bool {
	return n.kind == jimfs.SymlinkType
}

// IsDel reports whether the inode has lost its last hard link
func (n *Inode) IsDel() bool {
	return n.isDel.Load()
}

// LinkCount returns the number of directory entries referencing the inode
func (n *Inode) LinkCount() uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fuseAttr.Nlink
}

// Target returns the literal target of a symbolic link
func (n *Inode) Target() string {
	return n.target
}

// Content returns the content store of a regular file, nil otherwise
func (n *Inode) Content() jimfs.ContentStore {
	return n.content
}

// CopyAttr returns a thread-safe copy of the inode's attributes
func (n *Inode) CopyAttr() fuse.Attr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	attr := *n.fuseAttr
	if n.content != nil {
		if size, err := n.content.Size(context.Background()); err == nil && size >= 0 {
			attr.Size = uint64(size)
		}
	}
	return attr
}

// addHardLink registers node as a new hard link. It fails once the inode has
// been destroyed, so a racing link and unlink never resurrect a dead file.
func (n *Inode) addHardLink(node *Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.isDel.Load() {
		return jimfs.ErrNotFound
	}
	n.hLinks = append(n.hLinks, node)
	n.fuseAttr.Nlink = uint32(len(n.hLinks))
	n.touchLocked(false)
	return nil
}

// removeHardLink drops node from the hard links and returns the remaining
// link count. At zero the inode is marked deleted.
func (n *Inode) removeHardLink(node *Node) uint32 {
	n.mu.Lock()
	for i, l := range n.hLinks {
		if l == node {
			n.hLinks = append(n.hLinks[:i], n.hLinks[i+1:]...)
			break
		}
	}
	n.fuseAttr.Nlink = uint32(len(n.hLinks))
	n.touchLocked(false)
	remaining := n.fuseAttr.Nlink
	if remaining == 0 {
		n.isDel.Store(true)
	}
	n.mu.Unlock()

	if remaining == 0 && n.refs.Load() == 0 {
		n.releaseContent()
	}
	return remaining
}

// EntryNames returns a snapshot of a directory's entry display names ordered
// by canonical name, or nil for other file types
func (n *Inode) EntryNames() []string {
	if n.dir == nil {
		return nil
	}
	return n.dir.snapshotNames()
}

// HardLinks returns the directory entries currently referencing the inode
func (n *Inode) HardLinks() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	links := make([]*Node, len(n.hLinks))
	copy(links, n.hLinks)
	return links
}

// Acquire takes an open reference that keeps the content alive after the
// last hard link is removed. Every Acquire must be paired with Release.
func (n *Inode) Acquire() {
	n.refs.Add(1)
}

// Release drops an open reference taken by Acquire
func (n *Inode) Release() {
	if n.refs.Add(-1) == 0 && n.isDel.Load() {
		n.releaseContent()
	}
}

func (n *Inode) releaseContent() {
	n.release.Do(func() {
		c, ok := n.content.(io.Closer)
		if !ok {
			return
		}
		if err := c.Close(); err != nil {
			logger := util.GetLogger("Inode.releaseContent")
			logger.Warn().Err(err).Uint64("ino", n.id).Msg("Failed to release content")
		}
	})
}

// touch updates the modification and change times
func (n *Inode) touch() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.touchLocked(true)
}

// touchLocked sets ctime, and mtime too when modified is set.
// Caller must hold n.mu.Lock().
func (n *Inode) touchLocked(modified bool) {
	now := time.Now()
	sec, nsec := uint64(now.Unix()), uint32(now.Nanosecond())
	n.fuseAttr.Ctime, n.fuseAttr.Ctimensec = sec, nsec
	if modified {
		n.fuseAttr.Mtime, n.fuseAttr.Mtimensec = sec, nsec
	}
}

// newDefaultAttr returns the default attributes for a new inode
// NOTE: Make sure to set the Mode field appropriately
func newDefaultAttr(ino uint64) *fuse.Attr {
	now := time.Now()
	return &fuse.Attr{
		Ino: ino,
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
		Atime:     uint64(now.Unix()),
		Mtime:     uint64(now.Unix()),
		Ctime:     uint64(now.Unix()),
		Atimensec: uint32(now.Nanosecond()),
		Mtimensec: uint32(now.Nanosecond()),
		Ctimensec: uint32(now.Nanosecond()),
		Blksize:   4096,
	}
}
