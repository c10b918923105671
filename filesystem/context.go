package filesystem

import (
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/internal/util"
)

// NodeContext holds an open reference on an [Inode] so its content outlives
// the removal of its last hard link until the context is closed. Calling
// NodeContext.Close() unwinds all cleanup callbacks in reverse order.
//
// NOTE: NodeContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type NodeContext struct {
	inode    *Inode
	closeFns []func()
}

// NewNodeContext acquires an open reference on inode
func NewNodeContext(inode *Inode) *NodeContext {
	inode.Acquire()
	ctx := &NodeContext{inode: inode}
	ctx.AddClose(inode.Release)
	return ctx
}

// GetNodeCtx returns a NodeContext for a live inode with its Close() wired up.
// If the inode does not exist, returns nil
func (fs *FileSystem) GetNodeCtx(id uint64) *NodeContext {
	logger := util.GetLogger("GetNodeCtx")
	logger.Trace().Uint64("ino", id).Msg("GetNodeCtx called")

	if inode, ok := fs.inodes.Load(id); ok {
		return NewNodeContext(inode)
	}
	logger.Debug().Uint64("ino", id).Msg("No inode found")
	return nil
}

// OpenCtx resolves p, following links, and returns a NodeContext on the
// resulting inode.
//
// Caller is responsible for closing the context when done `defer ctx.Close()`.
func (fs *FileSystem) OpenCtx(p string) (*NodeContext, error) {
	node, err := fs.resolve("open", p, FollowLinks)
	if err != nil {
		return nil, err
	}
	return NewNodeContext(node.Inode), nil
}

func (ctx *NodeContext) ID() uint64 {
	return ctx.inode.ID()
}

func (ctx *NodeContext) Type() jimfs.NodeType {
	return ctx.inode.Type()
}

// Attr returns a snapshot of the fuse attributes.
func (ctx *NodeContext) Attr() fuse.Attr {
	return ctx.inode.CopyAttr()
}

// UpdateAttr runs fn under the Inode write-lock for atomic modifications.
// The id and link count are restored afterwards since the filesystem owns them.
func (ctx *NodeContext) UpdateAttr(fn func(attr *fuse.Attr)) {
	ctx.inode.mu.Lock()
	defer ctx.inode.mu.Unlock()
	ino, nlink := ctx.inode.fuseAttr.Ino, ctx.inode.fuseAttr.Nlink
	fn(ctx.inode.fuseAttr)
	ctx.inode.fuseAttr.Ino, ctx.inode.fuseAttr.Nlink = ino, nlink
}

// HardLinkCount returns the number of hard links (Nlink).
func (ctx *NodeContext) HardLinkCount() uint32 {
	return ctx.inode.LinkCount()
}

// IsDel reports whether the last hard link has been removed
func (ctx *NodeContext) IsDel() bool {
	return ctx.inode.IsDel()
}

// Content returns the content store of a regular file, nil otherwise
func (ctx *NodeContext) Content() jimfs.ContentStore {
	return ctx.inode.Content()
}

// Target returns the stored target of a symbolic link
func (ctx *NodeContext) Target() string {
	return ctx.inode.Target()
}

// EntryNames returns a sorted snapshot of a directory's entry names
func (ctx *NodeContext) EntryNames() []string {
	return ctx.inode.EntryNames()
}

// AddClose pushes a cleanup callback onto the end of the stack.
func (ctx *NodeContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order.
// Safe to call even if ctx is nil; it is a no-op in that case, so you can
// `defer ctx.Close()` unconditionally.
// Make sure to call this when you're done with the context!
//
// Example:
//
//	ctx := fs.GetNodeCtx(id)
//	defer ctx.Close()
func (ctx *NodeContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil
}
