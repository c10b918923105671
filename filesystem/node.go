package filesystem

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/pathtype"
)

// Node is a directory entry: a name inside a parent directory bound to an
// [Inode]. A directory inode has exactly one Node; a regular file or symbolic
// link has one Node per hard link.
type Node struct {
	name   pathtype.Name // Protected by mu
	parent *Node         // Non-owning; nil for roots and detached entries. Protected by mu
	root   bool          // Immutable
	mu     sync.RWMutex  // Protects the fields above
	*Inode
}

// NewNode creates a detached entry for inode.
//
// NOTE: the inode's hard links are only updated once the entry is linked into
// a directory with [Node.AddChild]
func NewNode(name pathtype.Name, inode *Inode) *Node {
	return &Node{
		name:  name,
		Inode: inode,
	}
}

// newRootNode creates the entry of a root directory. Roots are their own
// parent for ".." purposes and count as one link.
func newRootNode(name pathtype.Name, inode *Inode) (*Node, error) {
	node := &Node{name: name, root: true, Inode: inode}
	if err := inode.addHardLink(node); err != nil {
		return nil, err
	}
	return node, nil
}

// Name returns the entry's current name
func (n *Node) Name() pathtype.Name {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Parent returns the containing directory entry, or nil for a root or a
// detached entry
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

func (n *Node) IsRoot() bool {
	return n.root
}

// Detached reports whether the entry has been unlinked from its parent
func (n *Node) Detached() bool {
	if n.root {
		return false
	}
	return n.Parent() == nil
}

// Path returns the root name and the names leading from it to this entry.
//
// Returns an error if the entry or an ancestor is detached or deleted
func (n *Node) Path() (root pathtype.Name, names []pathtype.Name, err error) {
	for cur := n; ; {
		cur.mu.RLock()
		name, parent, isRoot := cur.name, cur.parent, cur.root
		cur.mu.RUnlock()
		if isRoot {
			root = name
			break
		}
		if parent == nil {
			return pathtype.Name{}, nil, errors.Wrapf(jimfs.ErrNotFound, "detached entry: %s", name)
		}
		names = append(names, name)
		cur = parent
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return root, names, nil
}

// GetChild returns the entry stored under name's canonical form
func (n *Node) GetChild(name pathtype.Name) (child *Node, ok bool) {
	if n.dir == nil {
		return nil, false
	}
	n.dir.mu.RLock()
	defer n.dir.mu.RUnlock()
	return n.dir.get(name.Canonical())
}

// ChildCount returns the number of entries of a directory, excluding "." and ".."
func (n *Node) ChildCount() int {
	if n.dir == nil {
		return 0
	}
	n.dir.mu.RLock()
	defer n.dir.mu.RUnlock()
	return n.dir.len()
}

// AddChild links child into the directory under child's name and sets the
// child's parent to this node. The name must not already be taken and the
// directory must not have been removed.
func (n *Node) AddChild(child *Node) error {
	if n.dir == nil {
		return jimfs.ErrNotADirectory
	}
	n.dir.mu.Lock()
	defer n.dir.mu.Unlock()

	child.mu.Lock()
	defer child.mu.Unlock()
	return n.addChildLocked(child)
}

// Caller must hold n.dir.mu and child.mu.
func (n *Node) addChildLocked(child *Node) error {
	if n.IsDel() {
		return errors.Wrap(jimfs.ErrNotFound, "directory removed")
	}
	key := child.name.Canonical()
	if _, exists := n.dir.get(key); exists {
		return errors.Wrapf(jimfs.ErrAlreadyExists, "%s", child.name)
	}
	if err := child.Inode.addHardLink(child); err != nil {
		return err
	}
	n.dir.entries.Put(key, child)
	child.parent = n
	n.Inode.touch()
	return nil
}

// RemoveChild unlinks the entry stored under name and returns it detached.
// A directory entry is only removed when empty; the emptiness check and the
// unlink happen under both directory locks so no entry can be added to it
// concurrently.
func (n *Node) RemoveChild(name pathtype.Name) (*Node, error) {
	if n.dir == nil {
		return nil, jimfs.ErrNotADirectory
	}
	key := name.Canonical()
	for {
		child, ok := n.GetChild(name)
		if !ok {
			return nil, errors.Wrapf(jimfs.ErrNotFound, "%s", name)
		}

		unlock := lockDirs(n, child)
		if cur, ok := n.dir.get(key); !ok || cur != child {
			// replaced while the locks were being acquired
			unlock()
			continue
		}
		if child.dir != nil && child.dir.len() > 0 {
			unlock()
			return nil, errors.Wrapf(jimfs.ErrNotEmpty, "%s", child.Name())
		}
		n.dir.entries.Delete(key)
		child.mu.Lock()
		child.parent = nil
		child.mu.Unlock()
		child.Inode.removeHardLink(child)
		unlock()

		n.Inode.touch()
		return child, nil
	}
}
