package filesystem

import (
	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/pathtype"
)

// LinkHandling selects whether a symbolic link in the final position of a
// path is followed. Links in any other position are always followed.
type LinkHandling int

const (
	FollowLinks LinkHandling = iota
	NoFollowLinks
)

func (l LinkHandling) String() string {
	if l == NoFollowLinks {
		return "nofollow"
	}
	return "follow"
}

// entry is the result of a lookup: the directory holding the final name, the
// name itself and the entry bound to it. node is nil when the name does not
// exist in parent, which is how create operations find their insertion point.
type entry struct {
	parent *Node
	name   pathtype.Name
	node   *Node
}

// entryOf describes an existing node reached through "." or ".." or an empty
// name list
func entryOf(node *Node) entry {
	parent := node.Parent()
	if parent == nil {
		parent = node
	}
	return entry{parent: parent, name: node.Name(), node: node}
}

// lookup resolves p against its root, or against the working directory when
// p is relative.
func (fs *FileSystem) lookup(p Path, mode LinkHandling) (entry, error) {
	base := fs.workingDir
	if p.IsAbsolute() {
		root, err := fs.rootDir(p.root)
		if err != nil {
			return entry{}, err
		}
		base = root
	}
	var links int
	return fs.lookupNames(base, p.lookupNames(), mode, &links)
}

func (fs *FileSystem) rootDir(root string) (*Node, error) {
	node, ok := fs.roots.Get(fs.pathType.RootName(root))
	if !ok {
		return nil, errors.Wrapf(jimfs.ErrNoSuchRoot, "%s", root)
	}
	return node, nil
}

// lookupNames walks names starting at dir. links counts every symbolic link
// followed in the whole resolution, including inside link targets.
func (fs *FileSystem) lookupNames(dir *Node, names []pathtype.Name, mode LinkHandling, links *int) (entry, error) {
	if len(names) == 0 {
		return entryOf(dir), nil
	}

	for i, name := range names {
		last := i == len(names)-1

		var next *Node
		switch {
		case name.IsSelf():
			next = dir
		case name.IsParent():
			if next = dir.Parent(); next == nil {
				// ".." of a root is the root itself
				next = dir
			}
		default:
			child, ok := dir.GetChild(name)
			if !ok {
				if last {
					return entry{parent: dir, name: name}, nil
				}
				return entry{}, fs.notFound(dir, name)
			}
			next = child
		}

		if last {
			if next.IsSymlink() && mode == FollowLinks {
				return fs.followLink(dir, next, links)
			}
			if name.IsSelf() || name.IsParent() {
				return entryOf(next), nil
			}
			return entry{parent: dir, name: name, node: next}, nil
		}

		if next.IsSymlink() {
			target, err := fs.followLink(dir, next, links)
			if err != nil {
				return entry{}, err
			}
			if target.node == nil {
				return entry{}, fs.notFound(target.parent, target.name)
			}
			next = target.node
		}
		if !next.IsDir() {
			return entry{}, errors.Wrapf(jimfs.ErrNotADirectory, "%s", fs.describe(next))
		}
		dir = next
	}
	// unreachable: the final name always returns above
	return entry{}, errors.AssertionFailedf("lookup of %d names fell through", len(names))
}

// followLink resolves the target of link, which lives in linkParent. A
// relative target is resolved against linkParent and an absolute one against
// its own root. At most MaxSymlinkDepth links are followed per resolution.
func (fs *FileSystem) followLink(linkParent, link *Node, links *int) (entry, error) {
	if *links >= fs.cfg.MaxSymlinkDepth {
		return entry{}, errors.Wrapf(jimfs.ErrLinkCycle, "after %d links at %s", *links, fs.describe(link))
	}
	*links++
	res, err := fs.pathType.ParsePath(link.Target())
	if err != nil {
		return entry{}, err
	}
	base := linkParent
	if res.IsAbsolute() {
		if base, err = fs.rootDir(res.Root); err != nil {
			return entry{}, err
		}
	}
	return fs.lookupNames(base, newPath(fs.pathType, res.Root, res.Names).lookupNames(), FollowLinks, links)
}

// notFound reports name missing from dir, identifying dir by its current path
func (fs *FileSystem) notFound(dir *Node, name pathtype.Name) error {
	return errors.Wrapf(jimfs.ErrNotFound, "%q in %s", name.String(), fs.describe(dir))
}

// describe renders a node's path for error messages
func (fs *FileSystem) describe(node *Node) string {
	p, err := fs.PathOf(node)
	if err != nil {
		return node.Name().String()
	}
	return p.String()
}
