package filesystem

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/pathtype"
)

// Resolve returns the entry at p. With FollowLinks a final symbolic link is
// replaced by the entry it points to.
func (fs *FileSystem) Resolve(p string, mode LinkHandling) (node *Node, err error) {
	defer fs.observe("resolve", p, time.Now(), &err)
	return fs.resolve("resolve", p, mode)
}

func (fs *FileSystem) resolve(op, p string, mode LinkHandling) (*Node, error) {
	path, err := fs.GetPath(p)
	if err != nil {
		return nil, pathErr(op, p, err)
	}
	e, err := fs.lookup(path, mode)
	if err != nil {
		return nil, pathErr(op, p, err)
	}
	if e.node == nil {
		return nil, pathErr(op, p, fs.notFound(e.parent, e.name))
	}
	return e.node, nil
}

// Exists reports whether p resolves to an entry
func (fs *FileSystem) Exists(p string, mode LinkHandling) bool {
	_, err := fs.resolve("stat", p, mode)
	return err == nil
}

// CreateDirectory creates an empty directory at p. The parent must exist and
// the name must be free.
func (fs *FileSystem) CreateDirectory(p string) (node *Node, err error) {
	defer fs.observe("create_directory", p, time.Now(), &err)
	return fs.create("mkdir", p, func() *Inode {
		return fs.newInode(jimfs.DirectoryType)
	})
}

// CreateDirectories creates the directory at p along with any missing
// ancestors, like mkdir -p. An existing directory at p is returned as is.
func (fs *FileSystem) CreateDirectories(p string) (node *Node, err error) {
	defer fs.observe("create_directories", p, time.Now(), &err)

	path, err := fs.GetPath(p)
	if err != nil {
		return nil, pathErr("mkdir", p, err)
	}
	node, err = fs.createDirectories(path)
	if err != nil {
		return nil, pathErr("mkdir", p, err)
	}
	return node, nil
}

// createDirectories never creates anything through a final symbolic link: a
// link to an existing directory satisfies the request and any other link is
// an existing non-directory.
func (fs *FileSystem) createDirectories(path Path) (*Node, error) {
	e, err := fs.lookup(path, NoFollowLinks)
	switch {
	case err == nil && e.node != nil:
		return fs.existingDirectory(path, e.node)
	case err == nil:
		// parent exists, fall through to a single create
	case errors.Is(err, jimfs.ErrNotFound):
		parent, ok := path.Parent()
		if !ok {
			return nil, err
		}
		if _, err := fs.createDirectories(parent); err != nil {
			return nil, err
		}
		if e, err = fs.lookup(path, NoFollowLinks); err != nil {
			return nil, err
		}
		if e.node != nil {
			return fs.createDirectories(path)
		}
	default:
		return nil, err
	}

	node := NewNode(e.name, fs.newInode(jimfs.DirectoryType))
	if err := e.parent.AddChild(node); err != nil {
		if errors.Is(err, jimfs.ErrAlreadyExists) {
			// lost a race with a concurrent creator
			return fs.createDirectories(path)
		}
		return nil, err
	}
	fs.register(node.Inode)
	return node, nil
}

// existingDirectory returns the directory node occupies, following it when it
// is a symbolic link
func (fs *FileSystem) existingDirectory(path Path, node *Node) (*Node, error) {
	if node.IsSymlink() {
		target, err := fs.lookup(path, FollowLinks)
		if err != nil && !errors.Is(err, jimfs.ErrNotFound) {
			return nil, err
		}
		if err != nil || target.node == nil {
			return nil, errors.Wrapf(jimfs.ErrAlreadyExists, "%s is a dangling symbolic link", path)
		}
		node = target.node
	}
	if !node.IsDir() {
		return nil, errors.Wrapf(jimfs.ErrAlreadyExists, "%s is not a directory", path)
	}
	return node, nil
}

// CreateFile creates a regular file at p backed by store, or by a new store
// from the content factory when store is nil.
func (fs *FileSystem) CreateFile(p string, store jimfs.ContentStore) (node *Node, err error) {
	defer fs.observe("create_file", p, time.Now(), &err)
	return fs.create("create", p, func() *Inode {
		inode := fs.newInode(jimfs.RegularFileType)
		inode.content = store
		if inode.content == nil {
			inode.content = fs.newContent()
		}
		return inode
	})
}

// CreateSymbolicLink creates a symbolic link at p. target is stored as given
// and is only resolved when the link is followed.
func (fs *FileSystem) CreateSymbolicLink(p, target string) (node *Node, err error) {
	defer fs.observe("create_symlink", p, time.Now(), &err)

	if !fs.HasFeature(jimfs.FeatureSymbolicLinks) {
		return nil, &os.LinkError{Op: "symlink", Old: target, New: p, Err: jimfs.ErrUnsupported}
	}
	if _, err := fs.pathType.ParsePath(target); err != nil {
		return nil, &os.LinkError{Op: "symlink", Old: target, New: p, Err: err}
	}
	return fs.create("symlink", p, func() *Inode {
		inode := fs.newInode(jimfs.SymlinkType)
		inode.target = target
		return inode
	})
}

// create inserts a new inode under the final name of p, which must not exist.
// A final symbolic link is not followed so an existing link counts as taken.
func (fs *FileSystem) create(op, p string, newInode func() *Inode) (*Node, error) {
	path, err := fs.GetPath(p)
	if err != nil {
		return nil, pathErr(op, p, err)
	}
	e, err := fs.lookup(path, NoFollowLinks)
	if err != nil {
		return nil, pathErr(op, p, err)
	}
	if e.node != nil {
		return nil, pathErr(op, p, jimfs.ErrAlreadyExists)
	}

	node := NewNode(e.name, newInode())
	if err := e.parent.AddChild(node); err != nil {
		return nil, pathErr(op, p, err)
	}
	fs.register(node.Inode)
	return node, nil
}

// CreateHardLink adds a new entry at link for the file at existing. Symbolic
// links in existing are followed. Directories cannot be linked.
func (fs *FileSystem) CreateHardLink(link, existing string) (node *Node, err error) {
	defer fs.observe("create_link", link, time.Now(), &err)

	linkErr := func(err error) error {
		return &os.LinkError{Op: "link", Old: existing, New: link, Err: err}
	}
	if !fs.HasFeature(jimfs.FeatureLinks) {
		return nil, linkErr(jimfs.ErrUnsupported)
	}

	existingPath, err := fs.GetPath(existing)
	if err != nil {
		return nil, linkErr(err)
	}
	target, err := fs.lookup(existingPath, FollowLinks)
	if err != nil {
		return nil, linkErr(err)
	}
	if target.node == nil {
		return nil, linkErr(fs.notFound(target.parent, target.name))
	}
	if target.node.IsDir() {
		return nil, linkErr(jimfs.ErrNotLinkable)
	}

	linkPath, err := fs.GetPath(link)
	if err != nil {
		return nil, linkErr(err)
	}
	e, err := fs.lookup(linkPath, NoFollowLinks)
	if err != nil {
		return nil, linkErr(err)
	}
	if e.node != nil {
		return nil, linkErr(jimfs.ErrAlreadyExists)
	}

	node = NewNode(e.name, target.node.Inode)
	if err := e.parent.AddChild(node); err != nil {
		return nil, linkErr(err)
	}
	return node, nil
}

// ReadSymbolicLink returns the stored target of the link at p
func (fs *FileSystem) ReadSymbolicLink(p string) (target string, err error) {
	defer fs.observe("readlink", p, time.Now(), &err)

	node, err := fs.resolve("readlink", p, NoFollowLinks)
	if err != nil {
		return "", err
	}
	if !node.IsSymlink() {
		return "", pathErr("readlink", p, errors.Wrap(jimfs.ErrArgument, "not a symbolic link"))
	}
	return node.Target(), nil
}

// Remove unlinks the entry at p without following a final symbolic link.
// Directories must be empty and roots cannot be removed. The inode is
// destroyed once its last hard link is gone.
func (fs *FileSystem) Remove(p string) (err error) {
	defer fs.observe("remove", p, time.Now(), &err)

	path, err := fs.GetPath(p)
	if err != nil {
		return pathErr("remove", p, err)
	}
	e, err := fs.lookup(path, NoFollowLinks)
	if err != nil {
		return pathErr("remove", p, err)
	}
	if e.node == nil {
		return pathErr("remove", p, fs.notFound(e.parent, e.name))
	}
	if e.node.IsRoot() {
		return pathErr("remove", p, errors.Wrap(jimfs.ErrArgument, "cannot remove a root directory"))
	}

	removed, err := e.parent.RemoveChild(e.name)
	if err != nil {
		return pathErr("remove", p, err)
	}
	fs.forget(removed.Inode)
	return nil
}

// Move renames the entry at src to dst without following final symbolic
// links. dst must not exist, except that renaming an entry onto itself is a
// no-op apart from adopting dst's display name. A directory cannot be moved
// into itself or one of its descendants.
func (fs *FileSystem) Move(src, dst string) (err error) {
	defer fs.observe("move", src, time.Now(), &err)

	moveErr := func(err error) error {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
	}

	srcPath, err := fs.GetPath(src)
	if err != nil {
		return moveErr(err)
	}
	dstPath, err := fs.GetPath(dst)
	if err != nil {
		return moveErr(err)
	}
	from, err := fs.lookup(srcPath, NoFollowLinks)
	if err != nil {
		return moveErr(err)
	}
	if from.node == nil {
		return moveErr(fs.notFound(from.parent, from.name))
	}
	if from.node.IsRoot() {
		return moveErr(errors.Wrap(jimfs.ErrArgument, "cannot move a root directory"))
	}
	to, err := fs.lookup(dstPath, NoFollowLinks)
	if err != nil {
		return moveErr(err)
	}
	if to.node != nil {
		if to.node == from.node {
			return fs.renameInPlace(from, to.name)
		}
		if to.node.Inode == from.node.Inode {
			// two hard links to the same file
			return nil
		}
		return moveErr(jimfs.ErrAlreadyExists)
	}

	if from.node.IsDir() {
		fs.renameMu.Lock()
		defer fs.renameMu.Unlock()
		for cur := to.parent; cur != nil; cur = cur.Parent() {
			if cur == from.node {
				return moveErr(errors.Wrap(jimfs.ErrArgument, "cannot move a directory into itself"))
			}
		}
	}

	unlock := lockDirs(from.parent, to.parent)
	defer unlock()

	if cur, ok := from.parent.dir.get(from.name.Canonical()); !ok || cur != from.node {
		return moveErr(fs.notFound(from.parent, from.name))
	}
	if _, exists := to.parent.dir.get(to.name.Canonical()); exists {
		return moveErr(jimfs.ErrAlreadyExists)
	}
	if to.parent.IsDel() {
		return moveErr(fs.notFound(to.parent, to.name))
	}

	from.parent.dir.entries.Delete(from.name.Canonical())
	from.node.mu.Lock()
	from.node.name = to.name
	from.node.parent = to.parent
	from.node.mu.Unlock()
	to.parent.dir.entries.Put(to.name.Canonical(), from.node)

	from.parent.Inode.touch()
	if to.parent.Inode != from.parent.Inode {
		to.parent.Inode.touch()
	}
	from.node.Inode.touch()
	return nil
}

// renameInPlace changes only the display name of an entry whose new name has
// the same canonical form, e.g. a case-only rename.
func (fs *FileSystem) renameInPlace(from entry, name pathtype.Name) error {
	unlock := lockDirs(from.parent)
	defer unlock()
	if cur, ok := from.parent.dir.get(name.Canonical()); !ok || cur != from.node {
		return &os.LinkError{Op: "rename", Old: from.name.String(), New: name.String(), Err: jimfs.ErrNotFound}
	}
	from.node.mu.Lock()
	from.node.name = name
	from.node.mu.Unlock()
	from.parent.Inode.touch()
	return nil
}
