package requests

import (
	"cmp"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/filesystem"
	"github.com/JimSP/jimfs/internal/util"
)

// Apply creates the requested nodes in order, creating missing parent
// directories along the way. Directory requests for existing directories
// succeed. Hard links may name their target by the UUID of an earlier
// request. Apply stops at the first failing request.
func Apply(fs *filesystem.FileSystem, reqs []jimfs.NodeCreateRequest) error {
	logger := util.GetLogger("requests.Apply")
	byUUID := make(map[string]string, len(reqs))

	for i, req := range reqs {
		base := req.Node()
		node, err := applyOne(fs, req, byUUID)
		if err != nil {
			return errors.Wrapf(err, "node %d (%s %s)", i, base.Type, base.Path)
		}
		if base.UUID != "" {
			byUUID[base.UUID] = base.Path
		}
		applyAttrs(fs, node, base)
		logger.Trace().Str("path", base.Path).Str("type", string(base.Type)).Uint64("ino", node.ID()).Msg("Node created")
	}
	logger.Debug().Int("count", len(reqs)).Msg("Node requests applied")
	return nil
}

func applyOne(fs *filesystem.FileSystem, req jimfs.NodeCreateRequest, byUUID map[string]string) (*filesystem.Node, error) {
	base := req.Node()
	if r, ok := req.(*jimfs.DirCreateRequest); ok {
		return fs.CreateDirectories(r.Path)
	}
	if err := createParent(fs, base.Path); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case *jimfs.FileCreateRequest:
		store, err := openSources(r.Sources)
		if err != nil {
			return nil, err
		}
		return fs.CreateFile(r.Path, store)
	case *jimfs.SymlinkCreateRequest:
		return fs.CreateSymbolicLink(r.Path, r.Target)
	case *jimfs.HardlinkCreateRequest:
		target := r.TargetPath
		if r.TargetUUID != "" {
			var ok bool
			if target, ok = byUUID[r.TargetUUID]; !ok {
				return nil, errors.Wrapf(jimfs.ErrNotFound, "no earlier request with uuid %s", r.TargetUUID)
			}
		}
		return fs.CreateHardLink(r.Path, target)
	}
	return nil, errors.Wrapf(jimfs.ErrArgument, "unsupported request %T", req)
}

func createParent(fs *filesystem.FileSystem, p string) error {
	path, err := fs.GetPath(p)
	if err != nil {
		return err
	}
	if parent, ok := path.Parent(); ok && len(parent.Names()) > 0 {
		_, err = fs.CreateDirectories(parent.String())
	}
	return err
}

// openSources returns the store of the highest priority source that opens.
// With no sources the filesystem's default store is used.
func openSources(sources []jimfs.ContentSource) (jimfs.ContentStore, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	ordered := slices.SortedStableFunc(slices.Values(sources), func(a, b jimfs.ContentSource) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	logger := util.GetLogger("requests.openSources")
	var errs error
	for _, src := range ordered {
		store, err := src.Content()
		if err == nil {
			return store, nil
		}
		logger.Debug().Err(err).Int("priority", src.Priority).Msg("Source failed, trying next")
		errs = errors.CombineErrors(errs, err)
	}
	return nil, errors.Wrap(errs, "no source could be opened")
}

// applyAttrs copies the requested times and permission bits onto the new node
func applyAttrs(fs *filesystem.FileSystem, node *filesystem.Node, req *jimfs.NodeRequest) {
	if req.Mtime.IsZero() && req.Ctime.IsZero() && req.Perms == 0 {
		return
	}
	ctx := fs.GetNodeCtx(node.ID())
	if ctx == nil {
		return
	}
	defer ctx.Close()
	ctx.UpdateAttr(func(attr *fuse.Attr) {
		setTime(&attr.Mtime, &attr.Mtimensec, req.Mtime)
		setTime(&attr.Ctime, &attr.Ctimensec, req.Ctime)
		if req.Perms != 0 {
			attr.Mode = attr.Mode&^0o7777 | req.Perms
		}
	})
}

func setTime(sec *uint64, nsec *uint32, t time.Time) {
	if t.IsZero() {
		return
	}
	*sec, *nsec = uint64(t.Unix()), uint32(t.Nanosecond())
}
