package filesystem

import (
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/config"
	"github.com/JimSP/jimfs/content"
	"github.com/JimSP/jimfs/internal/metrics"
	"github.com/JimSP/jimfs/internal/util"
	"github.com/JimSP/jimfs/pathtype"
)

// FileSystem is one in-memory filesystem instance: a set of root directories,
// a working directory and a registry of live inodes. All methods are safe for
// concurrent use.
type FileSystem struct {
	cfg            *config.Config
	pathType       pathtype.PathType
	roots          RootTable
	workingDir     *Node                      // Immutable after NewFS
	workingDirPath Path                       // Immutable after NewFS
	lastIno        atomic.Uint64              // Last inode id assigned; incremented when new inodes are created
	inodes         *xsync.Map[uint64, *Inode] // Inodes with at least one hard link, by id
	renameMu       sync.Mutex                 // Serializes directory moves
	newContent     func() jimfs.ContentStore
	metrics        *metrics.Metrics
}

// Option customizes a FileSystem built by [NewFS]
type Option func(fs *FileSystem)

// WithContentFactory sets the store given to regular files created without
// explicit content. The default is an empty [content.Memory].
func WithContentFactory(fn func() jimfs.ContentStore) Option {
	return func(fs *FileSystem) {
		fs.newContent = fn
	}
}

// WithMetrics records operations and inode counts into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(fs *FileSystem) {
		fs.metrics = m
	}
}

// NewFS validates cfg and builds the filesystem: every configured root
// directory plus the working directory and its missing ancestors.
func NewFS(cfg *config.Config, opts ...Option) (*FileSystem, error) {
	logger := util.GetLogger("NewFS")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pt, err := cfg.BuildPathType()
	if err != nil {
		return nil, err
	}
	roots, err := NewRootTable(cfg.RootTable)
	if err != nil {
		return nil, err
	}

	fs := &FileSystem{
		cfg:      cfg,
		pathType: pt,
		roots:    roots,
		inodes:   xsync.NewMap[uint64, *Inode](),
		newContent: func() jimfs.ContentStore {
			return content.NewMemory(nil)
		},
	}
	for _, opt := range opts {
		opt(fs)
	}

	for _, r := range cfg.Roots {
		res, err := pt.ParsePath(r)
		if err != nil {
			return nil, err
		}
		name := pt.RootName(res.Root)
		inode := fs.newInode(jimfs.DirectoryType)
		node, err := newRootNode(name, inode)
		if err != nil {
			return nil, err
		}
		if err := roots.Put(name, node); err != nil {
			return nil, errors.Mark(err, jimfs.ErrConfiguration)
		}
		fs.register(inode)
	}

	wdPath, err := fs.GetPath(cfg.WorkingDirectory)
	if err != nil {
		return nil, err
	}
	wd, err := fs.createDirectories(wdPath)
	if err != nil {
		return nil, errors.Wrapf(err, "creating working directory %s", wdPath)
	}
	fs.workingDir = wd
	fs.workingDirPath = wdPath

	logger.Debug().
		Str("name", cfg.Name).
		Str("pathType", cfg.PathType).
		Strs("roots", cfg.Roots).
		Str("workingDirectory", wdPath.String()).
		Msg("Filesystem created")
	return fs, nil
}

// Name returns the instance name, the host part of its URIs
func (fs *FileSystem) Name() string {
	return fs.cfg.Name
}

func (fs *FileSystem) PathType() pathtype.PathType {
	return fs.pathType
}

// Config returns the configuration the filesystem was built from
func (fs *FileSystem) Config() *config.Config {
	return fs.cfg
}

// WorkingDirectory returns the path relative paths are resolved against
func (fs *FileSystem) WorkingDirectory() Path {
	return fs.workingDirPath
}

// Roots returns the root directories ordered by path
func (fs *FileSystem) Roots() []Path {
	paths := make([]Path, 0, fs.roots.Len())
	fs.roots.Range(func(name pathtype.Name, _ *Node) bool {
		paths = append(paths, Path{pt: fs.pathType, root: name.String(), names: []string{}})
		return true
	})
	slices.SortFunc(paths, Path.Compare)
	return paths
}

// GetPath joins the non-empty parts with the separator and parses the result
func (fs *FileSystem) GetPath(first string, more ...string) (Path, error) {
	s := first
	if len(more) > 0 {
		parts := make([]string, 0, len(more)+1)
		for _, p := range append([]string{first}, more...) {
			if p != "" {
				parts = append(parts, p)
			}
		}
		s = strings.Join(parts, fs.pathType.Separator())
	}
	res, err := fs.pathType.ParsePath(s)
	if err != nil {
		return Path{}, err
	}
	return newPath(fs.pathType, res.Root, res.Names), nil
}

// PathOf returns the current absolute path of an entry
func (fs *FileSystem) PathOf(node *Node) (Path, error) {
	root, names, err := node.Path()
	if err != nil {
		return Path{}, err
	}
	strs := make([]string, len(names))
	for i, n := range names {
		strs[i] = n.String()
	}
	return Path{pt: fs.pathType, root: root.String(), names: strs}, nil
}

// GetInode returns a live inode by id
func (fs *FileSystem) GetInode(id uint64) (*Inode, bool) {
	return fs.inodes.Load(id)
}

// InodeCount returns the number of inodes that still have a hard link
func (fs *FileSystem) InodeCount() int {
	return fs.inodes.Size()
}

// HasFeature reports whether an optional feature is enabled
func (fs *FileSystem) HasFeature(f jimfs.Feature) bool {
	return fs.cfg.HasFeature(f)
}

func (fs *FileSystem) newInode(kind jimfs.NodeType) *Inode {
	return newInode(fs.lastIno.Add(1), kind)
}

func (fs *FileSystem) register(inode *Inode) {
	fs.inodes.Store(inode.ID(), inode)
	fs.metrics.InodeCreated()
}

// forget drops a destroyed inode from the registry
func (fs *FileSystem) forget(inode *Inode) {
	if !inode.IsDel() {
		return
	}
	if _, ok := fs.inodes.LoadAndDelete(inode.ID()); ok {
		fs.metrics.InodeDestroyed()
	}
}

// observe logs and records the outcome of a public operation. Use with defer
// and a named error result.
func (fs *FileSystem) observe(op, path string, start time.Time, errp *error) {
	err := *errp
	fs.metrics.Observe(op, start, err)
	logger := util.GetLogger("FS." + op)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Operation failed")
		return
	}
	logger.Trace().Str("path", path).Dur("took", time.Since(start)).Msg("Operation succeeded")
}

func pathErr(op, path string, err error) error {
	return &os.PathError{Op: op, Path: path, Err: err}
}
