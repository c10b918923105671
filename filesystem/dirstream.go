package filesystem

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
)

// Filter decides whether a directory stream yields a path. An error ends the
// iteration and is reported by [DirectoryIterator.Err].
type Filter func(p Path) (bool, error)

// AcceptAll is a Filter that yields every entry
func AcceptAll(Path) (bool, error) {
	return true, nil
}

// DirectoryStream lists the entries of one directory. The directory is not
// read until the first call to [DirectoryIterator.Next], which takes a
// snapshot of the entry names; later changes to the directory are not seen.
// A stream hands out a single iterator.
type DirectoryStream struct {
	fs      *FileSystem
	dirPath Path
	filter  Filter
	mu      sync.Mutex // Protects the fields below
	handed  bool       // Iterator has been called
	closed  bool
}

// OpenDirectoryStream returns a stream over the directory at p. Only the
// path syntax is checked here; a missing directory is reported by the
// iterator. A nil filter accepts every entry.
func (fs *FileSystem) OpenDirectoryStream(p string, filter Filter) (*DirectoryStream, error) {
	dirPath, err := fs.GetPath(p)
	if err != nil {
		return nil, pathErr("opendir", p, err)
	}
	if filter == nil {
		filter = AcceptAll
	}
	return &DirectoryStream{fs: fs, dirPath: dirPath, filter: filter}, nil
}

// Path returns the directory path the stream was opened with
func (s *DirectoryStream) Path() Path {
	return s.dirPath
}

// Iterator returns the stream's iterator. It may be called once; later calls
// fail with ErrInvalidState, and calls after Close fail with ErrClosed.
func (s *DirectoryStream) Iterator() (*DirectoryIterator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, jimfs.ErrClosed
	}
	if s.handed {
		return nil, errors.Wrap(jimfs.ErrInvalidState, "iterator already obtained")
	}
	s.handed = true
	return &DirectoryIterator{stream: s}, nil
}

// Close ends the stream. Its iterator stops yielding. Closing twice is a no-op.
func (s *DirectoryStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *DirectoryStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type iterState uint8

const (
	iterNotStarted iterState = iota
	iterStreaming
	iterExhausted
)

// DirectoryIterator walks a snapshot of a directory's entries ordered by
// canonical name, yielding the stream's directory path resolved against each
// name. It is not safe for concurrent use.
//
//	for it.Next() {
//		use(it.Path())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type DirectoryIterator struct {
	stream *DirectoryStream
	state  iterState
	names  []string
	pos    int
	cur    Path
	err    error
}

// Next advances to the next accepted entry and reports whether there is one
func (it *DirectoryIterator) Next() bool {
	if it.state == iterExhausted {
		return false
	}
	if it.stream.isClosed() {
		return it.fail(jimfs.ErrClosed)
	}
	if it.state == iterNotStarted {
		names, err := it.stream.fs.snapshotEntryNames(it.stream.dirPath)
		if err != nil {
			return it.fail(err)
		}
		it.names = names
		it.state = iterStreaming
	}

	for it.pos < len(it.names) {
		p := it.stream.dirPath.Resolve(it.names[it.pos])
		it.pos++
		ok, err := it.stream.filter(p)
		if err != nil {
			return it.fail(err)
		}
		if ok {
			it.cur = p
			return true
		}
	}
	it.cur = Path{}
	it.state = iterExhausted
	return false
}

// Path returns the entry yielded by the last successful Next
func (it *DirectoryIterator) Path() Path {
	return it.cur
}

// Err returns the error that ended the iteration, if any
func (it *DirectoryIterator) Err() error {
	return it.err
}

func (it *DirectoryIterator) fail(err error) bool {
	it.err = err
	it.cur = Path{}
	it.state = iterExhausted
	return false
}

// snapshotEntryNames resolves dirPath, following links, and copies the
// display names of its entries
func (fs *FileSystem) snapshotEntryNames(dirPath Path) ([]string, error) {
	p := dirPath.String()
	e, err := fs.lookup(dirPath, FollowLinks)
	if err != nil {
		return nil, pathErr("readdir", p, err)
	}
	if e.node == nil {
		return nil, pathErr("readdir", p, fs.notFound(e.parent, e.name))
	}
	if !e.node.IsDir() {
		return nil, pathErr("readdir", p, jimfs.ErrNotADirectory)
	}
	return e.node.EntryNames(), nil
}

// ReadDir returns the paths of all entries of the directory at p, ordered by
// canonical name
func (fs *FileSystem) ReadDir(p string) (paths []Path, err error) {
	stream, err := fs.OpenDirectoryStream(p, AcceptAll)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	it, err := stream.Iterator()
	if err != nil {
		return nil, err
	}
	for it.Next() {
		paths = append(paths, it.Path())
	}
	return paths, it.Err()
}
