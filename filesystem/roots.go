package filesystem

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/config"
	"github.com/JimSP/jimfs/pathtype"
)

// RootTable maps root names to root directory entries. Lookups are by
// canonical name.
type RootTable interface {
	// Get returns the root stored under name
	Get(name pathtype.Name) (*Node, bool)
	// Put stores a new root; it fails with ErrAlreadyExists if name is taken
	Put(name pathtype.Name, root *Node) error
	// Range calls fn for every root until fn returns false
	Range(fn func(name pathtype.Name, root *Node) bool)
	Len() int
}

// NewRootTable returns an empty root table of the given kind, one of the
// config.RootTable* constants. The empty kind selects the hash table.
func NewRootTable(kind string) (RootTable, error) {
	switch kind {
	case config.RootTableHash, "":
		return &hashRootTable{m: xsync.NewMap[string, rootEntry]()}, nil
	case config.RootTableOrdered:
		return &orderedRootTable{t: btree.NewG[rootEntry](8, rootEntry.less)}, nil
	case config.RootTableSynchronized:
		return &synchronizedRootTable{m: make(map[string]rootEntry)}, nil
	}
	return nil, errors.Wrapf(jimfs.ErrConfiguration, "unknown root table %q", kind)
}

type rootEntry struct {
	name pathtype.Name
	node *Node
}

func (e rootEntry) less(o rootEntry) bool {
	return e.name.Compare(o.name) < 0
}

// hashRootTable is a lock-free concurrent hash map of roots
type hashRootTable struct {
	m *xsync.Map[string, rootEntry]
}

func (t *hashRootTable) Get(name pathtype.Name) (*Node, bool) {
	e, ok := t.m.Load(name.Canonical())
	return e.node, ok
}

func (t *hashRootTable) Put(name pathtype.Name, root *Node) error {
	if _, loaded := t.m.LoadOrStore(name.Canonical(), rootEntry{name, root}); loaded {
		return errors.Wrapf(jimfs.ErrAlreadyExists, "root %s", name)
	}
	return nil
}

func (t *hashRootTable) Range(fn func(pathtype.Name, *Node) bool) {
	t.m.Range(func(_ string, e rootEntry) bool {
		return fn(e.name, e.node)
	})
}

func (t *hashRootTable) Len() int {
	return t.m.Size()
}

// orderedRootTable keeps roots sorted by canonical name so Range is ordered
type orderedRootTable struct {
	mu sync.RWMutex
	t  *btree.BTreeG[rootEntry]
}

func (t *orderedRootTable) Get(name pathtype.Name) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.t.Get(rootEntry{name: name})
	return e.node, ok
}

func (t *orderedRootTable) Put(name pathtype.Name, root *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.t.Has(rootEntry{name: name}) {
		return errors.Wrapf(jimfs.ErrAlreadyExists, "root %s", name)
	}
	t.t.ReplaceOrInsert(rootEntry{name, root})
	return nil
}

func (t *orderedRootTable) Range(fn func(pathtype.Name, *Node) bool) {
	t.mu.RLock()
	entries := make([]rootEntry, 0, t.t.Len())
	t.t.Ascend(func(e rootEntry) bool {
		entries = append(entries, e)
		return true
	})
	t.mu.RUnlock()
	for _, e := range entries {
		if !fn(e.name, e.node) {
			return
		}
	}
}

func (t *orderedRootTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.t.Len()
}

// synchronizedRootTable is a plain map behind a single lock
type synchronizedRootTable struct {
	mu sync.RWMutex
	m  map[string]rootEntry
}

func (t *synchronizedRootTable) Get(name pathtype.Name) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.m[name.Canonical()]
	return e.node, ok
}

func (t *synchronizedRootTable) Put(name pathtype.Name, root *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[name.Canonical()]; ok {
		return errors.Wrapf(jimfs.ErrAlreadyExists, "root %s", name)
	}
	t.m[name.Canonical()] = rootEntry{name, root}
	return nil
}

func (t *synchronizedRootTable) Range(fn func(pathtype.Name, *Node) bool) {
	t.mu.RLock()
	entries := make([]rootEntry, 0, len(t.m))
	for _, e := range t.m {
		entries = append(entries, e)
	}
	t.mu.RUnlock()
	for _, e := range entries {
		if !fn(e.name, e.node) {
			return
		}
	}
}

func (t *synchronizedRootTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}
