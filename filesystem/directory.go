package filesystem

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/swiss"
)

// directory is the entry table of a directory inode, keyed by canonical name.
// The "." and ".." entries are implicit: "." is the owning node itself and
// ".." is its parent back-reference.
type directory struct {
	mu      sync.RWMutex // Protects entries
	entries swiss.Map[string, *Node]
}

func newDirectory() *directory {
	d := &directory{}
	d.entries.Init(8)
	return d
}

// get looks up an entry by canonical name.
// Caller must hold d.mu.
func (d *directory) get(canonical string) (*Node, bool) {
	return d.entries.Get(canonical)
}

// len returns the number of entries excluding "." and "..".
// Caller must hold d.mu.
func (d *directory) len() int {
	return d.entries.Len()
}

// snapshotNames returns the display names of all entries ordered by canonical
// name. The result is a copy; later mutations of the table do not affect it.
func (d *directory) snapshotNames() []string {
	d.mu.RLock()
	type pair struct{ canonical, display string }
	pairs := make([]pair, 0, d.entries.Len())
	d.entries.All(func(canonical string, child *Node) bool {
		pairs = append(pairs, pair{canonical, child.Name().String()})
		return true
	})
	d.mu.RUnlock()

	slices.SortFunc(pairs, func(a, b pair) int {
		return strings.Compare(a.canonical, b.canonical)
	})
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.display
	}
	return names
}

// lockDirs write-locks the entry tables of the given directory nodes in
// ascending inode id order and returns the matching unlock func. A directory
// listed more than once is locked once.
func lockDirs(nodes ...*Node) func() {
	sorted := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil && n.dir != nil {
			sorted = append(sorted, n)
		}
	}
	slices.SortFunc(sorted, func(a, b *Node) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	sorted = slices.CompactFunc(sorted, func(a, b *Node) bool {
		return a.Inode == b.Inode
	})
	for _, n := range sorted {
		n.dir.mu.Lock()
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			sorted[i].dir.mu.Unlock()
		}
	}
}
