package filesystem

import (
	"slices"
	"strings"

	"github.com/JimSP/jimfs/pathtype"
)

// Path is an immutable parsed path bound to the path type of the filesystem
// that created it. Names are path normalized.
type Path struct {
	pt    pathtype.PathType
	root  string
	names []string
}

func newPath(pt pathtype.PathType, root string, names []string) Path {
	normalized := make([]string, len(names))
	for i, name := range names {
		normalized[i] = pt.PathName(name)
	}
	return Path{pt: pt, root: root, names: normalized}
}

// String renders the path with the canonical separator
func (p Path) String() string {
	return p.pt.ToString(p.root, p.names)
}

func (p Path) IsAbsolute() bool {
	return p.root != ""
}

// Root returns the root string, or "" for a relative path
func (p Path) Root() string {
	return p.root
}

// Names returns a copy of the name segments
func (p Path) Names() []string {
	return slices.Clone(p.names)
}

// FileName returns the last name, or "" if the path has no names
func (p Path) FileName() string {
	if len(p.names) == 0 {
		return ""
	}
	return p.names[len(p.names)-1]
}

// Parent returns the path without its last name. ok is false when the path
// has no names.
func (p Path) Parent() (parent Path, ok bool) {
	if len(p.names) == 0 {
		return Path{}, false
	}
	return Path{pt: p.pt, root: p.root, names: p.names[:len(p.names)-1:len(p.names)-1]}, true
}

// Resolve returns the path with name appended
func (p Path) Resolve(name string) Path {
	names := make([]string, len(p.names), len(p.names)+1)
	copy(names, p.names)
	return Path{pt: p.pt, root: p.root, names: append(names, p.pt.PathName(name))}
}

// Equal compares root and names as strings; lookup normalization plays no
// part in path identity.
func (p Path) Equal(o Path) bool {
	return p.root == o.root && slices.Equal(p.names, o.names)
}

// Compare orders paths by root and then name by name
func (p Path) Compare(o Path) int {
	if c := strings.Compare(p.root, o.root); c != 0 {
		return c
	}
	return slices.Compare(p.names, o.names)
}

// lookupNames returns the segments as Names for resolution
func (p Path) lookupNames() []pathtype.Name {
	names := make([]pathtype.Name, len(p.names))
	for i, name := range p.names {
		names[i] = p.pt.Name(name)
	}
	return names
}
