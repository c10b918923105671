package pathtype

import "strings"

// Name is one path segment. It keeps the string it was created from for
// display and a canonical form used for equality, hashing and ordering: two
// Names with different display strings but equal canonical strings are
// interchangeable as lookup keys.
type Name struct {
	display   string
	canonical string
}

var (
	// SelfName is the "." segment
	SelfName = Name{display: ".", canonical: "."}
	// ParentName is the ".." segment
	ParentName = Name{display: "..", canonical: ".."}
)

// NewName creates a Name whose canonical form is n applied to raw.
func NewName(raw string, n Normalization) Name {
	switch raw {
	case ".":
		return SelfName
	case "..":
		return ParentName
	}
	return Name{display: raw, canonical: n.Apply(raw)}
}

// String returns the display form.
func (n Name) String() string {
	return n.display
}

// Canonical returns the normalized form used as the lookup key.
func (n Name) Canonical() string {
	return n.canonical
}

// Equal compares canonical forms only.
func (n Name) Equal(o Name) bool {
	return n.canonical == o.canonical
}

// Compare orders Names by canonical form.
func (n Name) Compare(o Name) int {
	return strings.Compare(n.canonical, o.canonical)
}

func (n Name) IsSelf() bool {
	return n.canonical == "."
}

func (n Name) IsParent() bool {
	return n.canonical == ".."
}

func (n Name) IsZero() bool {
	return n.canonical == "" && n.display == ""
}
