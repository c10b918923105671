// Package pathtype defines the path syntaxes understood by jimfs: how strings
// are parsed into a root plus name segments, how they are rendered back, and
// how segments are normalized for lookup and for path identity.
package pathtype

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
)

// ParseResult is the result of parsing a path string. Root is empty for a
// relative path.
type ParseResult struct {
	Root  string
	Names []string
}

// IsAbsolute reports whether the parsed path has a root.
func (r ParseResult) IsAbsolute() bool {
	return r.Root != ""
}

// syntax is the parse/render function table of one path style.
type syntax struct {
	style        string
	parse        func(pt PathType, s string) (ParseResult, error)
	toURIPath    func(pt PathType, root string, names []string) string
	parseURIPath func(pt PathType, uriPath string) (ParseResult, error)
}

// PathType is an immutable path style: separators, multi-root support and the
// two normalization settings. Lookup normalization only affects name matching
// during resolution; path normalization affects the string form, equality and
// ordering of constructed paths.
type PathType struct {
	syntax              *syntax
	separator           string
	otherSeparators     string
	allowsMultipleRoots bool
	lookupNormalization Normalization
	pathNormalization   Normalization
}

// Unix returns a Unix-style path type. "/" is both the root and the only
// separator. Paths are case sensitive and NUL is disallowed.
func Unix() PathType {
	return PathType{
		syntax:    &unixSyntax,
		separator: "/",
	}
}

// OSX returns the Unix syntax with Mac OS X style normalization: lookups are
// NFD normalized and ASCII case insensitive, path names are NFC normalized.
func OSX() PathType {
	return Unix().
		WithLookupNormalization(NFD | CaseFoldASCII).
		WithPathNormalization(NFC)
}

// Windows returns a Windows-style path type. The canonical separator is "\"
// and "/" is accepted when parsing. Drive-letter ("C:\") and UNC
// ("\\host\share\") roots are supported and lookups are ASCII case
// insensitive.
func Windows() PathType {
	return PathType{
		syntax:              &windowsSyntax,
		separator:           `\`,
		otherSeparators:     "/",
		allowsMultipleRoots: true,
		lookupNormalization: CaseFoldASCII,
	}
}

// ByName returns the preset path type for a config name: "unix", "osx" or
// "windows".
func ByName(name string) (PathType, error) {
	switch strings.ToLower(name) {
	case "unix", "":
		return Unix(), nil
	case "osx", "macos":
		return OSX(), nil
	case "windows":
		return Windows(), nil
	}
	return PathType{}, errors.Wrapf(jimfs.ErrConfiguration, "unknown path type %q", name)
}

// WithLookupNormalization returns a copy of pt using n for file lookups.
func (pt PathType) WithLookupNormalization(n Normalization) PathType {
	pt.lookupNormalization = n
	return pt
}

// WithPathNormalization returns a copy of pt using n for path values.
// Paths built before the change are unaffected.
func (pt PathType) WithPathNormalization(n Normalization) PathType {
	pt.pathNormalization = n
	return pt
}

// Style returns the syntax family, "unix" or "windows".
func (pt PathType) Style() string {
	return pt.syntax.style
}

func (pt PathType) Separator() string {
	return pt.separator
}

// OtherSeparators returns the additional separators recognized while
// parsing, or "" if there are none.
func (pt PathType) OtherSeparators() string {
	return pt.otherSeparators
}

func (pt PathType) AllowsMultipleRoots() bool {
	return pt.allowsMultipleRoots
}

func (pt PathType) LookupNormalization() Normalization {
	return pt.lookupNormalization
}

func (pt PathType) PathNormalization() Normalization {
	return pt.pathNormalization
}

// Equal reports whether both path types have identical settings.
func (pt PathType) Equal(o PathType) bool {
	return pt.syntax == o.syntax &&
		pt.separator == o.separator &&
		pt.otherSeparators == o.otherSeparators &&
		pt.allowsMultipleRoots == o.allowsMultipleRoots &&
		pt.lookupNormalization == o.lookupNormalization &&
		pt.pathNormalization == o.pathNormalization
}

// ParsePath parses s into a root and its name segments. Empty segments from
// repeated separators are dropped.
func (pt PathType) ParsePath(s string) (ParseResult, error) {
	return pt.syntax.parse(pt, s)
}

// ToString renders a root and names; the inverse of ParsePath.
func (pt PathType) ToString(root string, names []string) string {
	joined := strings.Join(names, pt.separator)
	if root == "" {
		return joined
	}
	return root + joined
}

// ToURIPath renders an absolute path for use as the path part of a URI.
// Segments are not escaped.
func (pt PathType) ToURIPath(root string, names []string) string {
	return pt.syntax.toURIPath(pt, root, names)
}

// ParseURIPath parses the path part of a URI. The result is always absolute.
func (pt PathType) ParseURIPath(uriPath string) (ParseResult, error) {
	return pt.syntax.parseURIPath(pt, uriPath)
}

// Name returns the entry name for a raw segment: the display form is path
// normalized and the canonical form is lookup normalized.
func (pt PathType) Name(raw string) Name {
	return NewName(pt.pathNormalization.Apply(raw), pt.lookupNormalization)
}

// PathName returns the path-normalized form of a raw segment.
func (pt PathType) PathName(raw string) string {
	return pt.pathNormalization.Apply(raw)
}

// RootName returns the lookup key for a root string.
func (pt PathType) RootName(root string) Name {
	return NewName(root, pt.lookupNormalization)
}

// splitNames splits s on the separator and alternates, omitting empty names.
func (pt PathType) splitNames(s string) []string {
	seps := pt.separator + pt.otherSeparators
	names := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	if names == nil {
		names = []string{}
	}
	return names
}

func parseError(path, reason string) error {
	return errors.Wrapf(jimfs.ErrParse, "%q: %s", path, reason)
}
