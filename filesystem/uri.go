package filesystem

import (
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
)

// ToURI returns the URI of an absolute path: scheme "jimfs", the instance
// name as host and the path type's URI rendering as path.
func (fs *FileSystem) ToURI(p Path) (*url.URL, error) {
	if !p.IsAbsolute() {
		return nil, errors.Wrapf(jimfs.ErrArgument, "cannot convert relative path %q to a URI", p.String())
	}
	return &url.URL{
		Scheme: jimfs.URIScheme,
		Host:   fs.Name(),
		Path:   fs.pathType.ToURIPath(p.root, p.names),
	}, nil
}

// FromURI parses a URI created by ToURI for this filesystem instance
func (fs *FileSystem) FromURI(u *url.URL) (Path, error) {
	if u.Scheme != jimfs.URIScheme {
		return Path{}, errors.Wrapf(jimfs.ErrArgument, "uri scheme %q is not %q", u.Scheme, jimfs.URIScheme)
	}
	if u.Host != fs.Name() {
		return Path{}, errors.Wrapf(jimfs.ErrArgument, "uri host %q does not name this filesystem", u.Host)
	}
	res, err := fs.pathType.ParseURIPath(u.Path)
	if err != nil {
		return Path{}, err
	}
	return newPath(fs.pathType, res.Root, res.Names), nil
}

// ToAbsolute resolves a relative path against the working directory. No
// lookups happen; "." and ".." are kept as names.
func (fs *FileSystem) ToAbsolute(p Path) Path {
	if p.IsAbsolute() {
		return p
	}
	names := append(fs.workingDirPath.Names(), p.names...)
	return Path{pt: fs.pathType, root: fs.workingDirPath.root, names: names}
}
