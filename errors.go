package jimfs

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
)

// Error taxonomy reported by the filesystem engine. Operations wrap these in
// *fs.PathError or *os.LinkError, so match them with errors.Is.
var (
	// ErrParse reports malformed root or segment syntax.
	ErrParse = errors.New("invalid path")
	// ErrNoSuchRoot reports an absolute path whose root is not configured.
	ErrNoSuchRoot = errors.Mark(errors.New("no such root directory"), oserror.ErrNotExist)
	// ErrNotFound reports a missing path segment.
	ErrNotFound = errors.Mark(errors.New("no such file or directory"), oserror.ErrNotExist)
	// ErrNotADirectory reports a non-terminal segment that is not a directory.
	ErrNotADirectory = errors.New("not a directory")
	// ErrAlreadyExists reports an insert into an occupied name.
	ErrAlreadyExists = errors.Mark(errors.New("file already exists"), oserror.ErrExist)
	// ErrNotEmpty reports removal of a directory that still has entries.
	ErrNotEmpty = errors.New("directory not empty")
	// ErrLinkCycle reports symbolic link resolution exceeding the depth limit.
	ErrLinkCycle = errors.New("too many levels of symbolic links")
	// ErrNotLinkable reports an attempt to hard link a directory.
	ErrNotLinkable = errors.New("directories cannot be hard linked")
	// ErrInvalidState reports misuse of a one-shot object such as a DirectoryStream.
	ErrInvalidState = errors.New("invalid state")
	// ErrConfiguration reports an invalid filesystem configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrArgument reports an argument the operation cannot accept, e.g. a
	// relative path where an absolute one is required.
	ErrArgument = errors.Mark(errors.New("invalid argument"), oserror.ErrInvalid)
	// ErrUnsupported reports an operation whose feature is disabled.
	ErrUnsupported = errors.New("operation not supported")
	// ErrClosed reports use of a closed DirectoryStream.
	ErrClosed = errors.Mark(errors.New("directory stream is closed"), ErrInvalidState)
)
