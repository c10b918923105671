package jimfs

// NodeType is the variant tag of a filesystem node
type NodeType string

const (
	DirectoryType   NodeType = "dir"
	RegularFileType NodeType = "file"
	SymlinkType     NodeType = "symlink"
)

// Feature is an optional capability of a filesystem instance
type Feature string

const (
	// FeatureLinks enables hard links
	FeatureLinks Feature = "links"
	// FeatureSymbolicLinks enables symbolic links
	FeatureSymbolicLinks Feature = "symbolic_links"
)

// URIScheme is the scheme of URIs identifying jimfs paths
const URIScheme = "jimfs"
