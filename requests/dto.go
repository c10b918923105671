// Package requests turns node definition files into filesystem nodes. A
// definition file is a JSON or YAML list of requests, each with a "type" of
// dir, file, symlink or hardlink.
package requests

import (
	"time"

	"github.com/JimSP/jimfs"
)

// NodeRequestDTO is the JSON representation of [jimfs.NodeRequest]
type NodeRequestDTO struct {
	Path  string                      `json:"path"`
	Type  jimfs.NodeCreateRequestType `json:"type"`
	UUID  *string                     `json:"uuid,omitempty"`  // Optional UUID to enable linking at request time
	Mtime *time.Time                  `json:"mtime,omitempty"` // Last Modified at
	Ctime *time.Time                  `json:"ctime,omitempty"` // Changed at
	Perms *string                     `json:"perms,omitempty"` // Octal string i.e. "0755"
}

// FileRequestDTO is the JSON representation of [jimfs.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO
	Sources []SourceConfigDTO `json:"sources,omitempty"`
}

type DirRequestDTO struct {
	NodeRequestDTO
}

// SymlinkRequestDTO is the JSON representation of [jimfs.SymlinkCreateRequest]
type SymlinkRequestDTO struct {
	NodeRequestDTO
	Target string `json:"target"`
}

// HardlinkRequestDTO is the JSON representation of
// [jimfs.HardlinkCreateRequest]. Exactly one of target_path and target_uuid
// is set.
type HardlinkRequestDTO struct {
	NodeRequestDTO
	TargetPath string `json:"target_path,omitempty"`
	TargetUUID string `json:"target_uuid,omitempty"`
}

// SourceConfigDTO is the JSON representation of static [jimfs.ContentSource] fields
//
// Additional fields depend on the "type" value:
//
// Ex. For type="http" (see [adapters.HTTPSource]):
//
//	URL          string            `json:"url"`
//	Headers      map\[string\]string `json:"headers,omitempty"`
//
// See the adapters package for the fields of the built-in source types.
type SourceConfigDTO struct {
	Type     string `json:"type"`
	Priority *int   `json:"priority,omitempty"` // Lower number = higher priority, defaults to array index
}
