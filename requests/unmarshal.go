package requests

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/internal/util"
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (jimfs.NodeCreateRequestType, error) {
	var meta struct {
		Type jimfs.NodeCreateRequestType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	return meta.Type, nil
}

// UnmarshalRequest decodes one raw JSON request of any type. sources builds
// the content providers of file requests and may be nil when no file
// request carries sources.
func UnmarshalRequest(data []byte, sources jimfs.SourceProvider) (jimfs.NodeCreateRequest, error) {
	kind, err := GetNodeType(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case jimfs.FileNodeType:
		return UnmarshalFileRequest(data, sources)
	case jimfs.DirNodeType:
		return UnmarshalDirRequest(data)
	case jimfs.SymlinkNodeType:
		return UnmarshalSymlinkRequest(data)
	case jimfs.HardlinkNodeType:
		return UnmarshalHardlinkRequest(data)
	}
	return nil, errors.Wrapf(jimfs.ErrArgument, "unknown node type %q", kind)
}

// UnmarshalFileRequest handles file-specific unmarshaling with sources
func UnmarshalFileRequest(data []byte, sources jimfs.SourceProvider) (*jimfs.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}

	// Convert DTO to core type with defaults applied
	coreNode, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}

	fileSources, err := unmarshalSources(dto.Sources, data, sources)
	if err != nil {
		return nil, err
	}

	return &jimfs.FileCreateRequest{
		NodeRequest: coreNode,
		Sources:     fileSources,
	}, nil
}

// UnmarshalDirRequest handles explicit directory unmarshaling (no sources)
func UnmarshalDirRequest(data []byte) (*jimfs.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}

	coreNode, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &jimfs.DirCreateRequest{NodeRequest: coreNode}, nil
}

func UnmarshalSymlinkRequest(data []byte) (*jimfs.SymlinkCreateRequest, error) {
	var dto SymlinkRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	if dto.Target == "" {
		return nil, errors.Wrapf(jimfs.ErrArgument, "symlink %q has no target", dto.Path)
	}

	coreNode, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &jimfs.SymlinkCreateRequest{NodeRequest: coreNode, Target: dto.Target}, nil
}

func UnmarshalHardlinkRequest(data []byte) (*jimfs.HardlinkCreateRequest, error) {
	var dto HardlinkRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	if (dto.TargetPath == "") == (dto.TargetUUID == "") {
		return nil, errors.Wrapf(jimfs.ErrArgument, "hardlink %q needs exactly one of target_path and target_uuid", dto.Path)
	}

	coreNode, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &jimfs.HardlinkCreateRequest{
		NodeRequest: coreNode,
		TargetPath:  dto.TargetPath,
		TargetUUID:  dto.TargetUUID,
	}, nil
}

// UnmarshalNodes decodes a definition list. YAML is a superset of JSON so
// both formats go through the YAML decoder; each item is then re-encoded as
// JSON for the per-type decoders and source providers.
func UnmarshalNodes(data []byte, sources jimfs.SourceProvider) ([]jimfs.NodeCreateRequest, error) {
	var items []map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}

	reqs := make([]jimfs.NodeCreateRequest, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, errors.Wrapf(jimfs.ErrArgument, "node %d: %v", i, err)
		}
		req, err := UnmarshalRequest(raw, sources)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// LoadNodesFile reads and decodes a definition file
func LoadNodesFile(path string, sources jimfs.SourceProvider) ([]jimfs.NodeCreateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalNodes(data, sources)
}

// Helper function to process sources array
func unmarshalSources(sourceDTOs []SourceConfigDTO, rawData []byte, provider jimfs.SourceProvider) ([]jimfs.ContentSource, error) {
	if len(sourceDTOs) == 0 {
		return nil, nil
	}
	if provider == nil {
		return nil, errors.Wrap(jimfs.ErrUnsupported, "file sources given but no source provider configured")
	}

	// Extract raw sources array from JSON for the provider registry
	var rawMessage struct {
		Sources []json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(rawData, &rawMessage); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}

	sources := make([]jimfs.ContentSource, 0, len(rawMessage.Sources))
	for i, rawSource := range rawMessage.Sources {
		contentProvider, err := provider.NewSource(rawSource)
		if err != nil {
			return nil, errors.Wrapf(err, "source %d", i)
		}

		// Apply priority default
		priority := i
		if sourceDTOs[i].Priority != nil {
			priority = *sourceDTOs[i].Priority
		}

		sources = append(sources, jimfs.ContentSource{
			ContentProvider: contentProvider,
			Priority:        priority,
		})
	}

	return sources, nil
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) (jimfs.NodeRequest, error) {
	if dto.Path == "" {
		return jimfs.NodeRequest{}, errors.Wrapf(jimfs.ErrArgument, "%s request has no path", dto.Type)
	}
	var perms uint32
	if dto.Perms != nil {
		p, err := strconv.ParseUint(*dto.Perms, 8, 32)
		if err != nil || p > 0o7777 {
			return jimfs.NodeRequest{}, errors.Wrapf(jimfs.ErrArgument, "invalid perms %q for %s", *dto.Perms, dto.Path)
		}
		perms = uint32(p)
	}

	return jimfs.NodeRequest{
		Path:  dto.Path,
		Type:  dto.Type,
		UUID:  util.ValueOrDefault(dto.UUID, uuid.New().String()),
		Mtime: util.ValueOrDefault(dto.Mtime, time.Time{}),
		Ctime: util.ValueOrDefault(dto.Ctime, time.Time{}),
		Perms: perms,
	}, nil
}
