package adapters

import (
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/content"
)

type BuiltInSourceType = string

const (
	HTTPSourceType   BuiltInSourceType = "http"
	MemorySourceType BuiltInSourceType = "memory"
)

// RegisterBuiltins registers all built-in providers by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, sources ...BuiltInSourceType) {
	if len(sources) == 0 {
		sources = []BuiltInSourceType{HTTPSourceType, MemorySourceType}
	}

	for _, key := range sources {
		switch key {
		case HTTPSourceType:
			RegisterHTTP(r)
		case MemorySourceType:
			r.Register(MemorySourceType, MemoryProvider{})
		}
	}
}

// MemorySource seeds an in-memory store with either Text or base64 Data
type MemorySource struct {
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}

// Content returns a new store holding a copy of the seed bytes
func (m *MemorySource) Content() (jimfs.ContentStore, error) {
	if m.Data == "" {
		return content.NewMemory([]byte(m.Text)), nil
	}
	b, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, "memory source data is not base64")
	}
	return content.NewMemory(b), nil
}

// MemoryProvider builds [MemorySource] values
type MemoryProvider struct{}

func (MemoryProvider) NewSource(raw []byte) (jimfs.ContentProvider, error) {
	var src MemorySource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	if src.Text != "" && src.Data != "" {
		return nil, errors.Wrap(jimfs.ErrArgument, "memory source takes text or data, not both")
	}
	return &src, nil
}
