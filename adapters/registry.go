// Package adapters builds content stores for files from the raw JSON source
// configs of node requests. Each source config carries a "type" field
// naming the provider that understands it.
package adapters

import (
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
)

// Registry maps source types to their providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]jimfs.SourceProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]jimfs.SourceProvider)}
}

// Register ties a provider to a source type. The first registration of a
// type wins; later ones are ignored.
func (r *Registry) Register(sourceType string, provider jimfs.SourceProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[sourceType]; ok {
		return
	}
	r.providers[sourceType] = provider
}

// GetProvider returns the provider registered for sourceType
func (r *Registry) GetProvider(sourceType string) (jimfs.SourceProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[sourceType]
	if !ok {
		return nil, errors.Wrapf(jimfs.ErrUnsupported, "no provider for source type %q", sourceType)
	}
	return p, nil
}

// NewSource picks the provider named by the "type" field of raw and lets it
// build the content provider.
func (r *Registry) NewSource(raw []byte) (jimfs.ContentProvider, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	if meta.Type == "" {
		return nil, errors.Wrap(jimfs.ErrArgument, `source is missing its "type"`)
	}
	p, err := r.GetProvider(meta.Type)
	if err != nil {
		return nil, err
	}
	return p.NewSource(raw)
}

var _ jimfs.SourceProvider = (*Registry)(nil)
