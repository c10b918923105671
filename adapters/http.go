package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/internal/util"
)

// HTTPClient is the part of *http.Client used by the HTTP store
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource contains http-specific source request fields
type HTTPSource struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`

	client HTTPClient
}

// HTTPProvider builds read-only content stores backed by an HTTP resource
type HTTPProvider struct {
	client HTTPClient
}

// NewHTTPProvider returns a provider issuing requests through client, or
// through http.DefaultClient when client is nil
func NewHTTPProvider(client HTTPClient) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{client: client}
}

func RegisterHTTP(r *Registry) {
	r.Register(HTTPSourceType, NewHTTPProvider(nil))
}

// NewSource parses and validates an http source config. Only absolute
// http and https URLs without user info are accepted.
func (h *HTTPProvider) NewSource(raw []byte) (jimfs.ContentProvider, error) {
	var src HTTPSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(jimfs.ErrArgument, err.Error())
	}
	src.URL = strings.TrimSpace(src.URL)
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, errors.Wrapf(jimfs.ErrArgument, "invalid url %q", src.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(jimfs.ErrArgument, "url %q must use http or https", src.URL)
	}
	if u.Host == "" {
		return nil, errors.Wrapf(jimfs.ErrArgument, "url %q has no host", src.URL)
	}
	if u.User != nil {
		return nil, errors.Wrapf(jimfs.ErrArgument, "url %q must not carry user info", src.URL)
	}
	src.client = h.client
	return &src, nil
}

// Content returns a store reading the source URL
func (s *HTTPSource) Content() (jimfs.ContentStore, error) {
	client := s.client
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{url: s.URL, headers: s.Headers, client: client}, nil
}

// HTTPStore implements [jimfs.ContentStore] over HTTP. Reads use Range
// requests and fall back to skipping when the server ignores the range.
// Writes are not supported.
type HTTPStore struct {
	url     string
	headers map[string]string
	client  HTTPClient
}

func (h *HTTPStore) newRequest(ctx context.Context, method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.url, nil)
	if err != nil {
		return nil, err
	}

	// Add custom headers
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func (h *HTTPStore) Read(ctx context.Context, offset int64, p []byte) (int, error) {
	logger := util.GetLogger("HTTPStore.Read")
	if offset < 0 {
		return 0, errors.Wrapf(jimfs.ErrArgument, "negative offset %d", offset)
	}
	if len(p) == 0 {
		return 0, nil
	}

	req, err := h.newRequest(ctx, http.MethodGet)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+int64(len(p))-1))
	logger.Trace().Str("url", h.url).Int64("offset", offset).Int("len", len(p)).Msg("Range request")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "GET %s", h.url)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		// server ignored the range
		logger.Debug().Str("url", h.url).Msg("Range not supported, skipping to offset")
		if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}
	case http.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	default:
		return 0, errors.Newf("GET %s: unexpected status %s", h.url, resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

func (h *HTTPStore) Write(context.Context, int64, []byte) (int, error) {
	return 0, errors.Wrap(jimfs.ErrUnsupported, "http sources are read-only")
}

func (h *HTTPStore) Truncate(context.Context, int64) error {
	return errors.Wrap(jimfs.ErrUnsupported, "http sources are read-only")
}

// Size issues a HEAD request and reports the Content-Length
func (h *HTTPStore) Size(ctx context.Context) (int64, error) {
	req, err := h.newRequest(ctx, http.MethodHead)
	if err != nil {
		return 0, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "HEAD %s", h.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errors.Newf("HEAD %s: unexpected status %s", h.url, resp.Status)
	}
	if resp.ContentLength < 0 {
		return 0, errors.Wrapf(jimfs.ErrUnsupported, "HEAD %s: no content length", h.url)
	}
	return resp.ContentLength, nil
}

var _ jimfs.ContentStore = (*HTTPStore)(nil)
