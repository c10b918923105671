package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JimSP/jimfs"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

var testBody = []byte("0123456789abcdefghij")

// serveRanges serves testBody with Range support and records request headers
func serveRanges(t *testing.T, seen chan<- http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen <- r.Header.Clone()
		}
		http.ServeContent(w, r, "body", time.Time{}, bytes.NewReader(testBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Test helper to build an HTTPStore through the provider
func createStore(t *testing.T, provider *HTTPProvider, url string, headers map[string]string) jimfs.ContentStore {
	t.Helper()
	src, err := provider.NewSource(createCfg(url, headers))
	require.NoError(t, err)
	store, err := src.Content()
	require.NoError(t, err)
	return store
}

func TestHTTPProvider_NewSource(t *testing.T) {
	t.Parallel()
	provider := NewHTTPProvider(&MockHTTPClient{})

	tests := []struct {
		url     string
		wantErr bool
		desc    string
	}{
		// Valid cases
		{"http://test.com", false, "basic HTTP URL"},
		{"https://test.com", false, "basic HTTPS URL"},
		{"  http://test.com   ", false, "URL with whitespace"},
		{"http://test.com/path?arg=1&arg2=2", false, "URL with path and query"},
		{"http://test.com:8080", false, "URL with port"},
		{"http://localhost:8080/test", false, "localhost with port"},
		{"http://123.123.123.123/test", false, "IP address"},
		{"http://mylocalnet/test", false, "single label hostname"},

		// Invalid cases
		{"", true, "empty string"},
		{" ", true, "whitespace only"},
		{"_", true, "invalid character"},
		{"ftp://test.com", true, "different scheme rejected"},
		{"test.com", true, "missing scheme"},
		{"http://user@test.com/path", true, "URL with user info"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			src, err := provider.NewSource(createCfg(tt.url, nil))

			if tt.wantErr {
				assert.ErrorIs(t, err, jimfs.ErrArgument)
				assert.Nil(t, src)
			} else {
				require.NoError(t, err)
				require.NotNil(t, src)
				assert.IsType(t, &HTTPSource{}, src)
			}
		})
	}

	_, err := provider.NewSource([]byte(`{"url": 5}`))
	assert.ErrorIs(t, err, jimfs.ErrArgument)
}

func TestHTTPStore_Read(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("successful range request", func(t *testing.T) {
		seen := make(chan http.Header, 1)
		srv := serveRanges(t, seen)
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, map[string]string{"X-Token": "secret"})

		p := make([]byte, 5)
		n, err := store.Read(ctx, 3, p)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "34567", string(p))

		hdr := <-seen
		assert.Equal(t, "bytes=3-7", hdr.Get("Range"))
		assert.Equal(t, "secret", hdr.Get("X-Token"), "custom headers are sent")
	})

	t.Run("short read at end", func(t *testing.T) {
		srv := serveRanges(t, nil)
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		p := make([]byte, 10)
		n, err := store.Read(ctx, 15, p)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 5, n)
		assert.Equal(t, "fghij", string(p[:n]))
	})

	t.Run("offset past end", func(t *testing.T) {
		srv := serveRanges(t, nil)
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		n, err := store.Read(ctx, 100, make([]byte, 4))
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 0, n)
	})

	t.Run("server doesn't support ranges", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(testBody)
		}))
		defer srv.Close()
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		p := make([]byte, 4)
		n, err := store.Read(ctx, 10, p)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, "abcd", string(p))

		n, err = store.Read(ctx, 50, p)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 0, n)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		_, err := store.Read(ctx, 0, make([]byte, 4))
		assert.ErrorContains(t, err, "404")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		store := createStore(t, NewHTTPProvider(&MockHTTPClient{}), "http://unused", nil)

		_, err := store.Read(ctx, -1, make([]byte, 4))
		assert.ErrorIs(t, err, jimfs.ErrArgument)
		n, err := store.Read(ctx, 0, nil)
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("network error", func(t *testing.T) {
		client := &MockHTTPClient{}
		client.On("Do", mock.Anything).Return(nil, io.ErrClosedPipe)
		store := createStore(t, NewHTTPProvider(client), "http://unused", nil)

		_, err := store.Read(ctx, 0, make([]byte, 4))
		assert.ErrorIs(t, err, io.ErrClosedPipe)
		client.AssertExpectations(t)
	})
}

func TestHTTPStore_Size(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("successful HEAD request", func(t *testing.T) {
		srv := serveRanges(t, nil)
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		size, err := store.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(len(testBody)), size)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		store := createStore(t, NewHTTPProvider(srv.Client()), srv.URL, nil)

		_, err := store.Size(ctx)
		assert.Error(t, err)
	})

	t.Run("uses HEAD", func(t *testing.T) {
		client := &MockHTTPClient{}
		client.On("Do", mock.MatchedBy(func(r *http.Request) bool {
			return r.Method == http.MethodHead
		})).Return(&http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: 7,
			Body:          io.NopCloser(bytes.NewReader(nil)),
		}, nil)
		store := createStore(t, NewHTTPProvider(client), "http://unused", nil)

		size, err := store.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), size)
		client.AssertExpectations(t)
	})

	t.Run("unknown length", func(t *testing.T) {
		client := &MockHTTPClient{}
		client.On("Do", mock.Anything).Return(&http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: -1,
			Body:          io.NopCloser(bytes.NewReader(nil)),
		}, nil)
		store := createStore(t, NewHTTPProvider(client), "http://unused", nil)

		_, err := store.Size(ctx)
		assert.ErrorIs(t, err, jimfs.ErrUnsupported)
	})
}

func TestHTTPStore_Write(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := createStore(t, NewHTTPProvider(&MockHTTPClient{}), "http://unused", nil)

	_, err := store.Write(ctx, 0, []byte("x"))
	assert.ErrorIs(t, err, jimfs.ErrUnsupported)
	assert.ErrorIs(t, store.Truncate(ctx, 0), jimfs.ErrUnsupported)
}

func TestRegisterHTTP(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	RegisterHTTP(registry)

	provider, err := registry.GetProvider("http")
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.IsType(t, &HTTPProvider{}, provider)
}

// Test helpers

func createCfg(url string, headers map[string]string) []byte {
	config := struct {
		Type string `json:"type"`
		HTTPSource
	}{Type: HTTPSourceType, HTTPSource: HTTPSource{URL: url, Headers: headers}}
	data, _ := json.Marshal(config)
	return data
}
