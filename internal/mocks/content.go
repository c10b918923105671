package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JimSP/jimfs"
)

// MockContentStore implements jimfs.ContentStore for testing across packages
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Read(ctx context.Context, offset int64, p []byte) (int, error) {
	args := m.Called(ctx, offset, p)

	// Handle function return types (for tests that fill p)
	if fn, ok := args.Get(0).(func(context.Context, int64, []byte) int); ok {
		return fn(ctx, offset, p), args.Error(1)
	}
	return args.Int(0), args.Error(1)
}

func (m *MockContentStore) Write(ctx context.Context, offset int64, p []byte) (int, error) {
	args := m.Called(ctx, offset, p)
	return args.Int(0), args.Error(1)
}

func (m *MockContentStore) Truncate(ctx context.Context, size int64) error {
	args := m.Called(ctx, size)
	return args.Error(0)
}

func (m *MockContentStore) Size(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ jimfs.ContentStore = (*MockContentStore)(nil)

// MockClosableContentStore is a MockContentStore that also expects Close
type MockClosableContentStore struct {
	MockContentStore
}

func (m *MockClosableContentStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockContentProvider implements jimfs.ContentProvider for testing across packages
type MockContentProvider struct {
	mock.Mock
}

func (m *MockContentProvider) Content() (jimfs.ContentStore, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jimfs.ContentStore), args.Error(1)
}

var _ jimfs.ContentProvider = (*MockContentProvider)(nil)

// MockSourceProvider implements jimfs.SourceProvider for testing across packages
type MockSourceProvider struct {
	mock.Mock
}

func (m *MockSourceProvider) NewSource(raw []byte) (jimfs.ContentProvider, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jimfs.ContentProvider), args.Error(1)
}

var _ jimfs.SourceProvider = (*MockSourceProvider)(nil)
