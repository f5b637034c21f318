package mocks

import (
	"github.com/brettbedarf/ffs"
	"github.com/stretchr/testify/mock"
)

// MockFlatStore implements ffs.FlatStore for testing across packages
type MockFlatStore struct {
	mock.Mock
}

func (m *MockFlatStore) Names() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlatStore) Create(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockFlatStore) Append(name string, p []byte) error {
	return m.Called(name, p).Error(0)
}

func (m *MockFlatStore) ReadAll(name string) ([]byte, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFlatStore) Remove(name string) error {
	return m.Called(name).Error(0)
}

// MockStoreProvider implements ffs.StoreProvider for testing across packages
type MockStoreProvider struct {
	mock.Mock
}

func (m *MockStoreProvider) NewStore(dir string) (ffs.FlatStore, error) {
	args := m.Called(dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ffs.FlatStore), args.Error(1)
}

var (
	_ ffs.FlatStore     = (*MockFlatStore)(nil)
	_ ffs.StoreProvider = (*MockStoreProvider)(nil)
)
