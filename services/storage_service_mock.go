package services

import (
	"fmt"
	"sync"
)

// MockStorage is an in-memory implementation of StorageInterface for testing
type MockStorage struct {
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMockStorage creates a new mock storage backend
func NewMockStorage() *MockStorage {
	return &MockStorage{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage instance for testing
func (m *MockStorage) SetAsMockForTesting() {
	SetStorageService(m)
}

// Put stores the artifact in memory and returns a fake URL.
func (m *MockStorage) Put(key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return fmt.Sprintf("https://mock-storage.local/%s", key), nil
}

// Delete removes the artifact from memory.
func (m *MockStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Has reports whether an artifact was stored under key.
func (m *MockStorage) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}
