package object

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// MemStore is an in-memory Database. It keeps uncompressed envelopes and is
// safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	objects map[Hash][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[Hash][]byte)}
}

// Put stores a copy of envelope.
func (m *MemStore) Put(envelope []byte) (Hash, error) {
	if err := checkEnvelope(envelope); err != nil {
		return "", fmt.Errorf("object put: %w", err)
	}
	h := HashEnvelope(envelope)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[h]; !ok {
		m.objects[h] = bytes.Clone(envelope)
	}
	return h, nil
}

// Get returns a copy of the stored envelope.
func (m *MemStore) Get(h Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	envelope, ok := m.objects[h]
	if !ok {
		return nil, fmt.Errorf("object get %s: %w", h, ErrNotFound)
	}
	return bytes.Clone(envelope), nil
}

// Has reports whether h is stored.
func (m *MemStore) Has(h Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[h]
	return ok
}

// Candidates lists stored hashes beginning with prefix.
func (m *MemStore) Candidates(prefix string) ([]Hash, error) {
	prefix = strings.ToLower(prefix)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Hash
	for h := range m.objects {
		if strings.HasPrefix(string(h), prefix) {
			out = append(out, h)
		}
	}
	return out, nil
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
