package metastore

import (
	"sort"
	"sync"

	"github.com/starford/modeler/internal/apperr"
)

type memKey struct {
	kind Kind
	name string
}

// Memory is an in-process Store, mostly for tests and one-shot CLI runs.
type Memory struct {
	mu    sync.RWMutex
	blobs map[memKey][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[memKey][]byte)}
}

// Get implements Store.
func (m *Memory) Get(kind Kind, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[memKey{kind, name}]
	if !ok {
		return nil, apperr.ErrNotFound.New(string(kind), name)
	}
	return append([]byte(nil), b...), nil
}

// Put implements Store.
func (m *Memory) Put(kind Kind, name string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[memKey{kind, name}] = append([]byte(nil), blob...)
	return nil
}

// Create implements Store.
func (m *Memory) Create(kind Kind, name string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{kind, name}
	if _, ok := m.blobs[k]; ok {
		return apperr.ErrNameConflict.New(string(kind), name)
	}
	m.blobs[k] = append([]byte(nil), blob...)
	return nil
}

// List implements Store.
func (m *Memory) List(kind Kind) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.blobs {
		if k.kind == kind {
			out = append(out, k.name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Delete implements Store.
func (m *Memory) Delete(kind Kind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, memKey{kind, name})
	return nil
}

// Checksums implements Store.
func (m *Memory) Checksums(kind Kind) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for k, b := range m.blobs {
		if k.kind == kind {
			out[k.name] = Checksum(b)
		}
	}
	return out, nil
}
