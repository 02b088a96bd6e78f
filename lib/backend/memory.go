package backend

import (
	"sync"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// NewMemoryBackend creates a backend that keeps everything in process
// memory. Nothing survives a restart; the implementation exists for tests,
// benchmarks and ephemeral instances.
func NewMemoryBackend() IBackend {
	return &memoryBackendImpl{
		schemas: make(map[string][]byte),
		docs:    make(map[string]map[string]document.Document),
	}
}

// memoryBackendImpl implements the IBackend interface on two plain maps.
// Documents are deep-copied on the way in and out so callers can never
// alias backend state.
type memoryBackendImpl struct {
	mu      sync.RWMutex
	schemas map[string][]byte
	docs    map[string]map[string]document.Document
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend.IBackend)
// --------------------------------------------------------------------------

func (m *memoryBackendImpl) EnsureCollection(name string, schema []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schemas[name] = schema
	if _, exists := m.docs[name]; !exists {
		m.docs[name] = make(map[string]document.Document)
	}
	return nil
}

func (m *memoryBackendImpl) Collections() (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.schemas))
	for name, schema := range m.schemas {
		out[name] = schema
	}
	return out, nil
}

func (m *memoryBackendImpl) Insert(collection, id string, doc document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, exists := m.docs[collection]
	if !exists {
		docs = make(map[string]document.Document)
		m.docs[collection] = docs
	}
	docs[id] = document.Clone(doc)
	return nil
}

func (m *memoryBackendImpl) Update(collection, id string, doc document.Document) error {
	return m.Insert(collection, id, doc)
}

func (m *memoryBackendImpl) Delete(collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if docs, exists := m.docs[collection]; exists {
		delete(docs, id)
	}
	return nil
}

func (m *memoryBackendImpl) FindByID(collection, id string) (document.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, exists := m.docs[collection]
	if !exists {
		return nil, false, nil
	}
	doc, exists := docs[id]
	if !exists {
		return nil, false, nil
	}
	return document.Clone(doc), true, nil
}

func (m *memoryBackendImpl) ListDocuments(collection string) (map[string]document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.docs[collection]
	out := make(map[string]document.Document, len(docs))
	for id, doc := range docs {
		out[id] = document.Clone(doc)
	}
	return out, nil
}

func (m *memoryBackendImpl) Close() error {
	return nil
}
