package index

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/puzpuzpuz/xsync/v3"
)

// NewMemoryIndexer creates an indexer holding all indexes in memory.
func NewMemoryIndexer() IIndexer {
	return &memoryIndexerImpl{
		collections: xsync.NewMapOf[string, *collectionIndex](),
	}
}

// idSet is the set of document ids sharing one indexed value.
type idSet map[string]struct{}

// collectionIndex holds all field indexes of a single collection. One
// RWMutex guards them together; lookups take the read side.
type collectionIndex struct {
	mu      sync.RWMutex
	byField map[string]map[string]idSet // field -> value key -> ids
}

// memoryIndexerImpl implements the IIndexer interface with one
// collectionIndex per collection in a concurrent map.
type memoryIndexerImpl struct {
	collections *xsync.MapOf[string, *collectionIndex]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see index.IIndexer)
// --------------------------------------------------------------------------

func (m *memoryIndexerImpl) CreateIndex(collection, field string, docs map[string]document.Document) bool {
	ci, _ := m.collections.LoadOrCompute(collection, func() *collectionIndex {
		return &collectionIndex{byField: make(map[string]map[string]idSet)}
	})

	ci.mu.Lock()
	defer ci.mu.Unlock()

	if _, exists := ci.byField[field]; exists {
		return false
	}
	ci.byField[field] = make(map[string]idSet)
	for id, doc := range docs {
		ci.addLocked(field, id, doc)
	}
	return true
}

func (m *memoryIndexerImpl) DropIndex(collection, field string) bool {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return false
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	if _, exists := ci.byField[field]; !exists {
		return false
	}
	delete(ci.byField, field)
	return true
}

func (m *memoryIndexerImpl) HasIndex(collection, field string) bool {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return false
	}

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	_, exists = ci.byField[field]
	return exists
}

func (m *memoryIndexerImpl) Indexes(collection string) []string {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return nil
	}

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	fields := make([]string, 0, len(ci.byField))
	for field := range ci.byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (m *memoryIndexerImpl) Add(collection, id string, doc document.Document) {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	for field := range ci.byField {
		ci.addLocked(field, id, doc)
	}
}

func (m *memoryIndexerImpl) Remove(collection, id string, doc document.Document) {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	for field := range ci.byField {
		ci.removeLocked(field, id, doc)
	}
}

func (m *memoryIndexerImpl) Update(collection, id string, oldDoc, newDoc document.Document) {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()

	for field := range ci.byField {
		ci.removeLocked(field, id, oldDoc)
		ci.addLocked(field, id, newDoc)
	}
}

func (m *memoryIndexerImpl) Lookup(collection, field string, value any) ([]string, bool) {
	ci, exists := m.collections.Load(collection)
	if !exists {
		return nil, false
	}

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	buckets, exists := ci.byField[field]
	if !exists {
		return nil, false
	}
	key, indexable := valueKey(value)
	if !indexable {
		return nil, false
	}

	ids := make([]string, 0, len(buckets[key]))
	for id := range buckets[key] {
		ids = append(ids, id)
	}
	return ids, true
}

// --------------------------------------------------------------------------
// Internals
// --------------------------------------------------------------------------

// addLocked files the document under the index of one field. The caller
// holds the write lock.
func (ci *collectionIndex) addLocked(field, id string, doc document.Document) {
	value, present := doc[field]
	if !present {
		return
	}
	key, indexable := valueKey(value)
	if !indexable {
		return
	}
	bucket, exists := ci.byField[field][key]
	if !exists {
		bucket = make(idSet)
		ci.byField[field][key] = bucket
	}
	bucket[id] = struct{}{}
}

// removeLocked erases the document from the index of one field, dropping
// value buckets that fall empty. The caller holds the write lock.
func (ci *collectionIndex) removeLocked(field, id string, doc document.Document) {
	value, present := doc[field]
	if !present {
		return
	}
	key, indexable := valueKey(value)
	if !indexable {
		return
	}
	bucket, exists := ci.byField[field][key]
	if !exists {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(ci.byField[field], key)
	}
}

// valueKey renders an indexable field value as a canonical map key. Two
// values that compare equal under document.Equals must yield the same key,
// so all numeric widths collapse to one rendering and kinds are prefixed
// to keep e.g. the string "5" apart from the number 5. Arrays, objects and
// unsupported types are not indexable.
func valueKey(value any) (string, bool) {
	switch document.KindOf(value) {
	case document.KindNull:
		return "z:", true
	case document.KindBool:
		if value.(bool) {
			return "b:1", true
		}
		return "b:0", true
	case document.KindNumber:
		return "n:" + formatNumber(value), true
	case document.KindString:
		return "s:" + value.(string), true
	case document.KindTime:
		return "t:" + strconv.FormatInt(value.(time.Time).UnixNano(), 10), true
	case document.KindBytes:
		return "y:" + string(value.([]byte)), true
	default:
		return "", false
	}
}

func formatNumber(value any) string {
	n, _ := document.AsNumber(value)
	return strconv.FormatFloat(n, 'g', -1, 64)
}
