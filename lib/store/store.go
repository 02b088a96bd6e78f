package store

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/cache"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/index"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/lockmgr"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/query"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// --------------------------------------------------------------------------
// Collection State
// --------------------------------------------------------------------------

// collection is the in-memory state of one named document set. The
// document map is the authoritative source for queries and point reads;
// size and lastModified are derived metadata updated with every mutation.
type collection struct {
	name   string
	schema document.Schema
	docs   *xsync.MapOf[string, document.Document]

	size         atomic.Int64 // accounted bytes of all documents
	lastModified atomic.Int64 // unix nanoseconds of the last completed mutation
}

func newCollection(name string, schema document.Schema) *collection {
	return &collection{
		name:   name,
		schema: schema,
		docs:   xsync.NewMapOf[string, document.Document](),
	}
}

// touch records a completed mutation in the collection metadata.
func (c *collection) touch(sizeDelta int64) {
	c.size.Add(sizeDelta)
	c.lastModified.Store(time.Now().UnixNano())
}

// --------------------------------------------------------------------------
// Store Implementation
// --------------------------------------------------------------------------

// storeImpl implements the IStore interface. It composes the four
// collaborators: the lock manager serializes mutations per collection, the
// backend persists them, the cache serves repeated point reads and the
// indexer narrows equality queries.
type storeImpl struct {
	opts    Options
	logger  zerolog.Logger
	backend backend.IBackend

	collections *xsync.MapOf[string, *collection]
	locks       lockmgr.ILockManager
	cache       cache.ICache
	indexes     index.IIndexer

	// lifecycle guards Open and Close; the atomics answer the hot-path
	// initialization checks without it
	lifecycle sync.Mutex
	opened    atomic.Bool
	closed    atomic.Bool

	metrics       *metrics.Set
	metricInserts *metrics.Counter
	metricUpdates *metrics.Counter
	metricDeletes *metrics.Counter
	metricFinds   *metrics.Counter
	metricQueries *metrics.Counter
}

// New creates a store on top of the given backend. The store takes
// ownership of the backend and closes it on Close. The store is not usable
// until Open has succeeded.
func New(b backend.IBackend, opts *Options) IStore {
	if opts == nil {
		opts = DefaultOptions()
	}

	set := metrics.NewSet()
	return &storeImpl{
		opts:          *opts,
		logger:        opts.Logger.With().Str("component", "store").Logger(),
		backend:       b,
		collections:   xsync.NewMapOf[string, *collection](),
		locks:         lockmgr.NewLockManager(),
		indexes:       index.NewMemoryIndexer(),
		metrics:       set,
		metricInserts: set.GetOrCreateCounter(`bigbase_store_ops_total{op="insert"}`),
		metricUpdates: set.GetOrCreateCounter(`bigbase_store_ops_total{op="update"}`),
		metricDeletes: set.GetOrCreateCounter(`bigbase_store_ops_total{op="delete"}`),
		metricFinds:   set.GetOrCreateCounter(`bigbase_store_ops_total{op="find"}`),
		metricQueries: set.GetOrCreateCounter(`bigbase_store_ops_total{op="query"}`),
	}
}

// --------------------------------------------------------------------------
// Internal Helpers
// --------------------------------------------------------------------------

// mutateKey returns the resource key under which all mutations of a
// collection serialize.
func mutateKey(collection string) string {
	return "mutate:" + collection
}

// cacheKey returns the cache key of a single document.
func cacheKey(collection, id string) string {
	return collection + ":" + id
}

// guard answers the precondition checks shared by all per-collection
// operations: the store must be open and the collection must exist.
func (s *storeImpl) guard(name string) (*collection, error) {
	if !s.opened.Load() {
		return nil, ErrNotInitialized
	}
	col, ok := s.collections.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	return col, nil
}

// docTTL returns the cache lifetime of a document: the value of its
// numeric _ttl field (milliseconds, zero meaning no expiry) or the
// configured default.
func (s *storeImpl) docTTL(doc document.Document) time.Duration {
	if raw, ok := doc[document.FieldTTL]; ok {
		if ms, ok := document.AsNumber(raw); ok && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return s.opts.CacheTTL
}

// cacheStore writes a document through to the cache. The cache receives
// its own deep copy so cached state can never alias kernel state.
func (s *storeImpl) cacheStore(collection, id string, doc document.Document) {
	if !s.opts.Caching {
		return
	}
	s.cache.SetE(cacheKey(collection, id), document.Clone(doc), s.docTTL(doc))
}

// cacheDrop removes a document from the cache.
func (s *storeImpl) cacheDrop(collection, id string) {
	if !s.opts.Caching {
		return
	}
	s.cache.Delete(cacheKey(collection, id))
}

// equalityValue reduces a field clause to the single value it requires if
// it is an equality clause: either a literal value or an operator map
// containing $eq. The boolean reports whether such a value exists.
func equalityValue(cond any) (any, bool) {
	switch m := cond.(type) {
	case query.Filter:
		v, ok := m[query.OpEq]
		return v, ok
	case map[string]any:
		v, ok := m[query.OpEq]
		return v, ok
	}
	return cond, true
}

// indexCandidates returns the candidate ids of the first top-level
// equality clause that is backed by an index. The boolean reports whether
// any clause could be answered; false means the query must scan.
func (s *storeImpl) indexCandidates(collection string, f query.Filter) ([]string, bool) {
	if !s.opts.Indexing {
		return nil, false
	}
	for field, cond := range f {
		if strings.HasPrefix(field, "$") {
			continue
		}
		value, ok := equalityValue(cond)
		if !ok {
			continue
		}
		if ids, ok := s.indexes.Lookup(collection, field, value); ok {
			return ids, true
		}
	}
	return nil, false
}

// scan returns all documents of the collection matching the filter. If an
// equality index narrows the candidate set it is consulted first, but
// every candidate is still verified against the full filter; the index is
// purely an acceleration structure. The returned documents are the stored
// instances, callers must clone before handing them out.
func (s *storeImpl) scan(col *collection, f query.Filter) ([]document.Document, error) {
	var matched []document.Document

	if ids, ok := s.indexCandidates(col.name, f); ok {
		for _, id := range ids {
			doc, ok := col.docs.Load(id)
			if !ok {
				continue
			}
			m, err := query.Match(doc, f)
			if err != nil {
				return nil, err
			}
			if m {
				matched = append(matched, doc)
			}
		}
		return matched, nil
	}

	var matchErr error
	col.docs.Range(func(_ string, doc document.Document) bool {
		if f == nil {
			matched = append(matched, doc)
			return true
		}
		m, err := query.Match(doc, f)
		if err != nil {
			matchErr = err
			return false
		}
		if m {
			matched = append(matched, doc)
		}
		return true
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return matched, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store.IStore)
// --------------------------------------------------------------------------

func (s *storeImpl) Open() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed.Load() {
		return fmt.Errorf("%w: store is closed", ErrNotInitialized)
	}
	if s.opened.Load() {
		return nil
	}

	cols, err := s.backend.Collections()
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	for name, blob := range cols {
		var schema document.Schema
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &schema); err != nil {
				return fmt.Errorf("failed to decode schema of collection %q: %w", name, err)
			}
		}

		col := newCollection(name, schema)
		docs, err := s.backend.ListDocuments(name)
		if err != nil {
			return fmt.Errorf("failed to load collection %q: %w", name, err)
		}

		var size, last int64
		for id, doc := range docs {
			col.docs.Store(id, doc)
			size += int64(cache.DefaultCost(doc))
			if ts, ok := doc[document.FieldModified].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, ts); err == nil && t.UnixNano() > last {
					last = t.UnixNano()
				}
			}
		}
		col.size.Store(size)
		col.lastModified.Store(last)

		s.collections.Store(name, col)
		s.logger.Debug().Str("collection", name).Int("documents", len(docs)).Msg("loaded collection")
	}

	if s.opts.Caching {
		s.cache = cache.NewCache(&cache.Options{
			MaxMemory:     s.opts.MaxMemory,
			MaxItems:      s.opts.MaxCacheItems,
			DefaultTTL:    s.opts.CacheTTL,
			SweepInterval: s.opts.SweepInterval,
			Logger:        s.opts.Logger,
			Metrics:       s.metrics,
		})
	}

	s.opened.Store(true)
	s.logger.Debug().Int("collections", len(cols)).Msg("store opened")
	return nil
}

func (s *storeImpl) Close() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed.Load() {
		return nil
	}
	s.closed.Store(true)
	s.opened.Store(false)

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error().Err(err).Msg("failed to stop cache maintenance")
		}
	}
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("failed to close backend: %w", err)
	}

	s.logger.Debug().Msg("store closed")
	return nil
}

func (s *storeImpl) CreateCollection(name string, schema document.Schema) error {
	if !s.opened.Load() {
		return ErrNotInitialized
	}
	if _, ok := s.collections.Load(name); ok {
		return fmt.Errorf("%w: %q", ErrCollectionExists, name)
	}

	var blob []byte
	if len(schema) > 0 {
		b, err := json.Marshal(schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema of collection %q: %w", name, err)
		}
		blob = b
	}
	if err := s.backend.EnsureCollection(name, blob); err != nil {
		return err
	}

	// LoadOrCompute decides the winner if two creates race; the backend
	// registration above is idempotent so the loser has done no harm.
	if _, loaded := s.collections.LoadOrCompute(name, func() *collection {
		return newCollection(name, schema)
	}); loaded {
		return fmt.Errorf("%w: %q", ErrCollectionExists, name)
	}

	s.logger.Debug().Str("collection", name).Bool("schema", len(schema) > 0).Msg("created collection")
	return nil
}

func (s *storeImpl) Collections() ([]string, error) {
	if !s.opened.Load() {
		return nil, ErrNotInitialized
	}
	names := make([]string, 0, s.collections.Size())
	s.collections.Range(func(name string, _ *collection) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names, nil
}

func (s *storeImpl) Insert(name string, doc document.Document) (document.Document, error) {
	col, err := s.guard(name)
	if err != nil {
		return nil, err
	}

	stored := document.Clone(doc)
	if _, ok := stored[document.FieldID].(string); !ok {
		stored[document.FieldID] = document.NewID()
	}
	now := document.Timestamp(time.Now())
	if _, ok := stored[document.FieldCreated]; !ok {
		stored[document.FieldCreated] = now
	}
	if _, ok := stored[document.FieldModified]; !ok {
		stored[document.FieldModified] = now
	}
	if err := col.schema.Validate(stored); err != nil {
		return nil, err
	}

	id := stored[document.FieldID].(string)
	err = s.locks.WithLock(mutateKey(name), func() error {
		if err := s.backend.Insert(name, id, stored); err != nil {
			return err
		}

		prev, replaced := col.docs.Load(id)
		col.docs.Store(id, stored)

		delta := int64(cache.DefaultCost(stored))
		if replaced {
			delta -= int64(cache.DefaultCost(prev))
		}
		col.touch(delta)

		if s.opts.Indexing {
			if replaced {
				s.indexes.Update(name, id, prev, stored)
			} else {
				s.indexes.Add(name, id, stored)
			}
		}
		s.cacheStore(name, id, stored)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metricInserts.Inc()
	s.logger.Debug().Str("collection", name).Str("id", id).Msg("inserted document")
	return document.Clone(stored), nil
}

func (s *storeImpl) FindByID(name, id string) (document.Document, bool, error) {
	col, err := s.guard(name)
	if err != nil {
		return nil, false, err
	}
	s.metricFinds.Inc()

	if s.opts.Caching {
		if v, ok := s.cache.Get(cacheKey(name, id)); ok {
			// An unexpected cache payload degrades to a miss, the
			// sources of truth below still answer.
			if doc, ok := v.(document.Document); ok {
				return document.Clone(doc), true, nil
			}
		}
	}

	if doc, ok := col.docs.Load(id); ok {
		s.cacheStore(name, id, doc)
		return document.Clone(doc), true, nil
	}

	doc, found, err := s.backend.FindByID(name, id)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	s.cacheStore(name, id, doc)
	return document.Clone(doc), true, nil
}

func (s *storeImpl) Update(name, id string, patch document.Document) (document.Document, error) {
	col, err := s.guard(name)
	if err != nil {
		return nil, err
	}

	patch = document.Clone(patch)
	var merged document.Document
	err = s.locks.WithLock(mutateKey(name), func() error {
		prev, ok := col.docs.Load(id)
		if !ok {
			return fmt.Errorf("%w: %q in collection %q", ErrDocumentNotFound, id, name)
		}

		merged = document.Merged(prev, patch)
		merged[document.FieldID] = id
		if created, ok := prev[document.FieldCreated]; ok {
			merged[document.FieldCreated] = created
		} else {
			delete(merged, document.FieldCreated)
		}
		merged[document.FieldModified] = document.Timestamp(time.Now())

		if err := col.schema.Validate(merged); err != nil {
			return err
		}
		if err := s.backend.Update(name, id, merged); err != nil {
			return err
		}

		col.docs.Store(id, merged)
		col.touch(int64(cache.DefaultCost(merged)) - int64(cache.DefaultCost(prev)))

		if s.opts.Indexing {
			s.indexes.Update(name, id, prev, merged)
		}
		s.cacheStore(name, id, merged)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metricUpdates.Inc()
	s.logger.Debug().Str("collection", name).Str("id", id).Msg("updated document")
	return document.Clone(merged), nil
}

func (s *storeImpl) Delete(name, id string) (bool, error) {
	col, err := s.guard(name)
	if err != nil {
		return false, err
	}

	removed := false
	err = s.locks.WithLock(mutateKey(name), func() error {
		prev, ok := col.docs.Load(id)
		if !ok {
			return nil
		}
		if err := s.backend.Delete(name, id); err != nil {
			return err
		}

		col.docs.Delete(id)
		col.touch(-int64(cache.DefaultCost(prev)))

		if s.opts.Indexing {
			s.indexes.Remove(name, id, prev)
		}
		s.cacheDrop(name, id)
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.metricDeletes.Inc()
		s.logger.Debug().Str("collection", name).Str("id", id).Msg("deleted document")
	}
	return removed, nil
}

func (s *storeImpl) Query(name string, q Query) ([]document.Document, error) {
	col, err := s.guard(name)
	if err != nil {
		return nil, err
	}

	// Validation runs before any document is looked at so that a
	// malformed filter fails identically on full and empty collections.
	if q.Filter != nil {
		if err := query.Validate(q.Filter); err != nil {
			return nil, err
		}
	}

	matched, err := s.scan(col, q.Filter)
	if err != nil {
		return nil, err
	}

	query.Sort(matched, q.Sort)
	page := query.Paginate(matched, q.Offset, q.Limit)

	out := make([]document.Document, len(page))
	for i, doc := range page {
		out[i] = document.Clone(query.Project(doc, q.Projection))
	}

	s.metricQueries.Inc()
	return out, nil
}

func (s *storeImpl) CreateIndex(name, field string) (bool, error) {
	col, err := s.guard(name)
	if err != nil {
		return false, err
	}
	if !s.opts.Indexing {
		return false, ErrIndexingDisabled
	}

	// Building under the mutation key keeps the snapshot complete: no
	// document can be written while the index bootstraps, and every
	// later mutation maintains it incrementally.
	created := false
	err = s.locks.WithLock(mutateKey(name), func() error {
		snapshot := make(map[string]document.Document, col.docs.Size())
		col.docs.Range(func(id string, doc document.Document) bool {
			snapshot[id] = doc
			return true
		})
		created = s.indexes.CreateIndex(name, field, snapshot)
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		s.logger.Debug().Str("collection", name).Str("field", field).Msg("created index")
	}
	return created, nil
}

func (s *storeImpl) DropIndex(name, field string) (bool, error) {
	if _, err := s.guard(name); err != nil {
		return false, err
	}
	if !s.opts.Indexing {
		return false, ErrIndexingDisabled
	}

	dropped := s.indexes.DropIndex(name, field)
	if dropped {
		s.logger.Debug().Str("collection", name).Str("field", field).Msg("dropped index")
	}
	return dropped, nil
}

func (s *storeImpl) Indexes(name string) ([]string, error) {
	if _, err := s.guard(name); err != nil {
		return nil, err
	}
	if !s.opts.Indexing {
		return nil, ErrIndexingDisabled
	}
	return s.indexes.Indexes(name), nil
}

func (s *storeImpl) WriteMetrics(w io.Writer) {
	s.metrics.WritePrometheus(w)
}
