package store

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/query"
)

// newTestStore creates an opened store on a fresh in-memory backend. The
// sweep interval is long so background maintenance cannot interfere with
// timing-sensitive assertions.
func newTestStore(t *testing.T, opts *Options) IStore {
	t.Helper()
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.SweepInterval = time.Hour
	st := New(backend.NewMemoryBackend(), opts)
	if err := st.Open(); err != nil {
		t.Fatalf("Expected store to open, got error: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// mustCreate registers a collection or fails the test.
func mustCreate(t *testing.T, st IStore, name string, schema document.Schema) {
	t.Helper()
	if err := st.CreateCollection(name, schema); err != nil {
		t.Fatalf("Expected collection %q to be created, got error: %v", name, err)
	}
}

// mustInsert inserts a document or fails the test.
func mustInsert(t *testing.T, st IStore, collection string, doc document.Document) document.Document {
	t.Helper()
	stored, err := st.Insert(collection, doc)
	if err != nil {
		t.Fatalf("Expected insert into %q to succeed, got error: %v", collection, err)
	}
	return stored
}

func TestStoreNotInitialized(t *testing.T) {
	st := New(backend.NewMemoryBackend(), DefaultOptions())

	checks := map[string]error{}
	checks["CreateCollection"] = st.CreateCollection("c", nil)
	_, checks["Collections"] = st.Collections()
	_, checks["Insert"] = st.Insert("c", document.Document{})
	_, _, checks["FindByID"] = st.FindByID("c", "1")
	_, checks["Update"] = st.Update("c", "1", document.Document{})
	_, checks["Delete"] = st.Delete("c", "1")
	_, checks["Query"] = st.Query("c", Query{})
	_, checks["CreateIndex"] = st.CreateIndex("c", "f")
	_, checks["DropIndex"] = st.DropIndex("c", "f")
	_, checks["Indexes"] = st.Indexes("c")
	_, checks["Stats"] = st.Stats()

	for op, err := range checks {
		if !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Expected ErrNotInitialized from %s before Open, got %v", op, err)
		}
	}
}

func TestStoreLifecycle(t *testing.T) {
	st := New(backend.NewMemoryBackend(), DefaultOptions())

	if err := st.Open(); err != nil {
		t.Fatalf("Expected Open to succeed, got error: %v", err)
	}
	if err := st.Open(); err != nil {
		t.Errorf("Expected second Open to be a no-op, got error: %v", err)
	}

	if err := st.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got error: %v", err)
	}

	if err := st.Open(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected reopening a closed store to fail with ErrNotInitialized, got %v", err)
	}
	if _, err := st.Insert("c", document.Document{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized after Close, got %v", err)
	}
}

func TestStoreCreateCollection(t *testing.T) {
	st := newTestStore(t, nil)

	mustCreate(t, st, "users", nil)
	mustCreate(t, st, "articles", nil)

	if err := st.CreateCollection("users", nil); !errors.Is(err, ErrCollectionExists) {
		t.Errorf("Expected ErrCollectionExists for duplicate collection, got %v", err)
	}

	names, err := st.Collections()
	if err != nil {
		t.Fatalf("Expected Collections to succeed, got error: %v", err)
	}
	if len(names) != 2 || names[0] != "articles" || names[1] != "users" {
		t.Errorf("Expected sorted collections [articles users], got %v", names)
	}
}

func TestStoreCollectionNotFound(t *testing.T) {
	st := newTestStore(t, nil)

	checks := map[string]error{}
	_, checks["Insert"] = st.Insert("nope", document.Document{})
	_, _, checks["FindByID"] = st.FindByID("nope", "1")
	_, checks["Update"] = st.Update("nope", "1", document.Document{})
	_, checks["Delete"] = st.Delete("nope", "1")
	_, checks["Query"] = st.Query("nope", Query{})
	_, checks["CreateIndex"] = st.CreateIndex("nope", "f")

	for op, err := range checks {
		if !errors.Is(err, ErrCollectionNotFound) {
			t.Errorf("Expected ErrCollectionNotFound from %s, got %v", op, err)
		}
	}
}

func TestStoreInsertAssignsSystemFields(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	input := document.Document{"name": "alice"}
	stored := mustInsert(t, st, "users", input)

	id, ok := stored[document.FieldID].(string)
	if !ok || id == "" {
		t.Fatalf("Expected a non-empty string id, got %v", stored[document.FieldID])
	}
	created, ok := stored[document.FieldCreated].(string)
	if !ok || created == "" {
		t.Fatalf("Expected a _created timestamp, got %v", stored[document.FieldCreated])
	}
	modified, ok := stored[document.FieldModified].(string)
	if !ok {
		t.Fatalf("Expected a _modified timestamp, got %v", stored[document.FieldModified])
	}
	if created != modified {
		t.Errorf("Expected _created == _modified on first insert, got %q and %q", created, modified)
	}
	if _, err := time.Parse(time.RFC3339Nano, created); err != nil {
		t.Errorf("Expected RFC3339Nano timestamp, got %q (%v)", created, err)
	}

	// the caller's document must stay untouched
	if len(input) != 1 {
		t.Errorf("Expected the input document to remain unmodified, got %v", input)
	}
}

func TestStoreInsertFindByIDRoundTrip(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	input := document.Document{
		"name": "alice",
		"age":  30,
		"tags": []any{"admin", "staff"},
		"address": map[string]any{
			"city": "berlin",
			"zip":  "10115",
		},
	}
	stored := mustInsert(t, st, "users", input)
	id := stored[document.FieldID].(string)

	found, ok, err := st.FindByID("users", id)
	if err != nil {
		t.Fatalf("Expected FindByID to succeed, got error: %v", err)
	}
	if !ok {
		t.Fatalf("Expected document %q to be found", id)
	}

	for field, want := range input {
		if !document.Equals(found[field], want) {
			t.Errorf("Expected field %q = %v after round trip, got %v", field, want, found[field])
		}
	}
	if !document.Equals(found, stored) {
		t.Errorf("Expected FindByID result to equal the insert result, got %v vs %v", found, stored)
	}
}

func TestStoreInsertKeepsCallerID(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	first := mustInsert(t, st, "users", document.Document{"id": "user-1", "name": "alice"})
	if first[document.FieldID] != "user-1" {
		t.Fatalf("Expected caller-supplied id to be kept, got %v", first[document.FieldID])
	}

	// a second insert under the same id is a full overwrite
	mustInsert(t, st, "users", document.Document{"id": "user-1", "name": "bob"})

	found, ok, err := st.FindByID("users", "user-1")
	if err != nil || !ok {
		t.Fatalf("Expected user-1 to be found, got ok=%v err=%v", ok, err)
	}
	if found["name"] != "bob" {
		t.Errorf("Expected the overwrite to win, got name=%v", found["name"])
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatalf("Expected Stats to succeed, got error: %v", err)
	}
	if n := stats.Collections["users"].Documents; n != 1 {
		t.Errorf("Expected 1 document after overwrite, got %d", n)
	}
}

func TestStoreFindByIDMiss(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	doc, ok, err := st.FindByID("users", "missing")
	if err != nil {
		t.Errorf("Expected no error for a missing document, got %v", err)
	}
	if ok || doc != nil {
		t.Errorf("Expected a clean miss, got ok=%v doc=%v", ok, doc)
	}
}

func TestStoreUpdate(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice", "age": 30})
	id := stored[document.FieldID].(string)

	time.Sleep(5 * time.Millisecond) // make the refreshed _modified observable

	updated, err := st.Update("users", id, document.Document{"age": 31, "city": "berlin"})
	if err != nil {
		t.Fatalf("Expected update to succeed, got error: %v", err)
	}

	if updated["name"] != "alice" {
		t.Errorf("Expected untouched fields to survive the merge, got name=%v", updated["name"])
	}
	if !document.Equals(updated["age"], 31) {
		t.Errorf("Expected age=31 after update, got %v", updated["age"])
	}
	if updated["city"] != "berlin" {
		t.Errorf("Expected new field city=berlin, got %v", updated["city"])
	}
	if updated[document.FieldID] != id {
		t.Errorf("Expected the id to be preserved, got %v", updated[document.FieldID])
	}
	if updated[document.FieldCreated] != stored[document.FieldCreated] {
		t.Errorf("Expected _created to be preserved, got %v", updated[document.FieldCreated])
	}
	if updated[document.FieldModified] == stored[document.FieldModified] {
		t.Errorf("Expected _modified to be refreshed, still %v", updated[document.FieldModified])
	}
}

func TestStoreUpdateProtectsSystemFields(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice"})
	id := stored[document.FieldID].(string)

	updated, err := st.Update("users", id, document.Document{
		"id":       "evil",
		"_created": "evil",
		"name":     "bob",
	})
	if err != nil {
		t.Fatalf("Expected update to succeed, got error: %v", err)
	}
	if updated[document.FieldID] != id {
		t.Errorf("Expected the patch's id to be ignored, got %v", updated[document.FieldID])
	}
	if updated[document.FieldCreated] != stored[document.FieldCreated] {
		t.Errorf("Expected the patch's _created to be ignored, got %v", updated[document.FieldCreated])
	}
	if updated["name"] != "bob" {
		t.Errorf("Expected regular fields to merge, got name=%v", updated["name"])
	}
}

func TestStoreUpdateMissingDocument(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	_, err := st.Update("users", "missing", document.Document{"name": "bob"})
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice"})
	id := stored[document.FieldID].(string)

	removed, err := st.Delete("users", id)
	if err != nil {
		t.Fatalf("Expected delete to succeed, got error: %v", err)
	}
	if !removed {
		t.Errorf("Expected delete to report true for an existing document")
	}

	if _, ok, _ := st.FindByID("users", id); ok {
		t.Errorf("Expected document %q to be gone after delete", id)
	}

	removed, err = st.Delete("users", id)
	if err != nil {
		t.Errorf("Expected deleting a missing document to be error-free, got %v", err)
	}
	if removed {
		t.Errorf("Expected delete to report false for a missing document")
	}
}

func TestStoreSchemaValidation(t *testing.T) {
	st := newTestStore(t, nil)
	schema := document.Schema{
		"name": {Type: document.TypeString, Required: true},
		"age":  {Type: document.TypeNumber},
	}
	mustCreate(t, st, "users", schema)

	// missing required field
	_, err := st.Insert("users", document.Document{"age": 30})
	var schemaErr *document.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected a SchemaError for the missing name, got %v", err)
	}
	if schemaErr.Field != "name" {
		t.Errorf("Expected the error to name field %q, got %q", "name", schemaErr.Field)
	}

	// type mismatch
	_, err = st.Insert("users", document.Document{"name": "alice", "age": "thirty"})
	if !errors.As(err, &schemaErr) {
		t.Errorf("Expected a SchemaError for the age type, got %v", err)
	}

	// valid document
	stored := mustInsert(t, st, "users", document.Document{"name": "alice", "age": 30})
	id := stored[document.FieldID].(string)

	// an update may not break the schema either, and a failed update
	// must leave the document untouched
	_, err = st.Update("users", id, document.Document{"age": "thirty-one"})
	if !errors.As(err, &schemaErr) {
		t.Errorf("Expected a SchemaError from the invalid update, got %v", err)
	}
	found, ok, _ := st.FindByID("users", id)
	if !ok || !document.Equals(found["age"], 30) {
		t.Errorf("Expected the document to survive the failed update unchanged, got %v", found)
	}
}

func TestStoreTTLAffectsCacheOnly(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "sessions", nil)

	stored := mustInsert(t, st, "sessions", document.Document{"token": "abc", "_ttl": 20})
	id := stored[document.FieldID].(string)

	if _, ok, _ := st.FindByID("sessions", id); !ok {
		t.Fatalf("Expected the document to be readable right after insert")
	}

	time.Sleep(50 * time.Millisecond)

	// the cache entry is expired by now, the document itself must live on
	found, ok, err := st.FindByID("sessions", id)
	if err != nil || !ok {
		t.Fatalf("Expected the document to outlive its cache lifetime, got ok=%v err=%v", ok, err)
	}
	if found["token"] != "abc" {
		t.Errorf("Expected the stored value after cache expiry, got %v", found["token"])
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatalf("Expected Stats to succeed, got error: %v", err)
	}
	if stats.Cache == nil {
		t.Fatalf("Expected cache stats with caching enabled")
	}
	if stats.Cache.Expirations == 0 {
		t.Errorf("Expected at least one cache expiration, got %d", stats.Cache.Expirations)
	}
}

func TestStoreCacheConsistencyAfterUpdate(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice"})
	id := stored[document.FieldID].(string)

	// populate the cache, then mutate
	if _, ok, _ := st.FindByID("users", id); !ok {
		t.Fatalf("Expected the document to be found")
	}
	if _, err := st.Update("users", id, document.Document{"name": "bob"}); err != nil {
		t.Fatalf("Expected update to succeed, got error: %v", err)
	}

	found, ok, _ := st.FindByID("users", id)
	if !ok || found["name"] != "bob" {
		t.Errorf("Expected the cache to serve the updated document, got %v", found)
	}
}

func TestStoreCacheConsistencyAfterDelete(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice"})
	id := stored[document.FieldID].(string)

	if _, ok, _ := st.FindByID("users", id); !ok {
		t.Fatalf("Expected the document to be found")
	}
	if _, err := st.Delete("users", id); err != nil {
		t.Fatalf("Expected delete to succeed, got error: %v", err)
	}

	if _, ok, _ := st.FindByID("users", id); ok {
		t.Errorf("Expected no cached ghost after delete")
	}
}

func TestStoreCachingDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Caching = false
	st := newTestStore(t, opts)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{"name": "alice"})
	id := stored[document.FieldID].(string)

	found, ok, err := st.FindByID("users", id)
	if err != nil || !ok || found["name"] != "alice" {
		t.Errorf("Expected reads to work without a cache, got ok=%v err=%v doc=%v", ok, err, found)
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatalf("Expected Stats to succeed, got error: %v", err)
	}
	if stats.Cache != nil {
		t.Errorf("Expected no cache stats with caching disabled, got %+v", stats.Cache)
	}
}

func TestStoreReturnedDocumentsAreIsolated(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)

	stored := mustInsert(t, st, "users", document.Document{
		"name":    "alice",
		"address": map[string]any{"city": "berlin"},
	})
	id := stored[document.FieldID].(string)

	// mutate everything the store handed out
	stored["name"] = "mangled"
	stored["address"].(map[string]any)["city"] = "mangled"

	found, _, _ := st.FindByID("users", id)
	if found["name"] != "alice" {
		t.Errorf("Expected stored state to be isolated from the insert result, got %v", found["name"])
	}
	if city := found["address"].(map[string]any)["city"]; city != "berlin" {
		t.Errorf("Expected nested state to be isolated, got %v", city)
	}

	// same for read results
	found["name"] = "mangled"
	found["address"].(map[string]any)["city"] = "mangled"

	again, _, _ := st.FindByID("users", id)
	if again["name"] != "alice" || again["address"].(map[string]any)["city"] != "berlin" {
		t.Errorf("Expected stored state to be isolated from read results, got %v", again)
	}
}

func TestStoreConcurrentInsertMetadata(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "events", nil)

	const (
		goroutines = 8
		perRoutine = 25
	)

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perRoutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perRoutine; i++ {
				_, err := st.Insert("events", document.Document{
					"source": fmt.Sprintf("worker-%d", g),
					"seq":    i,
				})
				if err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Expected concurrent inserts to succeed, got error: %v", err)
	}

	want := goroutines * perRoutine
	stats, err := st.Stats()
	if err != nil {
		t.Fatalf("Expected Stats to succeed, got error: %v", err)
	}
	if n := stats.Collections["events"].Documents; n != want {
		t.Errorf("Expected %d documents after concurrent inserts, got %d", want, n)
	}
	if stats.TotalDocuments != want {
		t.Errorf("Expected total of %d documents, got %d", want, stats.TotalDocuments)
	}

	docs, err := st.Query("events", Query{})
	if err != nil {
		t.Fatalf("Expected query to succeed, got error: %v", err)
	}
	if len(docs) != want {
		t.Errorf("Expected the query to see all %d documents, got %d", want, len(docs))
	}
}

func TestStoreConcurrentMixedOperations(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "items", nil)

	seed := mustInsert(t, st, "items", document.Document{"name": "seed", "hits": 0})
	seedID := seed[document.FieldID].(string)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := st.Insert("items", document.Document{"worker": g, "seq": i}); err != nil {
					errs <- err
				}
				if _, _, err := st.FindByID("items", seedID); err != nil {
					errs <- err
				}
				if _, err := st.Update("items", seedID, document.Document{"hits": i}); err != nil {
					errs <- err
				}
				if _, err := st.Query("items", Query{Filter: query.Filter{"worker": g}}); err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Expected concurrent mixed operations to succeed, got error: %v", err)
	}

	stats, _ := st.Stats()
	if n := stats.Collections["items"].Documents; n != 41 {
		t.Errorf("Expected 41 documents (1 seed + 40 inserts), got %d", n)
	}
}

func TestStorePersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	schema := document.Schema{"name": {Type: document.TypeString, Required: true}}

	open := func() IStore {
		t.Helper()
		b, err := backend.NewSQLiteBackend(path, nil)
		if err != nil {
			t.Fatalf("Expected the sqlite backend to open, got error: %v", err)
		}
		opts := DefaultOptions()
		opts.SweepInterval = time.Hour
		st := New(b, opts)
		if err := st.Open(); err != nil {
			t.Fatalf("Expected the store to open, got error: %v", err)
		}
		return st
	}

	st := open()
	mustCreate(t, st, "users", schema)
	mustCreate(t, st, "notes", nil)
	alice := mustInsert(t, st, "users", document.Document{"name": "alice", "age": 30})
	mustInsert(t, st, "users", document.Document{"id": "u-2", "name": "bob"})
	mustInsert(t, st, "notes", document.Document{"text": "hello"})
	aliceID := alice[document.FieldID].(string)
	if err := st.Close(); err != nil {
		t.Fatalf("Expected Close to succeed, got error: %v", err)
	}

	st = open()
	defer st.Close()

	names, err := st.Collections()
	if err != nil {
		t.Fatalf("Expected Collections to succeed after reopen, got error: %v", err)
	}
	if len(names) != 2 || names[0] != "notes" || names[1] != "users" {
		t.Errorf("Expected collections [notes users] after reopen, got %v", names)
	}

	found, ok, err := st.FindByID("users", aliceID)
	if err != nil || !ok {
		t.Fatalf("Expected alice to survive the reopen, got ok=%v err=%v", ok, err)
	}
	if found["name"] != "alice" || !document.Equals(found["age"], 30) {
		t.Errorf("Expected alice's fields to survive, got %v", found)
	}

	docs, err := st.Query("users", Query{Filter: query.Filter{"name": "bob"}})
	if err != nil {
		t.Fatalf("Expected query to succeed after reopen, got error: %v", err)
	}
	if len(docs) != 1 || docs[0][document.FieldID] != "u-2" {
		t.Errorf("Expected to find bob under his caller-supplied id, got %v", docs)
	}

	// the schema must have been restored as well
	if _, err := st.Insert("users", document.Document{"age": 1}); err == nil {
		t.Errorf("Expected the restored schema to reject a document without name")
	}
}

func TestStoreWriteMetrics(t *testing.T) {
	st := newTestStore(t, nil)
	mustCreate(t, st, "users", nil)
	mustInsert(t, st, "users", document.Document{"name": "alice"})
	if _, err := st.Query("users", Query{}); err != nil {
		t.Fatalf("Expected query to succeed, got error: %v", err)
	}

	var buf bytes.Buffer
	st.WriteMetrics(&buf)
	out := buf.String()

	for _, want := range []string{
		`bigbase_store_ops_total{op="insert"} 1`,
		`bigbase_store_ops_total{op="query"} 1`,
		`bigbase_cache_events_total`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected metrics output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestStoreNilOptions(t *testing.T) {
	st := New(backend.NewMemoryBackend(), nil)
	if err := st.Open(); err != nil {
		t.Fatalf("Expected a store with nil options to open, got error: %v", err)
	}
	defer st.Close()

	if err := st.CreateCollection("users", nil); err != nil {
		t.Fatalf("Expected CreateCollection to succeed, got error: %v", err)
	}
	if _, err := st.Insert("users", document.Document{"name": "alice"}); err != nil {
		t.Errorf("Expected insert to succeed with default options, got error: %v", err)
	}
}
