package testing

import (
	"fmt"
	"testing"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// BackendFactory is a function that creates a fresh instance of an
// IBackend implementation.
type BackendFactory func() backend.IBackend

// RunBackendTests runs a comprehensive conformance suite for an IBackend
// implementation.
func RunBackendTests(t *testing.T, name string, factory BackendFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("EnsureCollection", func(t *testing.T) {
			testEnsureCollection(t, factory())
		})

		t.Run("Insert&Find", func(t *testing.T) {
			testInsertFind(t, factory())
		})

		t.Run("Update", func(t *testing.T) {
			testUpdate(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("ListDocuments", func(t *testing.T) {
			testListDocuments(t, factory())
		})

		t.Run("Isolation", func(t *testing.T) {
			testIsolation(t, factory())
		})

		t.Run("NestedValues", func(t *testing.T) {
			testNestedValues(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testEnsureCollection(t *testing.T, b backend.IBackend) {
	defer b.Close()

	schema := []byte(`{"name":{"type":"string"}}`)

	if err := b.EnsureCollection("users", schema); err != nil {
		t.Fatalf("Failed to register collection: %v", err)
	}
	if err := b.EnsureCollection("events", nil); err != nil {
		t.Fatalf("Failed to register schemaless collection: %v", err)
	}

	// Re-registering must be idempotent
	if err := b.EnsureCollection("users", schema); err != nil {
		t.Errorf("Expected repeated registration to succeed, got %v", err)
	}

	cols, err := b.Collections()
	if err != nil {
		t.Fatalf("Failed to list collections: %v", err)
	}
	if len(cols) != 2 {
		t.Errorf("Expected 2 collections, got %d", len(cols))
	}
	if string(cols["users"]) != string(schema) {
		t.Errorf("Expected schema blob to survive, got %s", cols["users"])
	}
	if cols["events"] != nil {
		t.Errorf("Expected nil schema for schemaless collection, got %s", cols["events"])
	}
}

func testInsertFind(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	doc := document.Document{
		"id":   "u-1",
		"name": "alice",
		"age":  float64(30),
	}

	if err := b.Insert("users", "u-1", doc); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	got, found, err := b.FindByID("users", "u-1")
	if err != nil {
		t.Fatalf("Failed to find: %v", err)
	}
	if !found {
		t.Fatal("Expected document to be found")
	}
	if !document.Equals(doc, got) {
		t.Errorf("Expected stored document %v, got %v", doc, got)
	}

	// Missing ids and unknown collections are not errors
	if _, found, err := b.FindByID("users", "nope"); err != nil || found {
		t.Errorf("Expected clean miss for unknown id, got found=%v err=%v", found, err)
	}
	if _, found, err := b.FindByID("ghosts", "u-1"); err != nil || found {
		t.Errorf("Expected clean miss for unknown collection, got found=%v err=%v", found, err)
	}
}

func testUpdate(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	if err := b.Insert("users", "u-1", document.Document{"name": "alice", "age": float64(30)}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	// Update replaces the full body, dropped fields stay dropped
	if err := b.Update("users", "u-1", document.Document{"name": "bob"}); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	got, found, err := b.FindByID("users", "u-1")
	if err != nil || !found {
		t.Fatalf("Expected document after update, got found=%v err=%v", found, err)
	}
	if got["name"] != "bob" {
		t.Errorf("Expected updated name, got %v", got["name"])
	}
	if _, stillThere := got["age"]; stillThere {
		t.Errorf("Expected dropped field to vanish, got %v", got)
	}
}

func testDelete(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	if err := b.Insert("users", "u-1", document.Document{"name": "alice"}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	if err := b.Delete("users", "u-1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found, _ := b.FindByID("users", "u-1"); found {
		t.Error("Expected document to be gone after delete")
	}

	// Deletes are idempotent
	if err := b.Delete("users", "u-1"); err != nil {
		t.Errorf("Expected repeated delete to succeed, got %v", err)
	}
	if err := b.Delete("ghosts", "u-1"); err != nil {
		t.Errorf("Expected delete on unknown collection to succeed, got %v", err)
	}
}

func testListDocuments(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	const n = 25
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u-%d", i)
		if err := b.Insert("users", id, document.Document{"id": id, "n": float64(i)}); err != nil {
			t.Fatalf("Failed to insert %s: %v", id, err)
		}
	}

	docs, err := b.ListDocuments("users")
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) != n {
		t.Errorf("Expected %d documents, got %d", n, len(docs))
	}
	if !document.Equals(docs["u-7"]["n"], 7) {
		t.Errorf("Expected document u-7 to hold n=7, got %v", docs["u-7"])
	}

	// Unknown collections list empty, not error
	empty, err := b.ListDocuments("ghosts")
	if err != nil {
		t.Fatalf("Expected empty list for unknown collection, got %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no documents, got %d", len(empty))
	}
}

func testIsolation(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	original := document.Document{"name": "alice", "tags": []any{"a", "b"}}
	if err := b.Insert("users", "u-1", original); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	// Mutating the inserted document after the fact must not leak in
	original["name"] = "mutated"

	got, _, err := b.FindByID("users", "u-1")
	if err != nil {
		t.Fatalf("Failed to find: %v", err)
	}
	if got["name"] != "alice" {
		t.Errorf("Expected backend to hold its own copy, got %v", got["name"])
	}

	// Mutating a returned document must not leak in either
	got["name"] = "also mutated"
	again, _, err := b.FindByID("users", "u-1")
	if err != nil {
		t.Fatalf("Failed to re-find: %v", err)
	}
	if again["name"] != "alice" {
		t.Errorf("Expected returned documents to be isolated, got %v", again["name"])
	}
}

func testNestedValues(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")
	doc := document.Document{
		"profile": map[string]any{
			"city": "berlin",
			"geo":  map[string]any{"lat": 52.5, "lon": 13.4},
		},
		"tags":   []any{"a", "b", "c"},
		"scores": []any{float64(1), float64(2)},
	}

	if err := b.Insert("users", "u-1", doc); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	got, found, err := b.FindByID("users", "u-1")
	if err != nil || !found {
		t.Fatalf("Expected nested document back, got found=%v err=%v", found, err)
	}
	if !document.Equals(doc, got) {
		t.Errorf("Expected nested values to survive, got %v", got)
	}
}

func testEdgeCases(t *testing.T, b backend.IBackend) {
	defer b.Close()

	mustEnsure(t, b, "users")

	// Empty documents are storable
	if err := b.Insert("users", "empty", document.Document{}); err != nil {
		t.Fatalf("Failed to insert empty document: %v", err)
	}
	got, found, err := b.FindByID("users", "empty")
	if err != nil || !found {
		t.Fatalf("Expected empty document back, got found=%v err=%v", found, err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty document, got %v", got)
	}

	// Inserting twice overwrites
	if err := b.Insert("users", "dup", document.Document{"v": float64(1)}); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert("users", "dup", document.Document{"v": float64(2)}); err != nil {
		t.Fatal(err)
	}
	got, _, _ = b.FindByID("users", "dup")
	if !document.Equals(got["v"], 2) {
		t.Errorf("Expected second insert to win, got %v", got["v"])
	}

	// Ids with awkward characters
	weird := `sp ace:"quote'\backslash`
	if err := b.Insert("users", weird, document.Document{"ok": true}); err != nil {
		t.Fatalf("Failed to insert weird id: %v", err)
	}
	if _, found, _ := b.FindByID("users", weird); !found {
		t.Error("Expected weird id to round trip")
	}
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustEnsure(t *testing.T, b backend.IBackend, name string) {
	t.Helper()
	if err := b.EnsureCollection(name, nil); err != nil {
		t.Fatalf("Failed to register collection %s: %v", name, err)
	}
}
