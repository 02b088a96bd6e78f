package testing

import (
	"fmt"
	"testing"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// RunBackendBenchmarks runs all benchmarks for an IBackend implementation.
func RunBackendBenchmarks(b *testing.B, name string, factory BackendFactory) {
	b.Run("Insert", func(b *testing.B) {
		benchmarkInsert(b, factory())
	})

	b.Run("InsertExisting", func(b *testing.B) {
		benchmarkInsertExisting(b, factory())
	})

	b.Run("FindByID", func(b *testing.B) {
		benchmarkFindByID(b, factory())
	})

	b.Run("ListDocuments", func(b *testing.B) {
		benchmarkListDocuments(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// benchDoc returns a small realistic document body.
func benchDoc(i int) document.Document {
	return document.Document{
		"id":     fmt.Sprintf("doc-%d", i),
		"name":   "benchmark document",
		"n":      float64(i),
		"active": i%2 == 0,
		"tags":   []any{"bench", "mark"},
	}
}

func benchmarkInsert(b *testing.B, be backend.IBackend) {
	defer be.Close()
	mustEnsureB(b, be, "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := be.Insert("bench", fmt.Sprintf("doc-%d", i), benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkInsertExisting(b *testing.B, be backend.IBackend) {
	defer be.Close()
	mustEnsureB(b, be, "bench")

	if err := be.Insert("bench", "doc", benchDoc(0)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := be.Insert("bench", "doc", benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkFindByID(b *testing.B, be backend.IBackend) {
	defer be.Close()
	mustEnsureB(b, be, "bench")

	const docs = 1000
	for i := 0; i < docs; i++ {
		if err := be.Insert("bench", fmt.Sprintf("doc-%d", i), benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := be.FindByID("bench", fmt.Sprintf("doc-%d", i%docs)); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkListDocuments(b *testing.B, be backend.IBackend) {
	defer be.Close()
	mustEnsureB(b, be, "bench")

	const docs = 1000
	for i := 0; i < docs; i++ {
		if err := be.Insert("bench", fmt.Sprintf("doc-%d", i), benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := be.ListDocuments("bench"); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkDelete(b *testing.B, be backend.IBackend) {
	defer be.Close()
	mustEnsureB(b, be, "bench")

	for i := 0; i < b.N; i++ {
		if err := be.Insert("bench", fmt.Sprintf("doc-%d", i), benchDoc(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := be.Delete("bench", fmt.Sprintf("doc-%d", i)); err != nil {
			b.Fatal(err)
		}
	}
}

func mustEnsureB(b *testing.B, be backend.IBackend, name string) {
	b.Helper()
	if err := be.EnsureCollection(name, nil); err != nil {
		b.Fatalf("Failed to register collection %s: %v", name, err)
	}
}
