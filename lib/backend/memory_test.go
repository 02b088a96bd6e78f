package backend_test

import (
	"testing"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend"
	backendtesting "github.com/ByAlphas/BigBaseAlpha-sub000/lib/backend/testing"
)

func TestMemoryBackend(t *testing.T) {
	backendtesting.RunBackendTests(t, "Memory", func() backend.IBackend {
		return backend.NewMemoryBackend()
	})
}

func BenchmarkMemoryBackend(b *testing.B) {
	backendtesting.RunBackendBenchmarks(b, "Memory", func() backend.IBackend {
		return backend.NewMemoryBackend()
	})
}
