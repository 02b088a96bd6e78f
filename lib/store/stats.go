package store

import (
	"math"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/cache"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

// CollectionStats describes one collection at a point in time. Document
// sizes use the same accounting heuristic as the cache (see
// cache.DefaultCost), so they are estimates, not byte-exact figures.
type CollectionStats struct {
	// Documents is the number of stored documents
	Documents int `json:"documents"`
	// SizeBytes is the accounted size of all documents
	SizeBytes int64 `json:"size_bytes"`
	// AvgDocumentSize is the mean accounted document size
	AvgDocumentSize int `json:"avg_document_size"`
	// MedianDocumentSize is a bucket estimate of the median size
	MedianDocumentSize int `json:"median_document_size"`
	// P95DocumentSize is a bucket estimate of the 95th percentile size
	P95DocumentSize int `json:"p95_document_size"`
	// LastModified is the time of the last completed mutation, zero if
	// the collection was never mutated in this process
	LastModified time.Time `json:"last_modified"`
	// Indexes lists the indexed fields, sorted
	Indexes []string `json:"indexes,omitempty"`
}

// Stats is a point-in-time snapshot of the whole store.
type Stats struct {
	// Collections maps every collection name to its statistics
	Collections map[string]CollectionStats `json:"collections"`
	// TotalDocuments is the document count across all collections
	TotalDocuments int `json:"total_documents"`
	// TotalSizeBytes is the accounted size across all collections
	TotalSizeBytes int64 `json:"total_size_bytes"`
	// Cache is the cache snapshot, nil when caching is disabled
	Cache *cache.Stats `json:"cache,omitempty"`
}

// Stats implements the interface method (docu see store.IStore). It walks
// every collection once, sampling document sizes into a histogram for the
// distribution estimates.
func (s *storeImpl) Stats() (Stats, error) {
	if !s.opened.Load() {
		return Stats{}, ErrNotInitialized
	}

	st := Stats{Collections: make(map[string]CollectionStats)}
	s.collections.Range(func(name string, col *collection) bool {
		h := newSizeHistogram()
		col.docs.Range(func(_ string, doc document.Document) bool {
			h.add(cache.DefaultCost(doc))
			return true
		})

		cs := CollectionStats{
			Documents:          col.docs.Size(),
			SizeBytes:          col.size.Load(),
			AvgDocumentSize:    h.average(),
			MedianDocumentSize: h.percentileEstimate(50),
			P95DocumentSize:    h.percentileEstimate(95),
		}
		if last := col.lastModified.Load(); last > 0 {
			cs.LastModified = time.Unix(0, last).UTC()
		}
		if s.opts.Indexing {
			cs.Indexes = s.indexes.Indexes(name)
		}

		st.Collections[name] = cs
		st.TotalDocuments += cs.Documents
		st.TotalSizeBytes += cs.SizeBytes
		return true
	})

	if s.opts.Caching {
		cs := s.cache.Stats()
		st.Cache = &cs
	}
	return st, nil
}

// --------------------------------------------------------------------------
// Size Histogram
// --------------------------------------------------------------------------

// sizeHistogram tracks the distribution of document sizes in exponential
// buckets, so Stats can report median and percentile estimates without
// keeping every sample. The boundaries cover the realistic document range
// from a few bytes to 64MB; larger documents land in a shared overflow
// bucket.
//
// A histogram is built and read within a single Stats call. It is not safe
// for concurrent use.
type sizeHistogram struct {
	boundaries []int
	buckets    []int64
	count      int64
	sum        int64
}

func newSizeHistogram() *sizeHistogram {
	boundaries := []int{
		16, 64, 256, 1024, 4096, // 16B to 4KB
		16384, 65536, 262144, 1048576, // 16KB to 1MB
		4194304, 16777216, 67108864, // 4MB to 64MB
	}
	return &sizeHistogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)+1),
	}
}

// add records one document size sample.
func (h *sizeHistogram) add(size int) {
	bucket := len(h.boundaries) // overflow bucket for larger values
	for i, boundary := range h.boundaries {
		if size <= boundary {
			bucket = i
			break
		}
	}
	h.buckets[bucket]++
	h.count++
	h.sum += int64(size)
}

// average returns the exact mean over all samples.
func (h *sizeHistogram) average() int {
	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// percentileEstimate returns a bucket-midpoint estimate for the given
// percentile (0-100). The estimate is exact only up to bucket granularity.
func (h *sizeHistogram) percentileEstimate(percentile int) int {
	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	target := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	cumulative := int64(0)
	for i, n := range h.buckets {
		cumulative += n
		if cumulative >= target {
			switch {
			case i == 0:
				return h.boundaries[0] / 2
			case i < len(h.boundaries):
				return (h.boundaries[i-1] + h.boundaries[i]) / 2
			default:
				return h.boundaries[len(h.boundaries)-1] * 2
			}
		}
	}
	return int(h.sum / h.count)
}
