package query

import (
	"slices"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// SortField names a document field to order by. Multiple sort fields apply
// lexicographically: later fields only break ties left by earlier ones.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// Sort orders docs in place. The sort is stable, so documents that compare
// equal on every sort field keep their relative order. Documents missing a
// sort field order before all documents that have it (see document.Order);
// descending order inverts this. An empty field list leaves docs untouched.
func Sort(docs []document.Document, fields []SortField) {
	if len(fields) == 0 || len(docs) < 2 {
		return
	}
	slices.SortStableFunc(docs, func(a, b document.Document) int {
		for _, f := range fields {
			result := document.Order(a[f.Field], b[f.Field])
			if result == 0 {
				continue
			}
			if f.Desc {
				return -result
			}
			return result
		}
		return 0
	})
}
