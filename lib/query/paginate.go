package query

import (
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// Paginate selects the page of docs starting at offset with at most limit
// entries. A negative offset is treated as zero, an offset past the end
// yields an empty page, and a limit of zero or less means unlimited. The
// returned slice aliases docs, no documents are copied.
func Paginate(docs []document.Document, offset, limit int) []document.Document {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(docs) {
		return []document.Document{}
	}
	page := docs[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	return page
}
