package query

import (
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// Project reduces a document to the named fields. Fields that do not exist
// in the document are simply absent from the result, an empty non-nil field
// list therefore yields an empty document. A nil field list disables
// projection and returns the document unchanged. Field values are shared
// with the input, not copied.
func Project(doc document.Document, fields []string) document.Document {
	if fields == nil {
		return doc
	}
	out := make(document.Document, len(fields))
	for _, f := range fields {
		if value, ok := doc[f]; ok {
			out[f] = value
		}
	}
	return out
}
