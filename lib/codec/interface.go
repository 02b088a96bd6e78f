package codec

import "github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"

// ICodec is the interface for all document codecs. A codec turns a
// document into a byte slice suitable for durable storage and back.
type ICodec interface {
	// Encode serializes a document into a byte array.
	// It returns the serialized byte array and an error if any.
	Encode(doc document.Document) ([]byte, error)
	// Decode deserializes a byte array into a document.
	// It takes a byte array and a pointer to a document as parameters.
	// It returns an error if any.
	Decode(b []byte, doc *document.Document) error
}
