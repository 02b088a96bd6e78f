package codec

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

func init() {
	// Concrete types that may appear behind the any-typed document fields
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register([]byte{})
	gob.Register(time.Time{})
	gob.Register(document.Document{})
}

// NewGOBCodec creates a new codec using Go's binary gob format. Gob
// preserves Go types exactly (an int stays an int), but cannot encode
// explicit nil field values; documents relying on null fields should use
// the json codec instead.
func NewGOBCodec() ICodec {
	return &gobCodecImpl{}
}

// gobCodecImpl implements the ICodec interface using gob encoding
type gobCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (g gobCodecImpl) Encode(doc document.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobCodecImpl) Decode(b []byte, doc *document.Document) error {
	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)
	return dec.Decode(doc)
}
