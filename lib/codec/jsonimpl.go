package codec

import (
	"encoding/json"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// NewJSONCodec creates a new codec using json encoding. Decoded numbers
// come back as float64, which the document comparison semantics absorb.
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICodec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl) Encode(doc document.Document) ([]byte, error) {
	return json.Marshal(doc)
}

func (j jsonCodecImpl) Decode(b []byte, doc *document.Document) error {
	return json.Unmarshal(b, doc)
}
