// Package xml provides an XML codec implementation.
//
// XML cannot decode into interface values, so this codec serves typed
// copies (cloak.CodecCopier) rather than string bodies.
package xml

import (
	"encoding/xml"
)

// Codec implements cloak.Codec for XML.
type Codec struct{}

// New returns an XML codec.
func New() *Codec {
	return &Codec{}
}

// ContentType returns the MIME type for XML.
func (c *Codec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return xml.Marshal(v)
}

// Unmarshal decodes XML data into v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
