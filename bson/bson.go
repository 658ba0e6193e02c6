// Package bson provides a BSON codec implementation.
//
// BSON documents must be structs or maps at the top level.
package bson

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Codec implements cloak.Codec for BSON.
type Codec struct{}

// New returns a BSON codec.
func New() *Codec {
	return &Codec{}
}

// ContentType returns the MIME type for BSON.
func (c *Codec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
