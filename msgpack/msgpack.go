// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec implements cloak.Codec for MessagePack.
// Maps decoded into interface values use string keys.
type Codec struct{}

// New returns a MessagePack codec.
func New() *Codec {
	return &Codec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *Codec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (c *Codec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetMapDecoder(func(d *msgpack.Decoder) (any, error) {
		return d.DecodeMap()
	})
	return dec.Decode(v)
}
