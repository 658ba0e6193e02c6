// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Codec implements cloak.Codec for JSON.
//
// Numbers decoded into interface values are kept as json.Number so a body
// passing through a masking round trip keeps its precision. HTML characters
// are not escaped on output.
type Codec struct{}

// New returns a JSON codec.
func New() *Codec {
	return &Codec{}
}

// ContentType returns the MIME type for JSON.
func (c *Codec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON without a trailing newline.
func (c *Codec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes a single JSON value from data into v.
// Trailing data after the value is an error.
func (c *Codec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("json: trailing data after value")
