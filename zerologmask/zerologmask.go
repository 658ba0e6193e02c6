// Package zerologmask renders masked values in zerolog events.
//
//	log.Info().Stringer("user", zerologmask.Masked(engine, user)).Msg("login")
//	log.Info().Object("user", zerologmask.Masked(engine, user)).Msg("login")
package zerologmask

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zoobzio/cloak"
	"github.com/zoobzio/cloak/json"
)

// Value is a value masked on demand. It renders as a masked line through
// String and as a masked JSON object through MarshalZerologObject.
type Value struct {
	e *cloak.Engine
	v any
}

// Masked wraps v for masking by e. A nil engine means cloak.Default().
func Masked(e *cloak.Engine, v any) Value {
	if e == nil {
		e = cloak.Default()
	}
	return Value{e: e, v: v}
}

// String returns the stringify rendering of the value.
func (m Value) String() string {
	return m.e.SafeString(context.Background(), m.v)
}

// MarshalZerologObject writes the fields of a masked copy of the value.
// Values that do not encode as a JSON object are written under "value".
func (m Value) MarshalZerologObject(ev *zerolog.Event) {
	masked := m.e.ProcessResponseBody(context.Background(), m.v)

	codec := json.New()
	data, err := codec.Marshal(masked)
	if err != nil {
		ev.Str("value", m.String())
		return
	}

	var fields map[string]any
	if err := codec.Unmarshal(data, &fields); err != nil {
		ev.Interface("value", masked)
		return
	}
	ev.Fields(fields)
}

// Str adds the stringify rendering of v under key.
func Str(ev *zerolog.Event, e *cloak.Engine, key string, v any) *zerolog.Event {
	return ev.Stringer(key, Masked(e, v))
}

// Interface adds a masked copy of v under key, encoded as JSON.
func Interface(ev *zerolog.Event, e *cloak.Engine, key string, v any) *zerolog.Event {
	if e == nil {
		e = cloak.Default()
	}
	return ev.Interface(key, e.ProcessResponseBody(context.Background(), v))
}
