// Package echomask masks echo JSON responses.
//
//	e := echo.New()
//	echomask.Install(e, engine)
//
// After Install every c.JSON and c.JSONPretty body passes through
// Engine.ProcessResponseBody before it is encoded.
package echomask

import (
	"github.com/labstack/echo/v4"

	"github.com/zoobzio/cloak"
)

// Serializer is an echo.JSONSerializer that masks bodies before encoding.
type Serializer struct {
	engine *cloak.Engine
	next   echo.JSONSerializer
}

var _ echo.JSONSerializer = (*Serializer)(nil)

// NewSerializer wraps next. A nil next means echo.DefaultJSONSerializer and
// a nil engine means cloak.Default().
func NewSerializer(engine *cloak.Engine, next echo.JSONSerializer) *Serializer {
	if engine == nil {
		engine = cloak.Default()
	}
	if next == nil {
		next = echo.DefaultJSONSerializer{}
	}
	return &Serializer{engine: engine, next: next}
}

// Serialize masks i and encodes it with the wrapped serializer.
func (s *Serializer) Serialize(c echo.Context, i interface{}, indent string) error {
	masked := s.engine.ProcessResponseBody(c.Request().Context(), i)
	return s.next.Serialize(c, masked, indent)
}

// Deserialize delegates to the wrapped serializer. Request bodies are not masked.
func (s *Serializer) Deserialize(c echo.Context, i interface{}) error {
	return s.next.Deserialize(c, i)
}

// Install replaces the JSON serializer of e with a masking one wrapping
// the current serializer.
func Install(e *echo.Echo, engine *cloak.Engine) *Serializer {
	s := NewSerializer(engine, e.JSONSerializer)
	e.JSONSerializer = s
	return s
}
