package cloak

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProcessResponseBody masks a response body before it is serialized.
//
// Strings go through ProcessStringBody, anything else through Mutate.
// Masking never fails a response: on any error or panic the original body
// is returned and the problem is logged.
func (e *Engine) ProcessResponseBody(ctx context.Context, body any) (out any) {
	if body == nil {
		return nil
	}
	if s, ok := body.(string); ok {
		return e.ProcessStringBody(ctx, s)
	}

	defer func() {
		if r := recover(); r != nil {
			e.passthrough(ctx, typeNameOf(body), fmt.Errorf("panic: %v", r))
			out = body
		}
	}()

	masked, err := e.Mutate(ctx, body)
	if err != nil {
		e.passthrough(ctx, typeNameOf(body), err)
		return body
	}
	return masked
}

// ProcessStringBody masks a JSON-shaped string body.
//
// A body whose trimmed form starts and ends with {} or [] is parsed with
// the engine codec, run through mutate mode and re-encoded. Anything else
// is returned unchanged; so is a body that fails to parse.
func (e *Engine) ProcessStringBody(ctx context.Context, body string) (out string) {
	trimmed := strings.TrimSpace(body)
	if !looksStructured(trimmed) {
		return body
	}

	defer func() {
		if r := recover(); r != nil {
			e.passthrough(ctx, "string", fmt.Errorf("panic: %v", r))
			out = body
		}
	}()

	var parsed any
	if err := e.codec.Unmarshal([]byte(trimmed), &parsed); err != nil {
		e.passthrough(ctx, "string", newCodecError(ErrUnmarshal, err))
		return body
	}

	start := time.Now()
	w := e.newWalker(ctx, modeMutate)
	masked := e.maskValue(w, parsed)
	e.finish(w, start, parsed)

	data, err := e.codec.Marshal(masked)
	if err != nil {
		e.passthrough(ctx, "string", newCodecError(ErrMarshal, err))
		return body
	}
	return string(bytes.TrimRight(data, "\n"))
}

// MaskJSON decodes body into T, masks it and encodes it again with the
// engine codec. Unlike ProcessStringBody the directives of T apply.
func MaskJSON[T any](ctx context.Context, e *Engine, body []byte) ([]byte, error) {
	var v T
	if err := e.codec.Unmarshal(body, &v); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}

	start := time.Now()
	w := e.newWalker(ctx, modeMutate)
	e.maskInPlace(w, reflect.ValueOf(&v).Elem())
	e.finish(w, start, v)

	data, err := e.codec.Marshal(v)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// SafeString is Stringify for log adapters: it never panics. When the
// traversal fails, fail-open engines fall back to fmt's %+v rendering and
// fail-closed engines to [unmaskable: Type].
func (e *Engine) SafeString(ctx context.Context, v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			name := typeNameOf(v)
			e.logger.Error("stringify failed",
				zap.String("type", name),
				zap.Any("panic", r),
			)
			emitBodyPassthrough(ctx, name, fmt.Errorf("panic: %v", r))
			if e.policy == FailClosed {
				out = "[unmaskable: " + name + "]"
				return
			}
			out = fmt.Sprintf("%+v", v)
		}
	}()
	return e.Stringify(ctx, v)
}

func (e *Engine) passthrough(ctx context.Context, name string, err error) {
	e.logger.Warn("response body returned unmasked",
		zap.String("type", name),
		zap.Error(err),
	)
	emitBodyPassthrough(ctx, name, err)
}

// finish records a completed traversal.
func (e *Engine) finish(w *walker, start time.Time, v any) {
	e.finishErr(w, start, v, nil)
}

func (e *Engine) finishErr(w *walker, start time.Time, v any, err error) {
	elapsed := time.Since(start)
	e.metrics.traversal(w.mode, elapsed)
	emitTraversalComplete(w.ctx, w.mode, typeNameOf(v), elapsed, w.masked, w.cycles, w.failures, err)
}

func looksStructured(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

func typeNameOf(v any) string {
	if v == nil {
		return "nil"
	}
	return typeName(reflect.TypeOf(v))
}
