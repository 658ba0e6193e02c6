// Package zapmask renders masked values in zap log entries.
//
// Use Any for a single field:
//
//	logger.Info("login", zapmask.Any("user", user))
//
// or wrap the core so every reflected field is masked:
//
//	logger := zap.New(core, zapmask.WrapCore(engine))
package zapmask

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/cloak"
)

// Any returns a field rendered by the default engine when the entry is written.
func Any(key string, v any) zap.Field {
	return AnyWith(cloak.Default(), key, v)
}

// AnyWith returns a field rendered by e when the entry is written.
// A nil engine means cloak.Default().
func AnyWith(e *cloak.Engine, key string, v any) zap.Field {
	if e == nil {
		e = cloak.Default()
	}
	return zap.Stringer(key, rendering{e: e, v: v})
}

// Reflect returns a field holding a masked copy of v, encoded by the
// encoder's reflection (JSON for the JSON encoder).
func Reflect(e *cloak.Engine, key string, v any) zap.Field {
	if e == nil {
		e = cloak.Default()
	}
	return zap.Reflect(key, e.ProcessResponseBody(context.Background(), v))
}

type rendering struct {
	e *cloak.Engine
	v any
}

func (r rendering) String() string {
	return r.e.SafeString(context.Background(), r.v)
}

// WrapCore returns an option that masks reflected fields (zap.Any and
// zap.Reflect on non-primitive values) before they reach the core.
func WrapCore(e *cloak.Engine) zap.Option {
	if e == nil {
		e = cloak.Default()
	}
	return zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &core{Core: c, e: e}
	})
}

type core struct {
	zapcore.Core
	e *cloak.Engine
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	return &core{Core: c.Core.With(c.mask(fields)), e: c.e}
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, c.mask(fields))
}

func (c *core) mask(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.ReflectType && f.Interface != nil {
			f = zap.String(f.Key, c.e.SafeString(context.Background(), f.Interface))
		}
		out[i] = f
	}
	return out
}
