package cloak

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

const (
	modeStringify = "stringify"
	modeMutate    = "mutate"
)

// walker holds the state of one traversal. It is never shared between calls.
type walker struct {
	e       *Engine
	ctx     context.Context
	mode    string
	visited map[identity]struct{}
	depth   int

	masked   int
	cycles   int
	failures int
	capped   bool
}

func (e *Engine) newWalker(ctx context.Context, mode string) *walker {
	if ctx == nil {
		ctx = context.Background()
	}
	return &walker{
		e:       e,
		ctx:     ctx,
		mode:    mode,
		visited: make(map[identity]struct{}),
	}
}

// enter records id on the current path. It returns false when id is
// already on the path, which means the graph closes a cycle here.
func (w *walker) enter(id identity) bool {
	if _, seen := w.visited[id]; seen {
		w.cycles++
		w.e.metrics.cycle(w.mode)
		emitCycleDetected(w.ctx, w.mode, typeName(id.typ))
		return false
	}
	w.visited[id] = struct{}{}
	return true
}

func (w *walker) leave(id identity) {
	delete(w.visited, id)
}

// descend increments the depth, reporting false once the limit is passed.
func (w *walker) descend() bool {
	if w.depth >= w.e.maxDepth {
		if !w.capped {
			w.capped = true
			w.e.logger.Warn("traversal depth limit reached",
				zap.String("mode", w.mode),
				zap.Int("max_depth", w.e.maxDepth),
			)
			emitDepthExceeded(w.ctx, w.mode, w.e.maxDepth)
		}
		return false
	}
	w.depth++
	return true
}

func (w *walker) ascend() {
	w.depth--
}

// descriptor returns the descriptor of t, reporting an invalid tag once per
// type. A type whose tags fail to parse keeps its remaining directives.
func (w *walker) descriptor(t reflect.Type) *Descriptor {
	entry := describe(t)
	if entry.err != nil {
		entry.report.Do(func() {
			w.e.logger.Warn("invalid mask tag",
				zap.String("type", t.String()),
				zap.Error(entry.err),
			)
		})
	}
	return entry.desc
}

// apply masks value with the strategy named by the field directive.
// Unknown strategies and strategy panics resolve through the engine policy.
func (w *walker) apply(owner string, f *Field, value string) string {
	strategy, ok := w.e.registry.Get(f.Directive.Strategy)
	if !ok {
		if w.e.policy == FailClosed {
			return maskAll(value)
		}
		return value
	}

	out, err := safeApply(strategy, value, f.Directive.Args)
	if err != nil {
		w.fail(owner, f.Name, "apply", err)
		return w.fallback(value)
	}

	w.masked++
	w.e.metrics.fieldMasked(f.Directive.Strategy)
	return out
}

func safeApply(s Strategy, value string, args []string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", s.Name(), r)
		}
	}()
	return s.Apply(value, args), nil
}

// fallback is the value a field keeps when masking it failed.
func (w *walker) fallback(value string) string {
	if w.e.policy == FailClosed {
		return maskAll(value)
	}
	return value
}

// fail records a recovered field failure. The traversal continues.
func (w *walker) fail(owner, field, operation string, cause error) {
	w.failures++
	w.e.metrics.fieldFailure(w.mode)

	base := ErrFieldAccess
	if operation == "apply" {
		base = ErrStrategyPanic
	}
	err := newTransformError(base, operation, owner+"."+field, cause)

	w.e.logger.Warn("field masking skipped",
		zap.String("mode", w.mode),
		zap.String("type", owner),
		zap.String("field", field),
		zap.Error(err),
	)
	emitFieldSkipped(w.ctx, w.mode, owner, field, err)
}

// stringTarget unwraps interfaces and non-nil pointers down to a string
// value. It reports false for anything else.
func stringTarget(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return v, true
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isStringSlice(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String
}

func isStringMap(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.String
}
