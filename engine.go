package cloak

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/zoobzio/cloak/json"
)

// DefaultMaxDepth bounds nesting when no WithMaxDepth option is given.
const DefaultMaxDepth = 256

// Policy decides what a field becomes when masking it fails.
type Policy int

const (
	// FailOpen keeps the raw value. Observability wins over secrecy.
	FailOpen Policy = iota

	// FailClosed replaces the value with one '*' per rune.
	FailClosed
)

func (p Policy) String() string {
	switch p {
	case FailOpen:
		return "fail-open"
	case FailClosed:
		return "fail-closed"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "fail-open" or "fail-closed", case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail-open", "open":
		return FailOpen, nil
	case "fail-closed", "closed":
		return FailClosed, nil
	}
	return FailOpen, fmt.Errorf("unknown policy %q", s)
}

// Engine walks object graphs and masks fields carrying a mask directive.
//
// An Engine is immutable after New and safe for concurrent use. Each call
// keeps its own visited set and counters, so concurrent traversals never
// share state.
type Engine struct {
	registry  Lookup
	logger    *zap.Logger
	metrics   *metrics
	codec     Codec
	copier    Copier
	maxDepth  int
	policy    Policy
	quoted    bool
	leafTypes map[reflect.Type]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the strategy source. Defaults to DefaultRegistry().
func WithRegistry(r Lookup) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger sets the logger used for warnings. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics registers traversal metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = newMetrics(reg)
	}
}

// WithCodec sets the codec used to parse and re-encode string bodies.
// Defaults to JSON.
func WithCodec(c Codec) Option {
	return func(e *Engine) {
		if c != nil {
			e.codec = c
		}
	}
}

// WithCopier sets how Mutate makes its private copy.
// Defaults to a reflective deep copy.
func WithCopier(c Copier) Option {
	return func(e *Engine) {
		if c != nil {
			e.copier = c
		}
	}
}

// WithMaxDepth bounds how deep a traversal descends. Non-positive values
// restore DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		e.maxDepth = n
	}
}

// WithPolicy sets the failure policy. Defaults to FailOpen.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithQuotedStrings wraps rendered strings in double quotes.
func WithQuotedStrings() Option {
	return func(e *Engine) {
		e.quoted = true
	}
}

// WithLeafTypes marks additional types as leaves: they are rendered
// through their String method or kind and never descended into.
func WithLeafTypes(types ...reflect.Type) Option {
	return func(e *Engine) {
		for _, t := range types {
			if t != nil {
				e.leafTypes[t] = true
			}
		}
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:  DefaultRegistry(),
		logger:    zap.NewNop(),
		codec:     json.New(),
		copier:    ReflectCopier(),
		maxDepth:  DefaultMaxDepth,
		policy:    FailOpen,
		leafTypes: make(map[reflect.Type]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine atomic.Pointer[Engine]

// Default returns the process-wide engine, creating it on first use.
func Default() *Engine {
	if e := defaultEngine.Load(); e != nil {
		return e
	}
	defaultEngine.CompareAndSwap(nil, New())
	return defaultEngine.Load()
}

// SetDefault replaces the process-wide engine.
func SetDefault(e *Engine) {
	if e != nil {
		defaultEngine.Store(e)
	}
}

// Registry returns the strategy source of the engine.
func (e *Engine) Registry() Lookup {
	return e.registry
}

// Policy returns the failure policy of the engine.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Codec returns the codec used for string bodies.
func (e *Engine) Codec() Codec {
	return e.codec
}
