package cloak

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for masking events.
var (
	SignalStringifyComplete  = capitan.NewSignal("cloak.stringify.complete", "Stringify traversal finished")
	SignalMutateComplete     = capitan.NewSignal("cloak.mutate.complete", "Mutate traversal finished")
	SignalFieldSkipped       = capitan.NewSignal("cloak.field.skipped", "Field could not be masked")
	SignalCycleDetected      = capitan.NewSignal("cloak.cycle.detected", "Reference cycle cut during traversal")
	SignalDepthExceeded      = capitan.NewSignal("cloak.depth.exceeded", "Traversal depth limit reached")
	SignalBodyPassthrough    = capitan.NewSignal("cloak.body.passthrough", "Body returned unmasked after a failure")
	SignalStrategyRegistered = capitan.NewSignal("cloak.strategy.registered", "Strategy registered")
	SignalTypePrepared       = capitan.NewSignal("cloak.type.prepared", "Type descriptor prepared")
)

// Keys for typed event data.
var (
	KeyMode        = capitan.NewStringKey("mode")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyField       = capitan.NewStringKey("field")
	KeyStrategy    = capitan.NewStringKey("strategy")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
	KeyMaskedCount = capitan.NewIntKey("masked_count")
	KeyCycleCount  = capitan.NewIntKey("cycle_count")
	KeyFailedCount = capitan.NewIntKey("failed_count")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyMaxDepth    = capitan.NewIntKey("max_depth")
)

// emitTraversalComplete emits an event when a traversal finishes.
func emitTraversalComplete(ctx context.Context, mode, typeName string, duration time.Duration, masked, cycles, failed int, err error) {
	signal := SignalStringifyComplete
	if mode == modeMutate {
		signal = SignalMutateComplete
	}

	fields := []capitan.Field{
		KeyMode.Field(mode),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
		KeyCycleCount.Field(cycles),
		KeyFailedCount.Field(failed),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, signal, fields...)
	} else {
		capitan.Emit(ctx, signal, fields...)
	}
}

// emitFieldSkipped emits an event when a field could not be masked.
func emitFieldSkipped(ctx context.Context, mode, typeName, field string, err error) {
	capitan.Emit(ctx, SignalFieldSkipped,
		KeyMode.Field(mode),
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
		KeyError.Field(err),
	)
}

// emitCycleDetected emits an event when a traversal cuts a cycle.
func emitCycleDetected(ctx context.Context, mode, typeName string) {
	capitan.Emit(ctx, SignalCycleDetected,
		KeyMode.Field(mode),
		KeyTypeName.Field(typeName),
	)
}

// emitDepthExceeded emits an event when a traversal hits the depth limit.
func emitDepthExceeded(ctx context.Context, mode string, maxDepth int) {
	capitan.Emit(ctx, SignalDepthExceeded,
		KeyMode.Field(mode),
		KeyMaxDepth.Field(maxDepth),
	)
}

// emitBodyPassthrough emits an event when a body is returned unmasked.
func emitBodyPassthrough(ctx context.Context, typeName string, err error) {
	capitan.Error(ctx, SignalBodyPassthrough,
		KeyTypeName.Field(typeName),
		KeyError.Field(err),
	)
}

// emitStrategyRegistered emits an event when a strategy is registered.
func emitStrategyRegistered(ctx context.Context, name string) {
	capitan.Emit(ctx, SignalStrategyRegistered,
		KeyStrategy.Field(name),
	)
}

// emitTypePrepared emits an event when a descriptor is built ahead of use.
func emitTypePrepared(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalTypePrepared,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}
