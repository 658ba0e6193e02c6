// Package cloak masks sensitive fields in arbitrary object graphs before
// they reach a log sink or an HTTP response.
//
// Fields opt in through a struct tag naming a strategy and optional args:
//
//	mask:"{STRATEGY}[,arg...]"
//
// For example:
//
//	type User struct {
//	    Name    string `mask:"NAME"`
//	    Phone   string `mask:"PHONE"`
//	    Card    string `mask:"BANK,6,4"`
//	    Balance string `mask:"AMOUNT,1,*,true"`
//	    Secret  string `mask:"-"`
//	}
//
// The tag "-" hides a field from both modes.
//
// # Modes
//
// An Engine walks a graph in one of two modes:
//
//   - Stringify renders the graph as text, masking tagged strings on the
//     fly. The input is only read. Log adapters use it.
//   - Mutate deep-copies the graph and masks the copy in place. The input
//     is never modified. Response adapters use it.
//
// Both modes recurse through pointers, interfaces, slices, arrays, maps and
// structs. Embedded structs contribute their fields before the embedding
// type's own fields. A reference that is revisited on the current path is
// a cycle and is cut; a value reached twice along different paths is not.
//
// # Basic Usage
//
//	e := cloak.New(cloak.WithLogger(logger))
//
//	line := e.Stringify(ctx, user)   // User{Name=张*, Phone=138****5678, ...}
//	masked, _ := cloak.MaskCopy(ctx, e, user)
//	body := e.ProcessResponseBody(ctx, response)
//
// # Strategies
//
// Strategies are looked up by name in a Registry at the moment a field is
// masked. Built-ins: PHONE, EMAIL, ID_CARD (alias ID_CAR), ADDRESS, NAME,
// BANK, AMOUNT, SSN, CARD, IP, UUID, IBAN, REDACT, FINGERPRINT. Register
// custom ones with Register or Registry.Register. A directive naming an
// unknown strategy leaves the value as it is (FailOpen) or masks it fully
// (FailClosed).
//
// # Failure Handling
//
// Masking never drops a log line or fails a response. Field failures are
// logged and counted; the traversal continues. ProcessResponseBody and
// SafeString recover from anything else and return the input.
//
// # Override Interfaces
//
// Types can bypass reflection in mutate mode by implementing Maskable, and
// can provide their own deep copy by implementing Cloner.
//
// # Codec Providers
//
// Codecs live in subpackages: json, yaml, msgpack, xml, bson. The engine
// codec parses string bodies; CodecCopier copies through any of them.
package cloak

import "context"

// String renders v with the default engine. It never panics.
func String(v any) string {
	return Default().SafeString(context.Background(), v)
}

// Mask returns a masked copy of v made by the default engine.
func Mask[T any](ctx context.Context, v T) (T, error) {
	return MaskCopy(ctx, Default(), v)
}
