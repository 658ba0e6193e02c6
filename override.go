package cloak

// Maskable bypasses reflection for mutate mode.
// When a struct implements it (on its pointer receiver), the engine calls
// Mask instead of walking the struct's fields.
//
// This provides two benefits:
// 1. Performance: Avoid reflection overhead for hot paths
// 2. Custom logic: Masking that can't be expressed via tags
//
// The receiver is always part of a private copy, so mutations are safe.
// Returning an error reports a field failure; the copy is still returned.
type Maskable interface {
	Mask(strategies Lookup) error
}
