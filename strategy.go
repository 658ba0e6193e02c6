package cloak

// Strategy transforms a sensitive string into its masked form.
//
// Apply must be pure: the same value and args always produce the same
// result, and malformed input returns a best-effort value rather than
// panicking. The engine still recovers a panicking strategy per field.
type Strategy interface {
	// Name returns the registry key this strategy answers to.
	Name() string

	// Apply masks value. Args come from the field directive and may be empty.
	Apply(value string, args []string) string
}

// Lookup is the read side of a Registry.
type Lookup interface {
	Get(name string) (Strategy, bool)
}

type funcStrategy struct {
	name string
	fn   func(value string, args []string) string
}

// StrategyFunc adapts a plain function to the Strategy interface.
func StrategyFunc(name string, fn func(value string, args []string) string) Strategy {
	return &funcStrategy{name: name, fn: fn}
}

func (s *funcStrategy) Name() string { return s.name }

func (s *funcStrategy) Apply(value string, args []string) string {
	return s.fn(value, args)
}

// aliasStrategy answers to a second name while delegating to its target.
type aliasStrategy struct {
	name   string
	target Strategy
}

func (s *aliasStrategy) Name() string { return s.name }

func (s *aliasStrategy) Apply(value string, args []string) string {
	return s.target.Apply(value, args)
}
