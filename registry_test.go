package cloak

import (
	"strings"
	"sync"
	"testing"
)

func upper() Strategy {
	return StrategyFunc("UPPER", func(value string, _ []string) string {
		return strings.ToUpper(value)
	})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(upper())

	s, ok := r.Get("UPPER")
	if !ok {
		t.Fatal("Get(UPPER) not found after Register")
	}
	if got := s.Apply("abc", nil); got != "ABC" {
		t.Errorf("Apply() = %q, want %q", got, "ABC")
	}

	if _, ok := r.Get("LOWER"); ok {
		t.Error("Get(LOWER) should report absent")
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry(upper())
	r.Register(StrategyFunc("UPPER", func(string, []string) string { return "replaced" }))

	s, _ := r.Get("UPPER")
	if got := s.Apply("abc", nil); got != "replaced" {
		t.Errorf("Apply() = %q, want %q", got, "replaced")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_IgnoresInvalid(t *testing.T) {
	r := NewRegistry(nil, StrategyFunc("", nil))
	r.Register(nil)
	r.Register(StrategyFunc("", nil))

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry(upper())
	r.Unregister("UPPER").Unregister("MISSING")

	if _, ok := r.Get("UPPER"); ok {
		t.Error("Get(UPPER) should report absent after Unregister")
	}
}

func TestRegistry_Alias(t *testing.T) {
	r := NewRegistry(upper())

	if !r.Alias("SHOUT", "UPPER") {
		t.Fatal("Alias(SHOUT, UPPER) = false, want true")
	}
	if r.Alias("WHISPER", "LOWER") {
		t.Error("Alias to an unknown target should fail")
	}

	s, ok := r.Get("SHOUT")
	if !ok {
		t.Fatal("Get(SHOUT) not found")
	}
	if s.Name() != "SHOUT" {
		t.Errorf("Name() = %q, want %q", s.Name(), "SHOUT")
	}
	if got := s.Apply("abc", nil); got != "ABC" {
		t.Errorf("Apply() = %q, want %q", got, "ABC")
	}
}

func TestNewBuiltinRegistry(t *testing.T) {
	r := NewBuiltinRegistry()

	for name := range builtinNames {
		if _, ok := r.Get(name); !ok {
			t.Errorf("builtin %q not registered", name)
		}
	}

	s, _ := r.Get(StrategyIDCar)
	if got := s.Apply("110101199003071234", nil); got != "110101*********234" {
		t.Errorf("ID_CAR alias = %q, want %q", got, "110101*********234")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(RedactStrategy(), PhoneStrategy(), EmailStrategy())

	got := strings.Join(r.Names(), ",")
	if got != "EMAIL,PHONE,REDACT" {
		t.Errorf("Names() = %q, want %q", got, "EMAIL,PHONE,REDACT")
	}
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	r := NewRegistry(upper())
	before := r.strategies.Load()

	r.Register(RedactStrategy())

	if _, ok := (*before)[StrategyRedact]; ok {
		t.Error("Register modified a published snapshot")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewBuiltinRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register(upper())
				r.Unregister("UPPER")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := r.Get(StrategyPhone); !ok {
					t.Error("PHONE disappeared during concurrent writes")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != defaultRegistry {
		t.Error("DefaultRegistry() returned a different registry")
	}
	if _, ok := LookupStrategy(StrategyPhone); !ok {
		t.Error("LookupStrategy(PHONE) not found")
	}
}
