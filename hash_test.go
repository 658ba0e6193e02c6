package cloak

import (
	"encoding/hex"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestFingerprintStrategy(t *testing.T) {
	s := FingerprintStrategy()

	sum := blake2b.Sum256([]byte("alice@example.com"))
	full := hex.EncodeToString(sum[:])

	tests := []struct {
		args     []string
		expected string
	}{
		{nil, full[:DefaultFingerprintLength]},
		{[]string{"8"}, full[:8]},
		{[]string{"500"}, full},
		{[]string{"0"}, full[:DefaultFingerprintLength]},
		{[]string{"abc"}, full[:DefaultFingerprintLength]},
	}

	for _, tt := range tests {
		result := s.Apply("alice@example.com", tt.args)
		if result != tt.expected {
			t.Errorf("FingerprintStrategy(%v) = %q, want %q", tt.args, result, tt.expected)
		}
	}
}

func TestFingerprintStrategy_Deterministic(t *testing.T) {
	s := FingerprintStrategy()

	a := s.Apply("13812345678", nil)
	b := s.Apply("13812345678", nil)
	if a != b {
		t.Errorf("fingerprints differ for equal input: %q vs %q", a, b)
	}
	if c := s.Apply("13812345679", nil); c == a {
		t.Error("fingerprints should differ for different input")
	}
}

func TestFingerprintStrategyWithKey(t *testing.T) {
	keyed := FingerprintStrategyWithKey([]byte("k1"))
	unkeyed := FingerprintStrategy()

	if keyed.Apply("secret", nil) == unkeyed.Apply("secret", nil) {
		t.Error("keyed fingerprint should differ from unkeyed")
	}
	if keyed.Name() != StrategyFingerprint {
		t.Errorf("Name() = %q, want %q", keyed.Name(), StrategyFingerprint)
	}
}

func TestFingerprintStrategyWithKey_TooLong(t *testing.T) {
	s := FingerprintStrategyWithKey([]byte(strings.Repeat("k", 65)))

	if got := s.Apply("secret", nil); got != "******" {
		t.Errorf("Apply() with oversized key = %q, want %q", got, "******")
	}
}
