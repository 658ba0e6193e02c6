package cloak

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DefaultFingerprintLength is the number of hex characters a fingerprint keeps.
const DefaultFingerprintLength = 12

// fingerprintStrategy replaces a value with a BLAKE2b-256 hex prefix:
// alice@example.com -> 5b7c1e09a4f3
type fingerprintStrategy struct {
	key []byte
}

// FingerprintStrategy returns an unkeyed fingerprint strategy.
// Equal inputs yield equal tokens, so masked log lines stay correlatable.
// The first arg overrides the token length (1 to 64 hex characters).
func FingerprintStrategy() Strategy {
	return &fingerprintStrategy{}
}

// FingerprintStrategyWithKey returns a keyed fingerprint strategy.
// Keys longer than 64 bytes are rejected by BLAKE2b; the strategy then
// falls back to a full mask.
func FingerprintStrategyWithKey(key []byte) Strategy {
	k := make([]byte, len(key))
	copy(k, key)
	return &fingerprintStrategy{key: k}
}

func (*fingerprintStrategy) Name() string { return StrategyFingerprint }

func (s *fingerprintStrategy) Apply(value string, args []string) string {
	n := DefaultFingerprintLength
	if len(args) > 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil && v > 0 {
			n = min(v, blake2b.Size256*2)
		}
	}

	h, err := blake2b.New256(s.key)
	if err != nil {
		return maskAll(value)
	}
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))[:n]
}
