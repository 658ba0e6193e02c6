package cloak

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ssnStrategy masks SSN format: 123-45-6789 -> ***-**-6789
type ssnStrategy struct{}

// SSNStrategy returns the SSN strategy.
// Preserves the last 4 digits, masks everything else.
func SSNStrategy() Strategy {
	return ssnStrategy{}
}

func (ssnStrategy) Name() string { return StrategySSN }

func (ssnStrategy) Apply(value string, _ []string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return maskAll(value)
	}
	return "***-**-" + digits[len(digits)-4:]
}

// cardStrategy masks card format: 4111111111111111 -> ************1111
type cardStrategy struct{}

// CardStrategy returns the payment card strategy.
// Preserves the last 4 digits and the grouping separator, if any.
func CardStrategy() Strategy {
	return cardStrategy{}
}

func (cardStrategy) Name() string { return StrategyCard }

func (cardStrategy) Apply(value string, _ []string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return maskAll(value)
	}

	last4 := digits[len(digits)-4:]
	switch {
	case strings.Contains(value, " "):
		return maskGrouped(len(digits), last4, " ")
	case strings.Contains(value, "-"):
		return maskGrouped(len(digits), last4, "-")
	default:
		return strings.Repeat("*", len(digits)-4) + last4
	}
}

// maskGrouped formats a masked card in groups of four: **** **** **** 1234
func maskGrouped(totalDigits int, last4, sep string) string {
	groups := (totalDigits - 4 + 3) / 4
	masked := make([]string, groups, groups+1)
	for i := range masked {
		masked[i] = "****"
	}
	return strings.Join(append(masked, last4), sep)
}

// ipStrategy masks IP addresses.
// IPv4: 192.168.1.100 -> 192.168.xxx.xxx
// IPv6: 2001:db8:85a3::8a2e:370:7334 -> 2001:0db8:85a3:0000:xxxx:xxxx:xxxx:xxxx
type ipStrategy struct{}

// IPStrategy returns the IP address strategy.
// IPv4 keeps the first two octets, IPv6 keeps the 64-bit network prefix.
func IPStrategy() Strategy {
	return ipStrategy{}
}

func (ipStrategy) Name() string { return StrategyIP }

func (ipStrategy) Apply(value string, _ []string) string {
	if parts := strings.Split(value, "."); len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".xxx.xxx"
	}
	if strings.Contains(value, ":") {
		return maskIPv6(value)
	}
	return maskAll(value)
}

func maskIPv6(value string) string {
	parts := strings.Split(expandIPv6(value), ":")
	if len(parts) != 8 {
		return maskAll(value)
	}
	return strings.Join(parts[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
}

// expandIPv6 expands :: notation to the full 8-group form.
func expandIPv6(value string) string {
	if !strings.Contains(value, "::") {
		return value
	}

	parts := strings.Split(value, "::")
	if len(parts) != 2 {
		return value
	}

	var left, right []string
	if parts[0] != "" {
		left = strings.Split(parts[0], ":")
	}
	if parts[1] != "" {
		right = strings.Split(parts[1], ":")
	}

	missing := 8 - len(left) - len(right)
	if missing < 0 {
		return value
	}

	all := make([]string, 0, 8)
	all = append(all, left...)
	for i := 0; i < missing; i++ {
		all = append(all, "0000")
	}
	all = append(all, right...)
	return strings.Join(all, ":")
}

// uuidStrategy masks UUIDs: 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
type uuidStrategy struct{}

// UUIDStrategy returns the UUID strategy.
func UUIDStrategy() Strategy {
	return uuidStrategy{}
}

func (uuidStrategy) Name() string { return StrategyUUID }

func (uuidStrategy) Apply(value string, _ []string) string {
	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		return maskAll(value)
	}
	return parts[0] + "-****-****-****-************"
}

// ibanStrategy masks IBANs: GB82WEST12345698765432 -> GB82**************5432
type ibanStrategy struct{}

// IBANStrategy returns the IBAN strategy.
// Preserves country code + check digits (first 4) and last 4 chars.
func IBANStrategy() Strategy {
	return ibanStrategy{}
}

func (ibanStrategy) Name() string { return StrategyIBAN }

func (ibanStrategy) Apply(value string, _ []string) string {
	if len(value) <= 8 {
		return maskAll(value)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// redactStrategy replaces the value entirely: secret -> ***
type redactStrategy struct{}

// RedactStrategy returns the redact strategy.
// The first arg is the replacement, "***" when absent.
func RedactStrategy() Strategy {
	return redactStrategy{}
}

func (redactStrategy) Name() string { return StrategyRedact }

func (redactStrategy) Apply(_ string, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "***"
}

// extractDigits returns only the digit characters from a string.
func extractDigits(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// maskAll replaces every rune of value with '*'.
func maskAll(value string) string {
	return strings.Repeat("*", utf8.RuneCountInString(value))
}
