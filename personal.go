package cloak

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	phonePattern  = regexp.MustCompile(`(\b1\d{2})\d{4}(\d{4}\b)`)
	emailPattern  = regexp.MustCompile(`(\w{2})\w+(@\w+)`)
	idCardPattern = regexp.MustCompile(`(\w{6})\w*(\w{3})`)
)

// phoneStrategy masks mainland mobile numbers: 13812345678 -> 138****5678
type phoneStrategy struct{}

// PhoneStrategy returns the mobile phone strategy.
// Whitespace is removed first; input without a mobile number is returned
// without its whitespace and otherwise unchanged.
func PhoneStrategy() Strategy {
	return phoneStrategy{}
}

func (phoneStrategy) Name() string { return StrategyPhone }

func (phoneStrategy) Apply(value string, _ []string) string {
	return phonePattern.ReplaceAllString(deleteWhitespace(value), "${1}****${2}")
}

// emailStrategy masks email addresses: ab12345@github.com -> ab****@github.com
type emailStrategy struct{}

// EmailStrategy returns the email strategy.
// Keeps two word characters of the local part and the domain.
func EmailStrategy() Strategy {
	return emailStrategy{}
}

func (emailStrategy) Name() string { return StrategyEmail }

func (emailStrategy) Apply(value string, _ []string) string {
	return emailPattern.ReplaceAllString(value, "${1}****${2}")
}

// idCardStrategy masks identity card numbers:
// 110101199003071234 -> 110101*********234
type idCardStrategy struct{}

// IDCardStrategy returns the identity card strategy.
// Only 15 and 18 character numbers are recognized. Other lengths pass
// through unchanged unless the "strict" arg is given, which masks them fully.
func IDCardStrategy() Strategy {
	return idCardStrategy{}
}

func (idCardStrategy) Name() string { return StrategyIDCard }

func (idCardStrategy) Apply(value string, args []string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	switch len(value) {
	case 15:
		return idCardPattern.ReplaceAllString(value, "${1}******${2}")
	case 18:
		return idCardPattern.ReplaceAllString(value, "${1}*********${2}")
	}
	if hasArg(args, "strict") {
		return maskAll(value)
	}
	return value
}

// addressStrategy masks postal addresses:
// 北京市海淀区中关村大街27号1101室 -> 北京市********27号1101室
type addressStrategy struct{}

// AddressStrategy returns the address strategy.
// The first three runes are kept, the next eight are masked and anything
// past the eleventh rune is revealed. Short addresses are masked after
// the first three runes.
func AddressStrategy() Strategy {
	return addressStrategy{}
}

func (addressStrategy) Name() string { return StrategyAddress }

func (addressStrategy) Apply(value string, _ []string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}

	runes := []rune(value)
	n := len(runes)

	head := runes[:min(3, n)]
	var tail []rune
	if n > 11 {
		tail = runes[11:]
	}

	padded := strings.Repeat("*", n-len(tail)) + string(tail)
	return string(head) + strings.TrimPrefix(padded, "***")
}

// nameStrategy masks personal names: 张三丰 -> 张**
type nameStrategy struct{}

// NameStrategy returns the personal name strategy.
// Keeps the first rune and pads with '*' to the original rune length.
func NameStrategy() Strategy {
	return nameStrategy{}
}

func (nameStrategy) Name() string { return StrategyName }

func (nameStrategy) Apply(value string, _ []string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(first) + maskAll(value[size:])
}

// bankStrategy masks account numbers: 6222021234567890123 -> 622202*********0123
type bankStrategy struct{}

// BankStrategy returns the bank account strategy.
// Input shorter than 10 characters is returned unchanged. Two numeric args
// override the kept prefix and suffix lengths; otherwise whitespace is
// removed and every digit with six digits before it and four after it is
// masked.
func BankStrategy() Strategy {
	return bankStrategy{}
}

func (bankStrategy) Name() string { return StrategyBank }

func (bankStrategy) Apply(value string, args []string) string {
	if len(value) < 10 {
		return value
	}
	if len(args) >= 2 {
		prefix, perr := strconv.Atoi(strings.TrimSpace(args[0]))
		suffix, serr := strconv.Atoi(strings.TrimSpace(args[1]))
		if perr == nil && serr == nil && prefix >= 0 && suffix >= 0 {
			return keepEnds(value, prefix, suffix)
		}
	}
	return maskBankDigits(deleteWhitespace(value))
}

// keepEnds keeps prefix leading and suffix trailing bytes of value.
// Values shorter than prefix+suffix are returned unchanged.
func keepEnds(value string, prefix, suffix int) string {
	if prefix > len(value) || suffix > len(value)-prefix {
		return value
	}
	return value[:prefix] + strings.Repeat("*", len(value)-prefix-suffix) + value[len(value)-suffix:]
}

// maskBankDigits masks each digit preceded by six digits and followed by four.
func maskBankDigits(s string) string {
	b := []byte(s)
	out := make([]byte, len(b))
	copy(out, b)
	for i := range b {
		if isDigit(b[i]) && digitRun(b, i-6, i) && digitRun(b, i+1, i+5) {
			out[i] = '*'
		}
	}
	return string(out)
}

// digitRun reports whether b[from:to] is in range and all ASCII digits.
func digitRun(b []byte, from, to int) bool {
	if from < 0 || to > len(b) {
		return false
	}
	for _, c := range b[from:to] {
		if !isDigit(c) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func deleteWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if strings.EqualFold(strings.TrimSpace(a), want) {
			return true
		}
	}
	return false
}
