package cloak

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount sub-strategies, selected by the first AMOUNT arg.
const (
	AmountKeepFirst  = 1
	AmountKeepLast   = 2
	AmountKeepBoth   = 3
	AmountPercentage = 4
	AmountFull       = 5
	AmountSmart      = 6
)

const currencySymbol = "¥"

var (
	amountSplitPattern = regexp.MustCompile(`([^\d.,-]+)?([\d.,-]+)`)
	amountLoosePattern = regexp.MustCompile(`\d[\d.,]*`)
	amountNonNumeric   = regexp.MustCompile(`[^\d.-]`)
	amountNonDigit     = regexp.MustCompile(`[^\d.]`)

	smartThreshold = decimal.NewFromInt(10000)

	errAmountArgs = errors.New("invalid amount args")
)

// amountConfig carries the knobs of one AMOUNT application.
type amountConfig struct {
	mode       int
	keepFirst  int
	keepLast   int
	keepBoth   int
	percentage float64
	maskChar   string
	keepSymbol bool
}

func defaultAmountConfig() amountConfig {
	return amountConfig{
		mode:       AmountSmart,
		keepFirst:  2,
		keepLast:   2,
		keepBoth:   1,
		percentage: 0.3,
		maskChar:   "*",
		keepSymbol: true,
	}
}

// amountStrategy masks monetary amounts: 1234.56 -> ¥1,******
type amountStrategy struct{}

// AmountStrategy returns the amount strategy.
//
// The value is parsed as a decimal, formatted as ¥ currency with thousands
// grouping and two decimals, and its numeric part is masked by a
// sub-strategy. Args are: mode, mask char, keep symbol, percentage.
// With three args the percentage defaults to 0.3; with any other count
// the smart mode is used. Invalid args yield "***".
func AmountStrategy() Strategy {
	return amountStrategy{}
}

func (amountStrategy) Name() string { return StrategyAmount }

func (amountStrategy) Apply(value string, args []string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}

	cfg, err := parseAmountArgs(args)
	if err != nil {
		return "***"
	}

	amount, err := decimal.NewFromString(amountNonNumeric.ReplaceAllString(value, ""))
	if err != nil {
		return cfg.maskLoose(value)
	}
	return cfg.maskFormatted(formatCurrency(amount))
}

func parseAmountArgs(args []string) (amountConfig, error) {
	cfg := defaultAmountConfig()
	if len(args) != 3 && len(args) != 4 {
		return cfg, nil
	}

	mode, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || mode < AmountKeepFirst || mode > AmountSmart {
		return cfg, errAmountArgs
	}
	cfg.mode = mode
	cfg.maskChar = args[1]
	cfg.keepSymbol = strings.EqualFold(strings.TrimSpace(args[2]), "true")

	if len(args) == 4 {
		pct, err := strconv.ParseFloat(strings.TrimSpace(args[3]), 64)
		if err != nil {
			return cfg, errAmountArgs
		}
		cfg.percentage = max(0.1, min(0.9, pct))
	}
	return cfg, nil
}

// formatCurrency renders amount as ¥1,234.56, rounding half to even.
// The sign is placed after the symbol so it stays with the digits.
func formatCurrency(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixedBank(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(currencySymbol)
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func (c amountConfig) maskFormatted(formatted string) string {
	symbol, numeric := "", formatted
	if m := amountSplitPattern.FindStringSubmatch(formatted); m != nil {
		symbol, numeric = m[1], m[2]
	}

	var masked string
	switch c.mode {
	case AmountKeepFirst:
		masked = c.keepHead(numeric, c.keepFirst)
	case AmountKeepLast:
		masked = c.keepTail(numeric, c.keepLast)
	case AmountKeepBoth:
		masked = c.keepEnds(numeric, c.keepBoth)
	case AmountPercentage:
		keep := int(float64(len(numeric)) * c.percentage)
		keep = max(1, min(keep, len(numeric)-1))
		masked = c.keepHead(numeric, keep)
	case AmountFull:
		masked = strings.Repeat(c.maskChar, len(numeric))
	default:
		masked = c.smart(numeric)
	}

	if c.keepSymbol {
		return symbol + masked
	}
	return masked
}

// maskLoose masks the first run of digits in a value that did not parse
// as a number; without digits the whole value is masked.
func (c amountConfig) maskLoose(value string) string {
	loc := amountLoosePattern.FindStringIndex(value)
	if loc == nil {
		return strings.Repeat(c.maskChar, len([]rune(value)))
	}
	return value[:loc[0]] + c.smart(value[loc[0]:loc[1]]) + value[loc[1]:]
}

func (c amountConfig) smart(numeric string) string {
	n, err := decimal.NewFromString(amountNonDigit.ReplaceAllString(numeric, ""))
	if err != nil {
		return c.keepEnds(numeric, c.keepBoth)
	}
	if n.Abs().GreaterThan(smartThreshold) {
		return c.keepEnds(numeric, 1)
	}
	return c.keepHead(numeric, 2)
}

func (c amountConfig) keepHead(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + strings.Repeat(c.maskChar, len(s)-n)
}

func (c amountConfig) keepTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.Repeat(c.maskChar, len(s)-n) + s[len(s)-n:]
}

func (c amountConfig) keepEnds(s string, n int) string {
	if len(s) <= n*2 {
		return s
	}
	return s[:n] + strings.Repeat(c.maskChar, len(s)-n*2) + s[len(s)-n:]
}
