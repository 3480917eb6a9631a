// Package price validates and normalizes free-form currency input from the
// trip creation form.
package price

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Formatter describes how amounts are rendered and which character separates
// the fraction when input is read back.
type Formatter struct {
	// Symbol is prefixed to currency amounts (e.g. "$")
	Symbol string `yaml:"symbol"`
	// Group separates thousands in the integer part
	Group string `yaml:"group"`
	// Decimal separates the fraction
	Decimal string `yaml:"decimal"`
}

// USD renders amounts the way en-US renders US dollars.
var USD = Formatter{Symbol: "$", Group: ",", Decimal: "."}

// Currency renders amount with the currency symbol, grouped, with up to two
// fraction digits and no trailing zero fraction digits.
func (f Formatter) Currency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + f.Symbol + f.Number(amount.Neg(), 2)
	}
	return f.Symbol + f.Number(amount, 2)
}

// Number renders amount grouped with at most maxFraction fraction digits,
// rounding half away from zero. Trailing zero fraction digits are dropped.
func (f Formatter) Number(amount decimal.Decimal, maxFraction int32) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	intPart, fraction, _ := strings.Cut(amount.Round(maxFraction).String(), ".")
	out := groupDigits(intPart, f.Group)
	if fraction != "" {
		out += f.decimalSep() + fraction
	}
	if out == "0" {
		return out
	}
	return sign + out
}

// numeric keeps the digits of s and the decimal separator, which is rewritten
// to '.', dropping everything else.
func (f Formatter) numeric(s string) string {
	sep := f.decimalRune()
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == sep:
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (f Formatter) decimalSep() string {
	if f.Decimal == "" {
		return "."
	}
	return f.Decimal
}

func (f Formatter) decimalRune() rune {
	r, _ := utf8.DecodeRuneInString(f.decimalSep())
	return r
}

// groupDigits inserts sep between every group of three digits counted from
// the right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// leadingNumber reads the longest prefix of a stripped numeric string that
// forms a decimal number, the same way a lenient float parser stops at the
// first character it cannot use. It reports false when the prefix has no digits.
func leadingNumber(s string) (decimal.Decimal, bool) {
	end, digits, seenDot := 0, 0, false
	for ; end < len(s); end++ {
		c := s[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		digits++
	}
	if digits == 0 {
		return decimal.Zero, false
	}

	num := strings.TrimSuffix(s[:end], ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
