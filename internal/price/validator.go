package price

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Default limits applied when no Option overrides them.
const (
	DefaultMin           = 0.01
	DefaultMax           = 99999999.99
	DefaultDecimalPlaces = 2
)

// Rejection reasons that do not depend on options.
const (
	ReasonRequired     = "Price is required"
	ReasonInvalidPrice = "Please enter a valid price"
	ReasonInvalidNum   = "Please enter a valid number"
)

// ValidationResult is the outcome of validating one input. Error is set when
// IsValid is false, Value holds the formatted price when it is true.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Options holds the limits a price is checked against.
type Options struct {
	// Min is the smallest accepted price
	Min float64 `yaml:"min"`
	// Max is the largest accepted price
	Max float64 `yaml:"max"`
	// AllowZero accepts zero and skips the "greater than zero" check
	AllowZero bool `yaml:"allowZero"`
	// DecimalPlaces is the maximum number of fraction digits accepted
	DecimalPlaces int `yaml:"decimalPlaces"`
}

// DefaultOptions returns the limits used by the creation form.
func DefaultOptions() Options {
	return Options{
		Min:           DefaultMin,
		Max:           DefaultMax,
		AllowZero:     false,
		DecimalPlaces: DefaultDecimalPlaces,
	}
}

// Option overrides a single limit for one call
type Option func(*Options)

// WithMin sets the minimum accepted price
func WithMin(v float64) Option {
	return func(o *Options) {
		o.Min = v
	}
}

// WithMax sets the maximum accepted price
func WithMax(v float64) Option {
	return func(o *Options) {
		o.Max = v
	}
}

// WithAllowZero controls whether zero is accepted
func WithAllowZero(allow bool) Option {
	return func(o *Options) {
		o.AllowZero = allow
	}
}

// WithDecimalPlaces sets how many fraction digits are accepted
func WithDecimalPlaces(n int) Option {
	return func(o *Options) {
		o.DecimalPlaces = n
	}
}

// Validator checks prices against a set of limits and renders them with a
// Formatter. A Validator is immutable and safe for concurrent use.
type Validator struct {
	format  Formatter
	options Options
}

// NewValidator creates a validator rendering with f. The given options are
// applied on top of DefaultOptions and become the validator's baseline.
func NewValidator(f Formatter, opts ...Option) *Validator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Validator{format: f, options: o}
}

// Formatter returns the formatter the validator renders with
func (v *Validator) Formatter() Formatter {
	return v.format
}

// Validate checks input and returns either the first applicable rejection
// reason or the canonical currency rendering of the price. The checks run in
// a fixed order: presence, numeric content, parse, zero, min, max, precision.
func (v *Validator) Validate(input string, opts ...Option) ValidationResult {
	o := v.options
	for _, opt := range opts {
		opt(&o)
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" || trimmed == v.format.Symbol {
		return invalid(ReasonRequired)
	}

	numeric := v.format.numeric(trimmed)
	if numeric == "" || numeric == "." {
		return invalid(ReasonInvalidPrice)
	}

	amount, ok := leadingNumber(numeric)
	if !ok {
		return invalid(ReasonInvalidNum)
	}

	if !o.AllowZero && !amount.IsPositive() {
		return invalid(fmt.Sprintf("Price must be greater than %s0", v.format.Symbol))
	}

	lower := decimal.NewFromFloat(o.Min)
	if amount.LessThan(lower) {
		return invalid(fmt.Sprintf("Price must be at least %s%s",
			v.format.Symbol, lower.StringFixed(int32(o.DecimalPlaces))))
	}

	upper := decimal.NewFromFloat(o.Max)
	if amount.GreaterThan(upper) {
		return invalid(fmt.Sprintf("Price must not exceed %s%s",
			v.format.Symbol, v.format.Number(upper, 3)))
	}

	if parts := strings.Split(numeric, "."); len(parts) > 1 && len(parts[1]) > o.DecimalPlaces {
		return invalid(fmt.Sprintf("Price must have at most %d decimal places", o.DecimalPlaces))
	}

	return ValidationResult{IsValid: true, Value: v.format.Currency(amount)}
}

// FormatInput renders the numeric content of value as a grouped plain number
// with up to two fraction digits, for display while the user is typing. It
// returns "" when value holds no number.
func (v *Validator) FormatInput(value string) string {
	if value == "" {
		return ""
	}
	amount, ok := leadingNumber(v.format.numeric(value))
	if !ok {
		return ""
	}
	return v.format.Number(amount, 2)
}

// ParseToBackendFormat strips value down to the digits and decimal point the
// backend expects.
func (v *Validator) ParseToBackendFormat(value string) string {
	if value == "" {
		return ""
	}
	return v.format.numeric(value)
}

func invalid(reason string) ValidationResult {
	return ValidationResult{IsValid: false, Error: reason}
}

var defaultValidator = NewValidator(USD)

// ValidatePrice validates input with the en-US formatter and default limits
// overridden by opts.
func ValidatePrice(input string, opts ...Option) ValidationResult {
	return defaultValidator.Validate(input, opts...)
}

// FormatCurrency renders amount as en-US dollars, e.g. 1200.5 as "$1,200.5".
func FormatCurrency(amount float64) string {
	return USD.Currency(decimal.NewFromFloat(amount))
}

// FormatInput renders the numeric content of value for live display.
func FormatInput(value string) string {
	return defaultValidator.FormatInput(value)
}

// ParseToBackendFormat strips value down to digits and the decimal point.
func ParseToBackendFormat(value string) string {
	return defaultValidator.ParseToBackendFormat(value)
}
