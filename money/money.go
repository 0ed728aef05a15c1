/*
Package money provides the monetary value object used throughout the engine.

PURPOSE:
  Every value the engine tracks - cost basis, salvage value, accumulated
  depreciation, sale proceeds - is an Amount: an exact decimal tagged with
  a currency code. Arithmetic between two Amounts is checked: mixing
  currencies is a programming error surfaced as ErrCurrencyMismatch,
  never a silent wrong number.

DESIGN PRINCIPLES:
  1. Immutability: every operation returns a new Amount
  2. Precision: decimal.Decimal, never float64, for all math
  3. Rounding: stored values carry accounting precision (2 fractional
     digits); intermediate math runs at full precision and callers round
     once at the end via Round()

USAGE:
  cost, err := money.New(decimal.NewFromInt(120000), "USD")
  monthly := cost.ScaleByRatio(decimal.NewFromInt(1).Div(decimal.NewFromInt(60)))
  total, err := monthly.Add(other) // fails if other is not USD

SEE ALSO:
  - asset/asset.go: the aggregate holding Amounts in one fixed currency
  - asset/depreciation.go: all periodic math is done on Amounts
*/
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits stored amounts carry.
// Intermediate calculations use full decimal precision; Round() brings a
// result back to accounting precision.
const Precision = 2

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCurrencyMismatch is returned when two Amounts with different
	// currencies meet in an arithmetic or comparison operation.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrInvalidAmount is returned when an Amount cannot be constructed,
	// e.g. an empty currency code or an unparseable decimal string.
	ErrInvalidAmount = errors.New("invalid amount")
)

// MismatchError carries the two currencies involved in a mismatch.
type MismatchError struct {
	Left  string
	Right string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

func (e *MismatchError) Unwrap() error { return ErrCurrencyMismatch }

// =============================================================================
// AMOUNT - Exact decimal tagged with a currency
// =============================================================================

// Amount is an immutable monetary value. The zero value is not valid;
// construct via New, NewFromString or Zero.
type Amount struct {
	value    decimal.Decimal
	currency string
}

// New creates an Amount. The currency code must be non-empty.
func New(value decimal.Decimal, currency string) (Amount, error) {
	if currency == "" {
		return Amount{}, fmt.Errorf("%w: empty currency code", ErrInvalidAmount)
	}
	return Amount{value: value, currency: currency}, nil
}

// NewFromString parses a decimal string into an Amount.
func NewFromString(s, currency string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return New(d, currency)
}

// Zero returns a zero Amount in the given currency.
func Zero(currency string) Amount {
	return Amount{value: decimal.Zero, currency: currency}
}

// MustParse is a test/fixture helper; it panics on malformed input and
// should never be fed runtime data.
func MustParse(s, currency string) Amount {
	a, err := NewFromString(s, currency)
	if err != nil {
		panic(err)
	}
	return a
}

// Value returns the underlying decimal.
func (a Amount) Value() decimal.Decimal { return a.value }

// Currency returns the currency code.
func (a Amount) Currency() string { return a.currency }

// =============================================================================
// CHECKED ARITHMETIC
// =============================================================================

// Add returns a + b, failing on currency mismatch.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value.Add(b.value), currency: a.currency}, nil
}

// Sub returns a - b, failing on currency mismatch. Negative results are
// representable; call sites that require non-negativity assert it.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value.Sub(b.value), currency: a.currency}, nil
}

// ScaleByRatio multiplies the amount by a dimensionless ratio. There is no
// second currency involved, so this operation cannot mismatch.
func (a Amount) ScaleByRatio(ratio decimal.Decimal) Amount {
	return Amount{value: a.value.Mul(ratio), currency: a.currency}
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{value: a.value.Neg(), currency: a.currency}
}

// Round returns the amount rounded to accounting precision.
func (a Amount) Round() Amount {
	return Amount{value: a.value.Round(Precision), currency: a.currency}
}

// =============================================================================
// COMPARISON
// =============================================================================

func (a Amount) IsZero() bool     { return a.value.IsZero() }
func (a Amount) IsNegative() bool { return a.value.IsNegative() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// Cmp compares two amounts: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.sameCurrency(b); err != nil {
		return 0, err
	}
	return a.value.Cmp(b.value), nil
}

// LessThan reports a < b, failing on currency mismatch.
func (a Amount) LessThan(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	return c < 0, err
}

// GreaterThan reports a > b, failing on currency mismatch.
func (a Amount) GreaterThan(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	return c > 0, err
}

// Equal reports exact equality of value and currency.
func (a Amount) Equal(b Amount) bool {
	return a.currency == b.currency && a.value.Equal(b.value)
}

// Min returns the smaller of a and b. Both must share a currency; the
// caller is expected to have established that already (engine-internal use).
func (a Amount) Min(b Amount) Amount {
	if a.value.LessThan(b.value) {
		return a
	}
	return b
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.value.StringFixed(Precision), a.currency)
}

func (a Amount) sameCurrency(b Amount) error {
	if a.currency != b.currency {
		return &MismatchError{Left: a.currency, Right: b.currency}
	}
	return nil
}
