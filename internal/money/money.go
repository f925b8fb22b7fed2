// Package money implements a fixed-point decimal type: signed, exactly
// four fractional digits, overflow-checked addition and subtraction.
// A named int64 with plain arithmetic methods, generalized from an
// unchecked drops counter to a checked base-10 fixed point with an
// explicit parser.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nvogel/ledgerd/internal/ledgererr"
)

// Scale is the number of representable fractional digits.
const Scale = 4

const scaleFactor = 10000

// Money is a signed fixed-point decimal with four fractional digits,
// stored as the number of 1/10000ths (a "tick").
type Money int64

// Zero is the additive identity.
const Zero Money = 0

// FromTicks builds a Money directly from its internal tick representation.
// Mostly useful in tests and in the snapshot codec.
func FromTicks(ticks int64) Money {
	return Money(ticks)
}

// Ticks returns the internal 1/10000th representation.
func (m Money) Ticks() int64 {
	return int64(m)
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// IsNegative reports whether m is strictly less than zero.
func (m Money) IsNegative() bool { return m < 0 }

// Cmp returns -1, 0, or 1 as m is less than, equal to, or greater than other.
func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

// Add returns m+other, or an error if the result overflows the
// representable range.
func (m Money) Add(other Money) (Money, error) {
	a, b := int64(m), int64(other)
	if addOverflows(a, b) {
		return 0, ledgererr.ErrAdditionOverflow
	}
	return Money(a + b), nil
}

// Sub returns m-other, or an error if the result overflows the
// representable range.
func (m Money) Sub(other Money) (Money, error) {
	a, b := int64(m), int64(other)
	if subOverflows(a, b) {
		return 0, ledgererr.ErrSubtractionOverflow
	}
	return Money(a - b), nil
}

// Neg returns -m. Negation of a fixed-point value never overflows except at
// the single asymmetric extreme of the signed range (the minimum int64
// tick count), which ParseMoney never produces; the checked Add/Sub can
// reach it, and negating it returns it unchanged.
func (m Money) Neg() Money { return -m }

func addOverflows(a, b int64) bool {
	if b > 0 && a > math.MaxInt64-b {
		return true
	}
	if b < 0 && a < math.MinInt64-b {
		return true
	}
	return false
}

func subOverflows(a, b int64) bool {
	if b < 0 && a > math.MaxInt64+b {
		return true
	}
	if b > 0 && a < math.MinInt64+b {
		return true
	}
	return false
}

// String renders m as decimal text, trimming trailing fractional zeros.
// A whole number is rendered with no decimal point at all.
func (m Money) String() string {
	neg := m < 0
	ticks := int64(m)
	if neg {
		ticks = -ticks
	}
	whole := ticks / scaleFactor
	frac := ticks % scaleFactor

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(whole, 10))
	if frac != 0 {
		fracStr := fmt.Sprintf("%04d", frac)
		fracStr = strings.TrimRight(fracStr, "0")
		b.WriteByte('.')
		b.WriteString(fracStr)
	}
	return b.String()
}

// ParseMoney parses a decimal literal: an optional sign, an integer part,
// and an optional '.' followed by fractional digits. Up to four fractional
// digits are kept exactly; additional digits are rounded half-to-even to
// the fourth place.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ledgererr.ErrInvalidDecimal
	}

	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, ledgererr.ErrInvalidDecimal
	}

	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ledgererr.ErrInvalidDecimal
	}
	if intPart == "" && fracPart == "" {
		return 0, ledgererr.ErrInvalidDecimal
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isAllDigits(intPart) {
		return 0, ledgererr.ErrInvalidDecimal
	}
	if hasDot && !isAllDigits(fracPart) {
		return 0, ledgererr.ErrInvalidDecimal
	}

	fracPart, carry := roundFraction(fracPart)

	intVal, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ledgererr.ErrInvalidDecimal
	}
	if carry {
		if intVal == math.MaxInt64 {
			return 0, ledgererr.ErrInvalidDecimal
		}
		intVal++
	}
	fracVal, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, ledgererr.ErrInvalidDecimal
	}

	if intVal > (math.MaxInt64-fracVal)/scaleFactor {
		return 0, ledgererr.ErrInvalidDecimal
	}
	ticks := intVal*scaleFactor + fracVal
	if neg {
		ticks = -ticks
	}
	return Money(ticks), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return true
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// roundFraction normalizes a fractional-digit string to exactly Scale
// digits, rounding half-to-even when more were supplied. It returns the
// normalized digits and whether rounding carried a full unit into the
// integer part (i.e. 9999 rounded up to 10000).
func roundFraction(frac string) (string, bool) {
	if len(frac) <= Scale {
		return frac + strings.Repeat("0", Scale-len(frac)), false
	}

	keep := []byte(frac[:Scale])
	rest := frac[Scale:]

	roundUp := false
	switch {
	case rest[0] > '5':
		roundUp = true
	case rest[0] == '5':
		allZero := true
		for _, c := range rest[1:] {
			if c != '0' {
				allZero = false
				break
			}
		}
		if !allZero {
			roundUp = true
		} else if (keep[Scale-1]-'0')%2 != 0 {
			roundUp = true // half-to-even: only round up if that makes the kept digit even
		}
	}

	if !roundUp {
		return string(keep), false
	}

	for i := Scale - 1; i >= 0; i-- {
		if keep[i] == '9' {
			keep[i] = '0'
			continue
		}
		keep[i]++
		return string(keep), false
	}
	return string(keep), true // every kept digit was 9: carries into the integer part
}
