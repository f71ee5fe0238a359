// Package money normalizes the price and quantity representations that reach the
// POS (JSON numbers, NUMERIC text, user input) into integer currency units and
// positive integer quantities.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount converts v into integer currency units. Strings may carry thousands
// separators ("175,000.00"). Anything unparsable is 0.
func Amount(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(x)
	case float32:
		return roundFloat(float64(x))
	case float64:
		return roundFloat(x)
	case decimal.Decimal:
		return x.Round(0).IntPart()
	case string:
		d, ok := parse(x)
		if !ok {
			return 0
		}
		return d.Round(0).IntPart()
	default:
		return 0
	}
}

// Quantity converts v into a quantity of at least 1.
func Quantity(v any) int {
	var n int64
	switch x := v.(type) {
	case string:
		d, ok := parse(x)
		if !ok {
			return 1
		}
		n = d.Round(0).IntPart()
	default:
		n = Amount(v)
	}
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Subtotal is unitPrice × quantity.
func Subtotal(unitPrice int64, quantity int) int64 {
	return unitPrice * int64(quantity)
}

// Format renders units with vi-VN grouping, e.g. "175.000 ₫".
func Format(units int64) string {
	neg := units < 0
	if neg {
		units = -units
	}
	digits := strconv.FormatInt(units, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString(" ₫")
	return b.String()
}

func parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func roundFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	r := math.Round(f)
	// Out-of-range float to int conversion is implementation-defined.
	if r >= math.MaxInt64 {
		return math.MaxInt64
	}
	if r <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(r)
}
