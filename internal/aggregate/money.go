package aggregate

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func dec(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// rate returns part/whole*100, or 0 when whole is zero.
func rate(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return toFloat(part.Div(whole).Mul(hundred))
}

func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func ptr[T any](v T) *T {
	return &v
}
