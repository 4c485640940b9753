package tithe

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
)

// BandSchedule is the three band progressive schedule. Band 1 runs up to Cap1, band 2 from Cap1 to
// Cap2 and band 3 is unbounded above Cap2. Caps are measured from the ethical threshold.
type BandSchedule struct {
	Cap1  float64 `json:"cap1"`
	Cap2  float64 `json:"cap2"`
	Rate1 float64 `json:"rate1"`
	Rate2 float64 `json:"rate2"`
	Rate3 float64 `json:"rate3"`
}

// DefaultSchedule returns 1% to £50m, 1.5% to £250m and 2% above.
func DefaultSchedule() BandSchedule {
	return BandSchedule{
		Cap1:  50_000_000,
		Cap2:  250_000_000,
		Rate1: 0.010,
		Rate2: 0.015,
		Rate3: 0.020,
	}
}

// SetCap1 moves the band 1 cap, raising Cap2 when it would otherwise fall below Cap1.
func (s *BandSchedule) SetCap1(v float64) {
	v = money.Finite(v)
	if v < 0 {
		v = 0
	}
	s.Cap1 = v
	if v > s.Cap2 {
		s.Cap2 = v
	}
}

// SetCap2 moves the band 2 cap. It never goes below Cap1.
func (s *BandSchedule) SetCap2(v float64) {
	v = money.Finite(v)
	if v < s.Cap1 {
		v = s.Cap1
	}
	s.Cap2 = v
}

// Bounds returns the normalized caps b1 <= b2 used by the band calculation.
func (s BandSchedule) Bounds() (b1, b2 decimal.Decimal) {
	c1, c2 := money.FromFloat(s.Cap1), money.FromFloat(s.Cap2)
	b1 = money.Floor(decimal.Min(c1, c2))
	b2 = decimal.Max(b1, c2)
	return b1, b2
}

// Rates returns the three band rates clamped to [0,1].
func (s BandSchedule) Rates() [3]decimal.Decimal {
	return [3]decimal.Decimal{
		money.Fraction(s.Rate1),
		money.Fraction(s.Rate2),
		money.Fraction(s.Rate3),
	}
}

// Spans splits above into the portion that falls inside each band. The spans never overlap and
// always sum to above.
func Spans(above, b1, b2 decimal.Decimal) [3]decimal.Decimal {
	above = money.Floor(above)
	return [3]decimal.Decimal{
		money.Floor(decimal.Min(b1, above)),
		money.Floor(decimal.Min(b2, above).Sub(b1)),
		money.Floor(above.Sub(b2)),
	}
}
