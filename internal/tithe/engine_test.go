package tithe

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wealth-tithe/internal/wealth"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func requireDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "%s: expected %s, got %s", field, want, got)
}

func TestEvaluateReferenceScenario(t *testing.T) {
	in := DefaultInputs()
	in.Donation.GiftAid = false

	b := Evaluate(in)

	requireDecimal(t, "15000000", b.NetWealth, "netWealth")
	requireDecimal(t, "5000000", b.Above, "above")
	requireDecimal(t, "50000", b.BaseWealthTithe, "baseWealthTithe")
	requireDecimal(t, "1000000", b.SiteValue, "siteValue")
	requireDecimal(t, "16000", b.LVTProxy, "lvtProxy")
	requireDecimal(t, "66000", b.Total, "total")
	requireDecimal(t, "5500", b.Monthly, "monthly")
	requireDecimal(t, "0", b.EffectiveRateVsIncome, "effectiveRateVsIncome")
	requireDecimal(t, "0.0044", b.ShareOfWealth, "shareOfWealth")

	require.Len(t, b.Bands, 3)
	require.Equal(t, "first £50m", b.Bands[0].Label)
	require.Equal(t, "next £200m", b.Bands[1].Label)
	require.Equal(t, "above £250m", b.Bands[2].Label)
	requireDecimal(t, "5000000", b.Bands[0].Span, "span1")
	requireDecimal(t, "0", b.Bands[1].Span, "span2")
	requireDecimal(t, "0", b.Bands[2].Span, "span3")
}

func TestComputeSecondBand(t *testing.T) {
	b := Compute(Input{
		NetWealth: decimal.NewFromInt(70_000_000),
		Threshold: 10_000_000,
		Schedule:  BandSchedule{Cap1: 50_000_000, Cap2: 250_000_000, Rate1: 0.01, Rate2: 0.015, Rate3: 0.02},
		Land:      DefaultLandValueConfig(),
	})
	requireDecimal(t, "60000000", b.Above, "above")
	requireDecimal(t, "500000", b.Bands[0].Amount, "amount1")
	requireDecimal(t, "150000", b.Bands[1].Amount, "amount2")
	requireDecimal(t, "650000", b.BaseWealthTithe, "baseWealthTithe")
}

func TestComputeAllBandsWithCalibration(t *testing.T) {
	b := Compute(Input{
		NetWealth:     decimal.NewFromInt(310_000_000),
		PropertyValue: decimal.NewFromInt(4_000_000),
		Threshold:     10_000_000,
		Schedule:      DefaultSchedule(),
		Land:          DefaultLandValueConfig(),
		Calibration:   ptr(2.0),
	})
	// 50m*1% + 200m*1.5% + 50m*2% = 500k + 3m + 1m, doubled.
	requireDecimal(t, "9000000", b.BaseWealthTithe, "baseWealthTithe")
	requireDecimal(t, "32000", b.LVTProxy, "lvtProxy")
	requireDecimal(t, "9032000", b.Total, "total")
}

func TestComputeThresholdBoundary(t *testing.T) {
	b := Compute(Input{
		NetWealth: decimal.NewFromInt(10_000_000),
		Threshold: 10_000_000,
		Schedule:  DefaultSchedule(),
	})
	require.True(t, b.Above.IsZero())
	require.True(t, b.BaseWealthTithe.IsZero())
}

func TestComputeZeroWealth(t *testing.T) {
	b := Compute(Input{Schedule: DefaultSchedule(), Land: DefaultLandValueConfig(), Donation: DefaultDonationConfig()})
	require.True(t, b.Total.IsZero())
	require.True(t, b.ShareOfWealth.IsZero())
	require.True(t, b.Monthly.IsZero())
	require.True(t, b.DonorNetCost.IsZero())
}

func TestComputeEffectiveRateVsIncome(t *testing.T) {
	in := DefaultInputs()
	in.AnnualIncome = 660_000
	b := Evaluate(in)
	requireDecimal(t, "0.1", b.EffectiveRateVsIncome, "effectiveRateVsIncome")
}

func TestComputeDegradesInvalidNumbers(t *testing.T) {
	b := Compute(Input{
		NetWealth:    decimal.NewFromInt(20_000_000),
		Threshold:    math.NaN(),
		Schedule:     BandSchedule{Cap1: math.Inf(1), Cap2: math.NaN(), Rate1: math.NaN(), Rate2: -1, Rate3: 5},
		Land:         LandValueConfig{Preset: LandCustom, CustomShare: math.NaN(), Allowance: math.Inf(-1), Rate: math.NaN()},
		Donation:     DonationConfig{SplitPercent: math.NaN(), GiftAid: true, TaxBand: math.Inf(1)},
		AnnualIncome: math.Inf(1),
		Calibration:  ptr(math.NaN()),
	})
	// Threshold and both caps collapse to zero, so everything falls in band 3 at the clamped rate 1.
	requireDecimal(t, "20000000", b.Above, "above")
	requireDecimal(t, "20000000", b.Bands[2].Span, "span3")
	requireDecimal(t, "20000000", b.BaseWealthTithe, "baseWealthTithe")
	require.True(t, b.LVTProxy.IsZero())
	require.True(t, b.EffectiveRateVsIncome.IsZero())
	require.True(t, b.GovPortion.IsZero())
	requireDecimal(t, "20000000", b.CharityPortion, "charityPortion")
}

func TestComputeInvertedScheduleIsNormalized(t *testing.T) {
	b := Compute(Input{
		NetWealth: decimal.NewFromInt(100_000_000),
		Schedule:  BandSchedule{Cap1: 80_000_000, Cap2: 30_000_000, Rate1: 0.01, Rate2: 0.02, Rate3: 0.03},
	})
	requireDecimal(t, "30000000", b.B1, "b1")
	requireDecimal(t, "30000000", b.B2, "b2")
	requireDecimal(t, "30000000", b.Bands[0].Span, "span1")
	requireDecimal(t, "0", b.Bands[1].Span, "span2")
	requireDecimal(t, "70000000", b.Bands[2].Span, "span3")
}

func TestComputeIsIdempotent(t *testing.T) {
	in := DefaultInputs()
	in.AnnualIncome = 1_234_567
	first := Evaluate(in)
	second := Evaluate(in)
	require.Equal(t, first, second)
}

func TestComputeMonotonicInNetWealth(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		in := Input{
			Threshold: rng.Float64() * 50_000_000,
			Schedule: BandSchedule{
				Cap1:  rng.Float64() * 300_000_000,
				Cap2:  rng.Float64() * 600_000_000,
				Rate1: rng.Float64() * 0.05,
				Rate2: rng.Float64() * 0.05,
				Rate3: rng.Float64() * 0.05,
			},
			PropertyValue: decimal.NewFromFloat(rng.Float64() * 20_000_000),
			Land:          DefaultLandValueConfig(),
		}
		prev := decimal.Zero
		for _, w := range []float64{0, 1e6, 1e7, 5e7, 1e8, 3e8, 7e8, 2e9} {
			in.NetWealth = decimal.NewFromFloat(w)
			total := Compute(in).Total
			require.Falsef(t, total.LessThan(prev), "total decreased at wealth %v: %s < %s", w, total, prev)
			prev = total
		}
	}
}

func TestComputeSpansSumToAbove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		s := BandSchedule{Cap1: rng.Float64() * 1e9, Cap2: rng.Float64() * 1e9}
		b := Compute(Input{
			NetWealth: decimal.NewFromFloat(rng.Float64() * 2e9),
			Threshold: rng.Float64() * 1e8,
			Schedule:  s,
		})
		sum := decimal.Zero
		for _, band := range b.Bands {
			require.False(t, band.Span.IsNegative())
			sum = sum.Add(band.Span)
		}
		require.Truef(t, sum.Equal(b.Above), "spans %s != above %s for %+v", sum, b.Above, s)
	}
}

func TestEvaluateUsesAggregatedWealth(t *testing.T) {
	in := DefaultInputs()
	in.Assets = wealth.AssetInputs{PropertyValue: 2_000_000, Debts: 5_000_000}
	b := Evaluate(in)
	require.True(t, b.NetWealth.IsZero())
	require.True(t, b.BaseWealthTithe.IsZero())
	require.True(t, b.ShareOfWealth.IsZero())
	// Property still carries an LVT proxy: 2m*0.5 - 1m = 0.
	require.True(t, b.SiteValue.IsZero())
}

func ptr[T any](v T) *T { return &v }

func TestComputeCalibration(t *testing.T) {
	base := Input{
		NetWealth:     decimal.NewFromInt(15_000_000),
		PropertyValue: decimal.NewFromInt(4_000_000),
		Threshold:     10_000_000,
		Schedule:      DefaultSchedule(),
		Land:          DefaultLandValueConfig(),
		Donation:      DefaultDonationConfig(),
	}
	cases := []struct {
		name string
		k    *float64
		want string
	}{
		{"nil means one", nil, "66000"},
		{"negative means one", ptr(-3.0), "66000"},
		{"infinite means one", ptr(math.Inf(1)), "66000"},
		{"zero is honoured", ptr(0.0), "0"},
		{"half", ptr(0.5), "33000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			in.Calibration = tc.k
			requireDecimal(t, tc.want, Compute(in).Total, "total")
		})
	}
}

func TestEvaluateZeroCalibration(t *testing.T) {
	in := DefaultInputs()
	in.Calibration = 0
	b := Evaluate(in)
	require.True(t, b.BaseWealthTithe.IsZero())
	require.True(t, b.LVTProxy.IsZero())
	require.True(t, b.Total.IsZero())
}

func TestEvaluateLighterLVTSchedule(t *testing.T) {
	in := DefaultInputs()
	in.Land.Allowance = 100_000
	in.Land.Rate = 0.009
	b := Evaluate(in)
	// site value 2m less the 100k allowance, at 0.9%
	requireDecimal(t, "1900000", b.SiteValue, "siteValue")
	requireDecimal(t, "17100", b.LVTProxy, "lvtProxy")
	requireDecimal(t, "67100", b.Total, "total")
}
