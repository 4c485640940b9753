package tithe

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
	"github.com/noah-isme/wealth-tithe/internal/wealth"
)

// DefaultThreshold is the ethical threshold: only net wealth above it is banded.
const DefaultThreshold = 10_000_000

var monthsPerYear = decimal.NewFromInt(12)

// Input is everything Compute needs once net wealth is known.
type Input struct {
	NetWealth     decimal.Decimal
	PropertyValue decimal.Decimal
	Threshold     float64
	Schedule      BandSchedule
	Land          LandValueConfig
	Donation      DonationConfig
	AnnualIncome  float64
	// Calibration multiplies every band amount and the LVT proxy. Nil, negative or non-finite means 1.
	Calibration *float64
}

// Band is one row of the band breakdown.
type Band struct {
	Label  string          `json:"label"`
	Span   decimal.Decimal `json:"span"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the full derived contribution record.
type Breakdown struct {
	NetWealth             decimal.Decimal `json:"netWealth"`
	Above                 decimal.Decimal `json:"above"`
	B1                    decimal.Decimal `json:"b1"`
	B2                    decimal.Decimal `json:"b2"`
	Bands                 []Band          `json:"bands"`
	BaseWealthTithe       decimal.Decimal `json:"baseWealthTithe"`
	SiteValue             decimal.Decimal `json:"siteValue"`
	LVTProxy              decimal.Decimal `json:"lvtProxy"`
	Total                 decimal.Decimal `json:"total"`
	Monthly               decimal.Decimal `json:"monthly"`
	EffectiveRateVsIncome decimal.Decimal `json:"effectiveRateVsIncome"`
	Split
	ShareOfWealth decimal.Decimal `json:"shareOfWealth"`
}

// Compute produces the contribution breakdown. It is pure and never fails: invalid numbers
// degrade to zero and an inverted schedule is normalized.
func Compute(in Input) Breakdown {
	k := calibration(in.Calibration)
	netWealth := money.Floor(in.NetWealth)
	above := money.Floor(netWealth.Sub(money.NonNegative(in.Threshold)))

	b1, b2 := in.Schedule.Bounds()
	spans := Spans(above, b1, b2)
	rates := in.Schedule.Rates()
	labels := bandLabels(b1, b2)

	bands := make([]Band, len(spans))
	base := decimal.Zero
	for i := range spans {
		amount := spans[i].Mul(rates[i]).Mul(k)
		bands[i] = Band{Label: labels[i], Span: spans[i], Rate: rates[i], Amount: amount}
		base = base.Add(amount)
	}

	siteValue := in.Land.SiteValue(in.PropertyValue)
	lvtProxy := siteValue.Mul(money.Fraction(in.Land.Rate)).Mul(k)

	total := money.Floor(base).Add(money.Floor(lvtProxy))

	return Breakdown{
		NetWealth:             netWealth,
		Above:                 above,
		B1:                    b1,
		B2:                    b2,
		Bands:                 bands,
		BaseWealthTithe:       base,
		SiteValue:             siteValue,
		LVTProxy:              lvtProxy,
		Total:                 total,
		Monthly:               total.Div(monthsPerYear),
		EffectiveRateVsIncome: money.Ratio(total, money.NonNegative(in.AnnualIncome)),
		Split:                 in.Donation.SplitTotal(total),
		ShareOfWealth:         money.Ratio(total, netWealth),
	}
}

func calibration(k *float64) decimal.Decimal {
	if k == nil || math.IsNaN(*k) || math.IsInf(*k, 0) || *k < 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(*k)
}

func bandLabels(b1, b2 decimal.Decimal) [3]string {
	return [3]string{
		fmt.Sprintf("first £%sm", b1.Div(money.Million).StringFixed(0)),
		fmt.Sprintf("next £%sm", b2.Sub(b1).Div(money.Million).StringFixed(0)),
		fmt.Sprintf("above £%sm", b2.Div(money.Million).StringFixed(0)),
	}
}

// Inputs is the complete editable input set of the calculator, from raw assets to donation choices.
type Inputs struct {
	Assets       wealth.AssetInputs `json:"assets"`
	AnnualIncome float64            `json:"annualIncome"`
	Threshold    float64            `json:"threshold"`
	Schedule     BandSchedule       `json:"schedule"`
	Land         LandValueConfig    `json:"land"`
	Donation     DonationConfig     `json:"donation"`
	// Calibration 0 zeroes every contribution; negative or non-finite means 1.
	Calibration float64 `json:"calibration"`
}

// DefaultInputs mirrors the calculator's initial state.
func DefaultInputs() Inputs {
	return Inputs{
		Assets: wealth.AssetInputs{
			PropertyValue:       4_000_000,
			SavingsCash:         2_000_000,
			InvestmentsPensions: 6_000_000,
			BusinessEquity:      3_000_000,
		},
		Threshold:   DefaultThreshold,
		Schedule:    DefaultSchedule(),
		Land:        DefaultLandValueConfig(),
		Donation:    DefaultDonationConfig(),
		Calibration: 1,
	}
}

// Evaluate runs the whole pipeline: aggregate net wealth, then compute the breakdown.
func Evaluate(in Inputs) Breakdown {
	k := in.Calibration
	return Compute(Input{
		NetWealth:     wealth.Aggregate(in.Assets),
		PropertyValue: money.NonNegative(in.Assets.PropertyValue),
		Threshold:     in.Threshold,
		Schedule:      in.Schedule,
		Land:          in.Land,
		Donation:      in.Donation,
		AnnualIncome:  in.AnnualIncome,
		Calibration:   &k,
	})
}
