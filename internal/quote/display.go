package quote

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

var hundred = decimal.NewFromInt(100)

// FormatCurrency renders whole pounds with thousands separators, e.g. £66,000.
func FormatCurrency(d decimal.Decimal) string {
	n := d.Round(0)
	if n.IsNegative() {
		return "-£" + humanize.BigComma(n.Neg().BigInt())
	}
	return "£" + humanize.BigComma(n.BigInt())
}

// FormatCurrencyFloat is FormatCurrency for raw inputs. Non-finite values render as £0.
func FormatCurrencyFloat(v float64) string {
	return FormatCurrency(money.FromFloat(v))
}

// FormatPercent renders a fraction as a percentage with dp decimals: 0.016 -> "1.6%".
func FormatPercent(frac decimal.Decimal, dp int32) string {
	return frac.Mul(hundred).StringFixed(dp) + "%"
}

// Display holds the human readable rendering of a breakdown.
type Display struct {
	NetWealth             string        `json:"netWealth"`
	Above                 string        `json:"above"`
	Bands                 []BandDisplay `json:"bands"`
	BaseWealthTithe       string        `json:"baseWealthTithe"`
	SiteValue             string        `json:"siteValue"`
	LVTProxy              string        `json:"lvtProxy"`
	Total                 string        `json:"total"`
	Monthly               string        `json:"monthly"`
	EffectiveRateVsIncome string        `json:"effectiveRateVsIncome"`
	GovPortion            string        `json:"govPortion"`
	CharityPortion        string        `json:"charityPortion"`
	CharityReceives       string        `json:"charityReceives"`
	DonorRelief           string        `json:"donorRelief"`
	DonorNetCost          string        `json:"donorNetCost"`
	ShareOfWealth         string        `json:"shareOfWealth"`
}

// BandDisplay is one rendered band row.
type BandDisplay struct {
	Label  string `json:"label"`
	Span   string `json:"span"`
	Rate   string `json:"rate"`
	Amount string `json:"amount"`
}

// Render formats every figure of b for presentation.
func Render(b tithe.Breakdown) Display {
	bands := make([]BandDisplay, 0, len(b.Bands))
	for _, band := range b.Bands {
		bands = append(bands, BandDisplay{
			Label:  band.Label,
			Span:   FormatCurrency(band.Span),
			Rate:   FormatPercent(band.Rate, 1),
			Amount: FormatCurrency(band.Amount),
		})
	}
	return Display{
		NetWealth:             FormatCurrency(b.NetWealth),
		Above:                 FormatCurrency(b.Above),
		Bands:                 bands,
		BaseWealthTithe:       FormatCurrency(b.BaseWealthTithe),
		SiteValue:             FormatCurrency(b.SiteValue),
		LVTProxy:              FormatCurrency(b.LVTProxy),
		Total:                 FormatCurrency(b.Total),
		Monthly:               FormatCurrency(b.Monthly),
		EffectiveRateVsIncome: FormatPercent(b.EffectiveRateVsIncome, 2),
		GovPortion:            FormatCurrency(b.GovPortion),
		CharityPortion:        FormatCurrency(b.CharityPortion),
		CharityReceives:       FormatCurrency(b.CharityReceives),
		DonorRelief:           FormatCurrency(b.DonorRelief),
		DonorNetCost:          FormatCurrency(b.DonorNetCost),
		ShareOfWealth:         FormatPercent(b.ShareOfWealth, 2),
	}
}
