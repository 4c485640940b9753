package wealth

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
)

// AssetInputs are the net-worth categories entered by the user. Debts are entered as a positive figure.
type AssetInputs struct {
	PropertyValue       float64 `json:"propertyValue"`
	SavingsCash         float64 `json:"savingsCash"`
	InvestmentsPensions float64 `json:"investmentsPensions"`
	BusinessEquity      float64 `json:"businessEquity"`
	OtherValuables      float64 `json:"otherValuables"`
	Debts               float64 `json:"debts"`
}

// Aggregate sums the asset categories minus debts. Non-finite or negative entries count as zero
// and the result is floored at zero.
func Aggregate(a AssetInputs) decimal.Decimal {
	assets := decimal.Sum(
		money.NonNegative(a.PropertyValue),
		money.NonNegative(a.SavingsCash),
		money.NonNegative(a.InvestmentsPensions),
		money.NonNegative(a.BusinessEquity),
		money.NonNegative(a.OtherValuables),
	)
	return money.Floor(assets.Sub(money.NonNegative(a.Debts)))
}

// ParseIncome reads an optional free-text income field. Blank or unparseable text yields zero.
func ParseIncome(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == '£' || r == ' ' || r == '_' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	v = money.Finite(v)
	if v < 0 {
		return 0
	}
	return v
}
