package tithe

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
)

// UK income tax bands relevant to Gift Aid relief.
const (
	TaxBandBasic      = 0.20
	TaxBandHigher     = 0.40
	TaxBandAdditional = 0.45
)

var (
	giftAidUplift = decimal.RequireFromString("1.25")
	basicRate     = decimal.RequireFromString("0.20")
)

// DonationConfig controls how the total is split and whether Gift Aid applies to the charity share.
type DonationConfig struct {
	// SplitPercent is the share of the total routed to government, 0..100.
	SplitPercent float64 `json:"splitPercent"`
	GiftAid      bool    `json:"giftAid"`
	TaxBand      float64 `json:"taxBand"`
}

// DefaultDonationConfig routes 60% to government with Gift Aid on for an additional-rate payer.
func DefaultDonationConfig() DonationConfig {
	return DonationConfig{SplitPercent: 60, GiftAid: true, TaxBand: TaxBandAdditional}
}

// Split is the donation side of a breakdown.
type Split struct {
	GovPortion      decimal.Decimal `json:"govPortion"`
	CharityPortion  decimal.Decimal `json:"charityPortion"`
	CharityReceives decimal.Decimal `json:"charityReceives"`
	DonorRelief     decimal.Decimal `json:"donorRelief"`
	DonorNetCost    decimal.Decimal `json:"donorNetCost"`
}

// SplitTotal divides total between government and charity. The charity portion is the exact
// complement of the government portion. With Gift Aid the charity reclaims basic rate tax (a 25%
// uplift) and the donor can claim relief above the basic rate on the charity portion only.
func (c DonationConfig) SplitTotal(total decimal.Decimal) Split {
	total = money.Floor(total)
	gov := money.Percent(c.SplitPercent).Div(decimal.NewFromInt(100)).Mul(total)
	charity := total.Sub(gov)

	s := Split{
		GovPortion:      gov,
		CharityPortion:  charity,
		CharityReceives: charity,
		DonorRelief:     decimal.Zero,
		DonorNetCost:    gov.Add(charity),
	}
	if !c.GiftAid {
		return s
	}
	s.CharityReceives = charity.Mul(giftAidUplift)
	s.DonorRelief = money.Floor(money.Fraction(c.TaxBand).Sub(basicRate)).Mul(charity)
	s.DonorNetCost = money.Floor(gov.Add(charity).Sub(s.DonorRelief))
	return s
}
