package tithe

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/wealth-tithe/internal/money"
)

// LandPreset selects the share of property value treated as site (land) value.
type LandPreset string

const (
	LandPrime    LandPreset = "prime"
	LandBalanced LandPreset = "balanced"
	LandRural    LandPreset = "rural"
	LandCustom   LandPreset = "custom"
)

// DefaultLVTAllowance is deducted from the estimated site value before the LVT rate applies.
// With DefaultLVTRate it yields the £16,000 LVT of the default scenario. The lighter
// schedule (£100,000 at 0.9%) is a configuration choice.
const DefaultLVTAllowance = 1_000_000

// DefaultLVTRate is the land value tax proxy rate.
const DefaultLVTRate = 0.016

// PresetInfo describes a land share preset for presentation.
type PresetInfo struct {
	Preset LandPreset `json:"preset"`
	Label  string     `json:"label"`
	Share  *float64   `json:"share,omitempty"`
}

var presetShares = map[LandPreset]float64{
	LandPrime:    0.7,
	LandBalanced: 0.5,
	LandRural:    0.3,
}

// Presets lists the selectable presets in display order. Custom carries no fixed share.
func Presets() []PresetInfo {
	share := func(p LandPreset) *float64 {
		v := presetShares[p]
		return &v
	}
	return []PresetInfo{
		{Preset: LandPrime, Label: "Urban prime (~70%)", Share: share(LandPrime)},
		{Preset: LandBalanced, Label: "Balanced (~50%)", Share: share(LandBalanced)},
		{Preset: LandRural, Label: "Rural (~30%)", Share: share(LandRural)},
		{Preset: LandCustom, Label: "Custom…"},
	}
}

// ParseLandPreset resolves a preset name, reporting false for unknown names.
func ParseLandPreset(name string) (LandPreset, bool) {
	p := LandPreset(strings.ToLower(strings.TrimSpace(name)))
	if p == LandCustom {
		return p, true
	}
	_, ok := presetShares[p]
	return p, ok
}

// LandShareFor returns the fraction of property value treated as land. Custom (and anything
// unrecognised) uses the caller's fraction clamped to [0,1].
func LandShareFor(p LandPreset, custom float64) decimal.Decimal {
	if share, ok := presetShares[p]; ok {
		return decimal.NewFromFloat(share)
	}
	return money.Fraction(custom)
}

// LandValueConfig holds the inputs of the LVT proxy.
type LandValueConfig struct {
	Preset      LandPreset `json:"preset"`
	CustomShare float64    `json:"customShare"`
	Allowance   float64    `json:"allowance"`
	Rate        float64    `json:"rate"`
}

// DefaultLandValueConfig returns the balanced preset with the default allowance and rate.
func DefaultLandValueConfig() LandValueConfig {
	return LandValueConfig{
		Preset:      LandBalanced,
		CustomShare: presetShares[LandBalanced],
		Allowance:   DefaultLVTAllowance,
		Rate:        DefaultLVTRate,
	}
}

// Share is the effective land share for this configuration.
func (c LandValueConfig) Share() decimal.Decimal {
	return LandShareFor(c.Preset, c.CustomShare)
}

// SelectPreset switches preset. Fixed presets overwrite the custom share so that switching to
// custom afterwards starts from the last preset's share; custom keeps whatever share is current.
func (c *LandValueConfig) SelectPreset(p LandPreset) {
	if share, ok := presetShares[p]; ok {
		c.CustomShare = share
	}
	c.Preset = p
}

// SiteValue estimates the land portion of propertyValue minus the allowance, floored at zero.
func (c LandValueConfig) SiteValue(propertyValue decimal.Decimal) decimal.Decimal {
	return money.Floor(money.Floor(propertyValue).Mul(c.Share()).Sub(money.NonNegative(c.Allowance)))
}
