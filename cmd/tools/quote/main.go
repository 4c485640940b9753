package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"github.com/noah-isme/wealth-tithe/internal/config"
	"github.com/noah-isme/wealth-tithe/internal/donate"
	"github.com/noah-isme/wealth-tithe/internal/quote"
	"github.com/noah-isme/wealth-tithe/internal/tithe"
	"github.com/noah-isme/wealth-tithe/internal/wealth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := run(os.Args[1:], cfg.Defaults, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, defaults tithe.Inputs, out io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	fs.SetOutput(out)

	d := defaults
	var (
		property    = fs.Float64("property", d.Assets.PropertyValue, "property value in GBP")
		savings     = fs.Float64("savings", d.Assets.SavingsCash, "savings and cash")
		investments = fs.Float64("investments", d.Assets.InvestmentsPensions, "investments and pensions")
		business    = fs.Float64("business", d.Assets.BusinessEquity, "business equity")
		other       = fs.Float64("other", d.Assets.OtherValuables, "other valuables")
		debts       = fs.Float64("debts", d.Assets.Debts, "debts, entered as a positive figure")
		income      = fs.String("income", "", `annual income, free text such as "£250,000"`)
		threshold   = fs.Float64("threshold", d.Threshold, "ethical threshold; only wealth above it is banded")
		band1Cap    = fs.Float64("band1-cap", d.Schedule.Cap1, "band 1 cap above the threshold")
		band2Cap    = fs.Float64("band2-cap", d.Schedule.Cap2, "band 2 cap above the threshold")
		rate1       = fs.Float64("rate1", d.Schedule.Rate1, "band 1 rate as a fraction")
		rate2       = fs.Float64("rate2", d.Schedule.Rate2, "band 2 rate as a fraction")
		rate3       = fs.Float64("rate3", d.Schedule.Rate3, "band 3 rate as a fraction")
		landPreset  = fs.String("land-preset", string(d.Land.Preset), "prime, balanced, rural or custom")
		landShare   = fs.Float64("land-share", d.Land.CustomShare, "land share when the preset is custom")
		lvtRate     = fs.Float64("lvt-rate", d.Land.Rate, "land value tax proxy rate")
		lvtAllow    = fs.Float64("lvt-allowance", d.Land.Allowance, "site value allowance")
		split       = fs.Float64("split", d.Donation.SplitPercent, "percent of the total routed to government")
		giftAid     = fs.Bool("gift-aid", d.Donation.GiftAid, "apply Gift Aid to the charity share")
		taxBand     = fs.Float64("tax-band", d.Donation.TaxBand, "donor's marginal tax band as a fraction")
		calibration = fs.Float64("calibration", d.Calibration, "multiplier applied to every band and the LVT proxy")
		destination = fs.String("destination", string(donate.Default), "givewell, amf, trussell or govGuide")
		asJSON      = fs.Bool("json", false, "print the breakdown as JSON")
		steps       = fs.Bool("steps", false, "print the running total after each applied option")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	preset, ok := tithe.ParseLandPreset(*landPreset)
	if !ok {
		return fmt.Errorf("unknown land preset %q", *landPreset)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	session := tithe.NewSession(defaults)
	if *steps {
		session.Subscribe(func(b tithe.Breakdown) {
			fmt.Fprintf(out, "  -> total %s\n", quote.FormatCurrency(b.Total))
		})
	}
	session.Update(func(in *tithe.Inputs) {
		in.Assets = wealth.AssetInputs{
			PropertyValue:       *property,
			SavingsCash:         *savings,
			InvestmentsPensions: *investments,
			BusinessEquity:      *business,
			OtherValuables:      *other,
			Debts:               *debts,
		}
		in.AnnualIncome = wealth.ParseIncome(*income)
		in.Threshold = *threshold
	})
	if set["band1-cap"] {
		session.SetBand1Cap(*band1Cap)
	}
	if set["band2-cap"] {
		session.SetBand2Cap(*band2Cap)
	}
	if set["land-preset"] {
		session.SetLandPreset(preset)
	}
	b := session.Update(func(in *tithe.Inputs) {
		in.Schedule.Rate1, in.Schedule.Rate2, in.Schedule.Rate3 = *rate1, *rate2, *rate3
		if set["land-share"] {
			in.Land.CustomShare = *landShare
		}
		in.Land.Rate = *lvtRate
		in.Land.Allowance = *lvtAllow
		in.Donation = tithe.DonationConfig{SplitPercent: *split, GiftAid: *giftAid, TaxBand: *taxBand}
		in.Calibration = *calibration
	})
	dest := donate.Parse(*destination)

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"inputs":      session.Inputs(),
			"breakdown":   b,
			"display":     quote.Render(b),
			"destination": donate.Info{Tag: dest, Name: dest.Name(), URL: dest.URL()},
		})
	}
	return printBreakdown(out, quote.Render(b), dest)
}

func printBreakdown(out io.Writer, d quote.Display, dest donate.Destination) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Net wealth\t%s\n", d.NetWealth)
	fmt.Fprintf(tw, "Above threshold\t%s\n", d.Above)
	for _, band := range d.Bands {
		fmt.Fprintf(tw, "  %s @ %s\t%s\t(on %s)\n", band.Label, band.Rate, band.Amount, band.Span)
	}
	fmt.Fprintf(tw, "Base wealth tithe\t%s\n", d.BaseWealthTithe)
	fmt.Fprintf(tw, "Site value\t%s\n", d.SiteValue)
	fmt.Fprintf(tw, "LVT proxy\t%s\n", d.LVTProxy)
	fmt.Fprintf(tw, "Total per year\t%s\n", d.Total)
	fmt.Fprintf(tw, "Per month\t%s\n", d.Monthly)
	fmt.Fprintf(tw, "Share of wealth\t%s\n", d.ShareOfWealth)
	fmt.Fprintf(tw, "Share of income\t%s\n", d.EffectiveRateVsIncome)
	fmt.Fprintf(tw, "To government\t%s\n", d.GovPortion)
	fmt.Fprintf(tw, "To charity\t%s\t(charity receives %s)\n", d.CharityPortion, d.CharityReceives)
	fmt.Fprintf(tw, "Donor relief\t%s\n", d.DonorRelief)
	fmt.Fprintf(tw, "Net cost to you\t%s\n", d.DonorNetCost)
	fmt.Fprintf(tw, "Donate via\t%s\t%s\n", dest.Name(), dest.URL())
	return tw.Flush()
}
