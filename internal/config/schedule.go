package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/wealth-tithe/internal/tithe"
)

// ScheduleFile is the YAML document that can replace the built-in calculator defaults.
//
//	threshold: 10000000
//	bands:
//	  cap1: 50000000
//	  cap2: 250000000
//	  rate1: 0.01
//	  rate2: 0.015
//	  rate3: 0.02
//	lvt:
//	  rate: 0.016
//	  allowance: 1000000
type ScheduleFile struct {
	Threshold   *float64       `yaml:"threshold" validate:"omitempty,gte=0"`
	Calibration *float64       `yaml:"calibration" validate:"omitempty,gte=0"`
	Bands       *ScheduleBands `yaml:"bands" validate:"omitempty"`
	LVT         *ScheduleLVT   `yaml:"lvt" validate:"omitempty"`
}

// ScheduleBands mirrors the adjustable band controls and their ranges.
type ScheduleBands struct {
	Cap1  float64 `yaml:"cap1" validate:"gte=0,lte=100000000"`
	Cap2  float64 `yaml:"cap2" validate:"gtefield=Cap1,lte=1000000000"`
	Rate1 float64 `yaml:"rate1" validate:"gte=0,lte=1"`
	Rate2 float64 `yaml:"rate2" validate:"gte=0,lte=1"`
	Rate3 float64 `yaml:"rate3" validate:"gte=0,lte=1"`
}

// ScheduleLVT overrides the land value proxy parameters.
type ScheduleLVT struct {
	Rate      *float64 `yaml:"rate" validate:"omitempty,gte=0,lte=1"`
	Allowance *float64 `yaml:"allowance" validate:"omitempty,gte=0"`
}

// LoadScheduleFile reads path and applies it on top of base.
func LoadScheduleFile(path string, base tithe.Inputs) (tithe.Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read schedule file: %w", err)
	}
	return ParseSchedule(data, base)
}

// ParseSchedule decodes and validates a schedule document, then applies it on top of base.
// Unknown keys are rejected.
func ParseSchedule(data []byte, base tithe.Inputs) (tithe.Inputs, error) {
	var doc ScheduleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("decode schedule file: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return base, fmt.Errorf("validate schedule file: %w", err)
	}
	return doc.Apply(base), nil
}

// Apply overlays the document onto in.
func (doc ScheduleFile) Apply(in tithe.Inputs) tithe.Inputs {
	if doc.Threshold != nil {
		in.Threshold = *doc.Threshold
	}
	if doc.Calibration != nil {
		in.Calibration = *doc.Calibration
	}
	if b := doc.Bands; b != nil {
		in.Schedule = tithe.BandSchedule{Rate1: b.Rate1, Rate2: b.Rate2, Rate3: b.Rate3}
		in.Schedule.SetCap2(b.Cap2)
		in.Schedule.SetCap1(b.Cap1)
	}
	if l := doc.LVT; l != nil {
		if l.Rate != nil {
			in.Land.Rate = *l.Rate
		}
		if l.Allowance != nil {
			in.Land.Allowance = *l.Allowance
		}
	}
	return in
}
