// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package preflight

import "fmt"

// Stats summarizes the sampled prefix for growth models.
type Stats struct {
	// LinesSampled and UniqueSampled describe the whole sample.
	LinesSampled  int64
	UniqueSampled int64

	// TailLines and TailNewUniques describe the final quarter of the
	// sample: how many lines it spans and how many salts were first
	// seen inside it. TailLines is always at least one when
	// LinesSampled is.
	TailLines      int64
	TailNewUniques int64

	// ProjectedLines is the extrapolated total line count, zero when
	// the input is compressed and the total is unknown.
	ProjectedLines int64

	// CompressedMultiplier stands in for the unknown remainder: when
	// ProjectedLines is zero, models assume the stream continues for
	// LinesSampled times this factor.
	CompressedMultiplier float64

	// GrowthFactor scales the extrapolated growth.
	GrowthFactor float64
}

// GrowthModel extrapolates the whole-input unique-salt count from
// sample statistics. The projection is a policy knob, not a law:
// models return a raw estimate and the estimator clamps it into
// [UniqueSampled, ProjectedLines].
type GrowthModel interface {
	// Name identifies the model in logs.
	Name() string

	// ProjectUniques returns the extrapolated distinct-salt count.
	ProjectUniques(Stats) int64
}

// TailRateModel projects with the marginal new-unique rate observed
// over the final quarter of the sample. Repeated salts concentrate
// early in most dumps, so the tail rate tracks the flattened part of
// the reuse curve and avoids overcounting uniques the way the overall
// average does. This is the default model.
type TailRateModel struct{}

// Name implements GrowthModel.
func (TailRateModel) Name() string { return "tail-rate" }

// ProjectUniques implements GrowthModel.
func (TailRateModel) ProjectUniques(s Stats) int64 {
	if s.LinesSampled == 0 {
		return 0
	}
	rate := float64(s.UniqueSampled) / float64(s.LinesSampled)
	if s.TailLines > 0 {
		rate = float64(s.TailNewUniques) / float64(s.TailLines)
	}

	var remainder float64
	if s.ProjectedLines > 0 {
		remainder = float64(s.ProjectedLines - s.LinesSampled)
		if remainder < 0 {
			remainder = 0
		}
	} else {
		remainder = float64(s.LinesSampled) * s.CompressedMultiplier
	}
	return int64(float64(s.UniqueSampled) + s.GrowthFactor*rate*remainder)
}

// OverallRateModel projects with the overall sample average, the way
// earlier versions of this tool did. It overestimates uniques when
// the reuse curve flattens, which biases selection toward the disk
// backend; use it when underestimating memory is the worse failure.
type OverallRateModel struct{}

// Name implements GrowthModel.
func (OverallRateModel) Name() string { return "overall-rate" }

// ProjectUniques implements GrowthModel.
func (OverallRateModel) ProjectUniques(s Stats) int64 {
	if s.LinesSampled == 0 {
		return 0
	}
	if s.ProjectedLines > 0 {
		rate := float64(s.UniqueSampled) / float64(s.LinesSampled)
		return int64(s.GrowthFactor * rate * float64(s.ProjectedLines))
	}
	return int64(s.GrowthFactor * float64(s.UniqueSampled) * s.CompressedMultiplier)
}

// ParseGrowthModel maps the flag spellings to models. The empty
// string selects the default.
func ParseGrowthModel(name string) (GrowthModel, error) {
	switch name {
	case "", "tail-rate":
		return TailRateModel{}, nil
	case "overall-rate":
		return OverallRateModel{}, nil
	default:
		return nil, fmt.Errorf("preflight: unknown growth model %q (want tail-rate or overall-rate)", name)
	}
}
