package strategy

import (
	"fmt"

	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/shared"
)

// Strategy is the per-goal window layout: how many windows a day gets,
// how daily targets split across them, what each window is for, and how
// the eating span is offset from wake and sleep. One generic
// partitioning algorithm consumes these records; there is no per-goal
// generation code.
type Strategy struct {
	WindowPercents    []int                      `toml:"window_percents"`
	Purposes          []shared.WindowPurpose     `toml:"purposes"`
	Flexibilities     []shared.WindowFlexibility `toml:"flexibilities"`
	LeadOffsetMin     int                        `toml:"lead_offset_min"`
	TrailingBufferMin int                        `toml:"trailing_buffer_min"`
	MinGapMin         int                        `toml:"min_gap_min"`
}

// WindowCount returns the full (uncompressed) number of windows.
func (s Strategy) WindowCount() int {
	return len(s.WindowPercents)
}

// Validate checks internal consistency of a strategy record.
func (s Strategy) Validate() error {
	n := len(s.WindowPercents)
	if n == 0 {
		return fmt.Errorf("strategy has no windows")
	}
	if len(s.Purposes) != n || len(s.Flexibilities) != n {
		return fmt.Errorf("strategy tables misaligned: %d percents, %d purposes, %d flexibilities",
			n, len(s.Purposes), len(s.Flexibilities))
	}
	sum := 0
	for _, p := range s.WindowPercents {
		if p <= 0 {
			return fmt.Errorf("window percent must be positive, got %d", p)
		}
		sum += p
	}
	if sum != 100 {
		return fmt.Errorf("window percents must sum to 100, got %d", sum)
	}
	if s.TrailingBufferMin < 0 || s.LeadOffsetMin < 0 || s.MinGapMin < 0 {
		return fmt.Errorf("strategy offsets must be non-negative")
	}
	return nil
}

// Table maps goal kinds to their strategy records.
type Table map[profile.GoalKind]Strategy

// Defaults returns the built-in strategy table.
//
// weight_loss is fasting-style: a long lead offset excludes the fasting
// portion from the eating span. muscle_gain is frequent feeding.
// performance places strict pre/post-workout windows. maintenance is a
// balanced three-window day.
func Defaults() Table {
	return Table{
		profile.GoalWeightLoss: {
			WindowPercents: []int{40, 20, 40},
			Purposes: []shared.WindowPurpose{
				shared.PurposeMetabolicBoost,
				shared.PurposeFocusBoost,
				shared.PurposeSustainedEnergy,
			},
			Flexibilities: []shared.WindowFlexibility{
				shared.FlexibilityModerate,
				shared.FlexibilityFlexible,
				shared.FlexibilityModerate,
			},
			LeadOffsetMin:     300,
			TrailingBufferMin: 180,
			MinGapMin:         15,
		},
		profile.GoalMuscleGain: {
			WindowPercents: []int{20, 20, 20, 20, 20},
			Purposes: []shared.WindowPurpose{
				shared.PurposeMetabolicBoost,
				shared.PurposeSustainedEnergy,
				shared.PurposeSustainedEnergy,
				shared.PurposeRecovery,
				shared.PurposeSleepOptimization,
			},
			Flexibilities: []shared.WindowFlexibility{
				shared.FlexibilityModerate,
				shared.FlexibilityFlexible,
				shared.FlexibilityModerate,
				shared.FlexibilityFlexible,
				shared.FlexibilityModerate,
			},
			LeadOffsetMin:     30,
			TrailingBufferMin: 90,
			MinGapMin:         15,
		},
		profile.GoalPerformance: {
			WindowPercents: []int{25, 20, 25, 30},
			Purposes: []shared.WindowPurpose{
				shared.PurposeSustainedEnergy,
				shared.PurposePreworkout,
				shared.PurposePostworkout,
				shared.PurposeRecovery,
			},
			Flexibilities: []shared.WindowFlexibility{
				shared.FlexibilityFlexible,
				shared.FlexibilityStrict,
				shared.FlexibilityStrict,
				shared.FlexibilityModerate,
			},
			LeadOffsetMin:     60,
			TrailingBufferMin: 90,
			MinGapMin:         15,
		},
		profile.GoalMaintenance: {
			WindowPercents: []int{30, 40, 30},
			Purposes: []shared.WindowPurpose{
				shared.PurposeMetabolicBoost,
				shared.PurposeSustainedEnergy,
				shared.PurposeSleepOptimization,
			},
			Flexibilities: []shared.WindowFlexibility{
				shared.FlexibilityModerate,
				shared.FlexibilityFlexible,
				shared.FlexibilityModerate,
			},
			LeadOffsetMin:     60,
			TrailingBufferMin: 90,
			MinGapMin:         15,
		},
	}
}

// For returns the strategy for a goal kind. Unknown goals fall back to
// the maintenance strategy so generation stays total.
func (t Table) For(kind profile.GoalKind) Strategy {
	if s, ok := t[kind]; ok {
		return s
	}
	return t[profile.GoalMaintenance]
}

// Validate checks every strategy in the table.
func (t Table) Validate() error {
	if _, ok := t[profile.GoalMaintenance]; !ok {
		return fmt.Errorf("strategy table missing maintenance fallback")
	}
	for kind, s := range t {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("strategy for %s: %w", kind, err)
		}
	}
	return nil
}
