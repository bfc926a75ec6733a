package nutrition

import (
	"math"

	"meal-window-planner/internal/profile"
)

// Targets is the resolved daily calorie and macro budget. It is a
// derived value, recomputed on every generation and never persisted.
type Targets struct {
	DailyCalories int `json:"daily_calories"`
	ProteinG      int `json:"protein_g"`
	CarbsG        int `json:"carbs_g"`
	FatG          int `json:"fat_g"`
}

// MacroRatio is a percentage split of daily calories across macros.
// Percentages are expected to sum to 100.
type MacroRatio struct {
	ProteinPct int `toml:"protein_pct" json:"protein_pct"`
	CarbsPct   int `toml:"carbs_pct" json:"carbs_pct"`
	FatPct     int `toml:"fat_pct" json:"fat_pct"`
}

// Kcal-per-gram conversion constants.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// CalorieFloor is the minimum daily calorie target. Aggressive weekly
// rates or extreme biometrics clamp here rather than going lower.
const CalorieFloor = 1200

// activityMultipliers maps activity levels to their TDEE multiplier.
// Single source of truth for valid activity levels.
var activityMultipliers = map[profile.ActivityLevel]float64{
	profile.ActivitySedentary:  1.2,
	profile.ActivityLight:      1.375,
	profile.ActivityModerate:   1.55,
	profile.ActivityActive:     1.725,
	profile.ActivityVeryActive: 1.9,
}

// fallbackMultiplier is used when the profile carries an unrecognized
// activity level. Failing closed to sedentary keeps the resolved target
// conservative and deterministic.
const fallbackMultiplier = 1.2

// Per-goal calorie adjustments applied when the user gave no weekly rate.
var defaultAdjustments = map[profile.GoalKind]float64{
	profile.GoalWeightLoss:  -500,
	profile.GoalMuscleGain:  250,
	profile.GoalPerformance: 100,
	profile.GoalMaintenance: 0,
}

// Per-goal macro ratio tables.
var macroRatios = map[profile.GoalKind]MacroRatio{
	profile.GoalWeightLoss:  {ProteinPct: 40, CarbsPct: 30, FatPct: 30},
	profile.GoalMuscleGain:  {ProteinPct: 30, CarbsPct: 45, FatPct: 25},
	profile.GoalPerformance: {ProteinPct: 25, CarbsPct: 50, FatPct: 25},
	profile.GoalMaintenance: {ProteinPct: 30, CarbsPct: 40, FatPct: 30},
}

// BMR computes basal metabolic rate via Mifflin-St Jeor.
func BMR(p *profile.UserProfile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Sex == profile.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

// TDEE scales BMR by the profile's activity multiplier. Unrecognized
// levels fall back to the sedentary multiplier.
func TDEE(p *profile.UserProfile) float64 {
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		mult = fallbackMultiplier
	}
	return BMR(p) * mult
}

// calorieAdjustment derives the daily calorie delta from the goal.
// A user-specified weekly rate wins over the per-goal default;
// performance goals take half of a rate-derived adjustment.
func calorieAdjustment(g profile.Goal) float64 {
	rate, hasRate := g.WeeklyRateLbs()
	if !hasRate {
		return defaultAdjustments[g.Kind]
	}

	// 3500 kcal per pound, spread over the week.
	daily := rate * 3500 / 7
	switch g.Kind {
	case profile.GoalWeightLoss:
		return -daily
	case profile.GoalMuscleGain:
		return daily
	case profile.GoalPerformance:
		return daily / 2
	default:
		return 0
	}
}

// RatioFor returns the macro ratio table for a goal. Unknown goals get
// the maintenance split so the resolver stays total.
func RatioFor(kind profile.GoalKind) MacroRatio {
	if r, ok := macroRatios[kind]; ok {
		return r
	}
	return macroRatios[profile.GoalMaintenance]
}

// ResolveTargets maps a profile into its daily calorie and macro
// targets. Pure and total: every goal variant resolves to a value.
// Intermediate arithmetic stays in floats; rounding happens only here
// at the output boundary.
func ResolveTargets(p *profile.UserProfile) Targets {
	calories := TDEE(p) + calorieAdjustment(p.Goal)
	if calories < CalorieFloor {
		calories = CalorieFloor
	}

	ratio := RatioFor(p.Goal.Kind)
	return Targets{
		DailyCalories: int(math.Round(calories)),
		ProteinG:      int(math.Round(calories * float64(ratio.ProteinPct) / 100 / KcalPerGramProtein)),
		CarbsG:        int(math.Round(calories * float64(ratio.CarbsPct) / 100 / KcalPerGramCarbs)),
		FatG:          int(math.Round(calories * float64(ratio.FatPct) / 100 / KcalPerGramFat)),
	}
}
