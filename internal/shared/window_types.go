package shared

import "time"

// WindowPurpose is the behavioral role of an eating window.
type WindowPurpose string

const (
	PurposeMetabolicBoost    WindowPurpose = "metabolic_boost"
	PurposeSustainedEnergy   WindowPurpose = "sustained_energy"
	PurposeRecovery          WindowPurpose = "recovery"
	PurposePreworkout        WindowPurpose = "preworkout"
	PurposePostworkout       WindowPurpose = "postworkout"
	PurposeFocusBoost        WindowPurpose = "focus_boost"
	PurposeSleepOptimization WindowPurpose = "sleep_optimization"
)

// Duration returns the nominal window length for a purpose.
func (p WindowPurpose) Duration() time.Duration {
	switch p {
	case PurposeSustainedEnergy, PurposeRecovery:
		return 120 * time.Minute
	case PurposeMetabolicBoost, PurposeSleepOptimization:
		return 105 * time.Minute
	case PurposeFocusBoost, PurposePreworkout, PurposePostworkout:
		return 60 * time.Minute
	default:
		return 90 * time.Minute
	}
}

// WindowFlexibility governs how much redistribution may shrink or
// shift a window.
type WindowFlexibility string

const (
	FlexibilityStrict   WindowFlexibility = "strict"
	FlexibilityModerate WindowFlexibility = "moderate"
	FlexibilityFlexible WindowFlexibility = "flexible"
)

// RedistributionWeight returns the share weight a window of this
// flexibility takes when absorbing redistributed calories. Strict
// windows absorb nothing and are never resized or moved.
func (f WindowFlexibility) RedistributionWeight() int {
	switch f {
	case FlexibilityStrict:
		return 0
	case FlexibilityModerate:
		return 1
	case FlexibilityFlexible:
		return 2
	default:
		return 1
	}
}
