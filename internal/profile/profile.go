package profile

import (
	"fmt"
	"time"
)

// Sex is the biological sex used by the Mifflin-St Jeor BMR formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel describes habitual activity, used to scale BMR into TDEE.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// GoalKind tags the user's primary goal.
type GoalKind string

const (
	GoalWeightLoss  GoalKind = "weight_loss"
	GoalMuscleGain  GoalKind = "muscle_gain"
	GoalPerformance GoalKind = "performance"
	GoalMaintenance GoalKind = "maintenance"
)

// Goal is the user's primary goal plus its goal-specific parameters.
// TargetLbs and TimelineWeeks are only meaningful for weight change
// goals; when both are set they imply a weekly rate.
type Goal struct {
	Kind          GoalKind `json:"kind"`
	TargetLbs     float64  `json:"target_lbs,omitempty"`
	TimelineWeeks int      `json:"timeline_weeks,omitempty"`
}

// WeeklyRateLbs returns the user-implied weekly weight change in pounds
// and whether one was specified.
func (g Goal) WeeklyRateLbs() (float64, bool) {
	if g.TargetLbs <= 0 || g.TimelineWeeks <= 0 {
		return 0, false
	}
	return g.TargetLbs / float64(g.TimelineWeeks), true
}

// ClockTime is a time of day with no date attached.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// At anchors the clock time on the given calendar day, in that day's location.
func (c ClockTime) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Minutes returns the clock time as minutes after midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// UserProfile holds the biometrics and preferences the planning core
// consumes. It is owned by the persistence layer, not by the core.
type UserProfile struct {
	UserID        string        `json:"user_id"`
	Sex           Sex           `json:"sex"`
	Age           int           `json:"age"`
	HeightCM      float64       `json:"height_cm"`
	WeightKG      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`

	// Typical schedule, overridden by a morning check-in when present.
	TypicalWake  *ClockTime `json:"typical_wake,omitempty"`
	TypicalSleep *ClockTime `json:"typical_sleep,omitempty"`

	// Observed earliest/latest meal hours from pattern analysis.
	// Informational; not consumed by window generation.
	EarliestMealHour *int `json:"earliest_meal_hour,omitempty"`
	LatestMealHour   *int `json:"latest_meal_hour,omitempty"`
}

// Default schedule used when the profile has no typical times recorded.
var (
	DefaultWake  = ClockTime{Hour: 7}
	DefaultSleep = ClockTime{Hour: 22}
)

// WakeTime returns the profile's typical wake time, defaulted to 07:00.
func (p *UserProfile) WakeTime() ClockTime {
	if p.TypicalWake != nil {
		return *p.TypicalWake
	}
	return DefaultWake
}

// SleepTime returns the profile's typical sleep time, defaulted to 22:00.
func (p *UserProfile) SleepTime() ClockTime {
	if p.TypicalSleep != nil {
		return *p.TypicalSleep
	}
	return DefaultSleep
}

// MorningCheckIn carries today's actual wake time and planned bedtime.
// When present it overrides the profile's typical times for window
// placement.
type MorningCheckIn struct {
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	WakeTime       time.Time `json:"wake_time"`
	PlannedBedtime time.Time `json:"planned_bedtime"`
	SubmittedAt    time.Time `json:"submitted_at"`
}
