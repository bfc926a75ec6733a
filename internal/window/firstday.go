package window

import (
	"math"
	"time"

	"github.com/google/uuid"

	"meal-window-planner/internal/nutrition"
	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/shared"
	"meal-window-planner/internal/strategy"
)

// lastMealBuffer is how long before bedtime the last meal should end.
// The first-day adapter measures remaining eating time against this
// cutoff, not against bedtime itself.
const lastMealBuffer = 90 * time.Minute

// First-day window count bands, in hours remaining to the last-meal
// cutoff.
const (
	firstDayThreeWindows = 8.0
	firstDayTwoWindows   = 4.0
	firstDayOneWindow    = 1.0
)

// FirstDayPlan describes how the rest of an onboarding day is planned:
// how many windows still fit, the calories prorated over the remaining
// hours, and whether the day is too far gone and tomorrow's full plan
// should be shown instead.
type FirstDayPlan struct {
	NumberOfWindows  int                    `json:"number_of_windows"`
	ShowTomorrowPlan bool                   `json:"show_tomorrow_plan"`
	RemainingHours   float64                `json:"remaining_hours"`
	ProratedCalories int                    `json:"prorated_calories"`
	Purposes         []shared.WindowPurpose `json:"purposes"`

	// NextDayCalories is the full (not prorated) daily target used for
	// tomorrow's plan when ShowTomorrowPlan is set.
	NextDayCalories int `json:"next_day_calories,omitempty"`
}

// PlanFirstDay decides the remaining-day plan for a user who finished
// onboarding at completionTime. Idempotent: the supplied completion
// time is the only clock, so repeated calls agree.
func PlanFirstDay(completionTime time.Time, p *profile.UserProfile, table strategy.Table) FirstDayPlan {
	targets := nutrition.ResolveTargets(p)

	wake := p.WakeTime().At(completionTime)
	sleep := p.SleepTime().At(completionTime)
	if !sleep.After(wake) {
		sleep = sleep.Add(24 * time.Hour)
	}
	cutoff := sleep.Add(-lastMealBuffer)

	remaining := cutoff.Sub(completionTime).Hours()
	if remaining < 0 {
		remaining = 0
	}

	totalWaking := sleep.Sub(wake).Hours()
	prorated := int(math.Round(float64(targets.DailyCalories) * remaining / totalWaking))

	var count int
	switch {
	case remaining >= firstDayThreeWindows:
		count = 3
	case remaining >= firstDayTwoWindows:
		count = 2
	case remaining >= firstDayOneWindow:
		count = 1
	default:
		count = 0
	}

	plan := FirstDayPlan{
		NumberOfWindows:  count,
		RemainingHours:   remaining,
		ProratedCalories: prorated,
	}

	if count == 0 {
		plan.ShowTomorrowPlan = true
		plan.NextDayCalories = targets.DailyCalories
		return plan
	}

	// The remaining windows take the tail of the goal's purpose
	// sequence: late-day purposes for a late-day start.
	strat := table.For(p.Goal.Kind)
	if n := strat.WindowCount(); count >= n {
		plan.Purposes = strat.Purposes
		plan.NumberOfWindows = n
	} else {
		plan.Purposes = strat.Purposes[strat.WindowCount()-count:]
	}
	return plan
}

// BuildFirstDayWindows materializes a first-day plan into windows
// spread over the remaining eating time, splitting the prorated
// calories and macros evenly. Returns nil when the plan defers to
// tomorrow.
func BuildFirstDayWindows(plan FirstDayPlan, completionTime time.Time, p *profile.UserProfile) []MealWindow {
	if plan.NumberOfWindows == 0 {
		return nil
	}

	targets := nutrition.ResolveTargets(p)
	sleep := p.SleepTime().At(completionTime)
	wake := p.WakeTime().At(completionTime)
	if !sleep.After(wake) {
		sleep = sleep.Add(24 * time.Hour)
	}
	cutoff := sleep.Add(-lastMealBuffer)
	dayDate := time.Date(completionTime.Year(), completionTime.Month(), completionTime.Day(), 0, 0, 0, 0, completionTime.Location())

	frac := plan.RemainingHours / sleep.Sub(wake).Hours()
	totalMac := shared.Macros{
		ProteinG: int(float64(targets.ProteinG)*frac + 0.5),
		CarbsG:   int(float64(targets.CarbsG)*frac + 0.5),
		FatG:     int(float64(targets.FatG)*frac + 0.5),
	}

	k := plan.NumberOfWindows
	spanStart := completionTime.Add(15 * time.Minute)
	slot := cutoff.Sub(spanStart) / time.Duration(k)

	calLeft := plan.ProratedCalories
	macLeft := totalMac
	windows := make([]MealWindow, 0, k)
	for i := 0; i < k; i++ {
		start := spanStart.Add(time.Duration(i) * slot)
		end := start.Add(plan.Purposes[i].Duration())
		limit := cutoff
		if i < k-1 {
			limit = start.Add(slot).Add(-15 * time.Minute)
		}
		if end.After(limit) {
			end = limit
		}

		var cal int
		var mac shared.Macros
		if i == k-1 {
			cal, mac = calLeft, macLeft
		} else {
			cal = plan.ProratedCalories / k
			mac = shared.Macros{ProteinG: totalMac.ProteinG / k, CarbsG: totalMac.CarbsG / k, FatG: totalMac.FatG / k}
			calLeft -= cal
			macLeft.ProteinG -= mac.ProteinG
			macLeft.CarbsG -= mac.CarbsG
			macLeft.FatG -= mac.FatG
		}

		windows = append(windows, MealWindow{
			ID:             uuid.NewString(),
			StartTime:      start,
			EndTime:        end,
			DayDate:        dayDate,
			TargetCalories: cal,
			TargetMacros:   mac,
			Purpose:        plan.Purposes[i],
			Flexibility:    shared.FlexibilityFlexible,
		})
	}
	return windows
}
