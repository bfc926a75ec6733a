package window

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"meal-window-planner/internal/nutrition"
	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/shared"
	"meal-window-planner/internal/strategy"
)

// Span compression bands. A full-size eating span gets the strategy's
// complete window count; shorter spans degrade to fewer, wider windows
// and finally to a single catch-all. Window count never increases as
// the span shrinks.
const (
	fullSpan    = 6 * time.Hour
	twoWindow   = 3 * time.Hour
	minViable   = 30 * time.Minute
	catchAllPad = 30 * time.Minute
)

// Generator produces a day's ordered, non-overlapping window set from a
// profile and an optional morning check-in. It is pure: identical
// inputs produce identical window times and targets.
type Generator struct {
	table strategy.Table
}

// NewGenerator creates a Generator over the given strategy table.
func NewGenerator(table strategy.Table) *Generator {
	return &Generator{table: table}
}

// bounds resolves the day's wake and sleep instants. A check-in wins
// over the profile's typical times; a sleep time at or before wake is
// taken to mean the user sleeps past midnight.
func bounds(date time.Time, p *profile.UserProfile, checkIn *profile.MorningCheckIn) (wake, sleep time.Time) {
	wake = p.WakeTime().At(date)
	sleep = p.SleepTime().At(date)
	if checkIn != nil {
		if !checkIn.WakeTime.IsZero() {
			wake = checkIn.WakeTime
		}
		if !checkIn.PlannedBedtime.IsZero() {
			sleep = checkIn.PlannedBedtime
		}
	}
	if !sleep.After(wake) {
		sleep = sleep.Add(24 * time.Hour)
	}
	return wake, sleep
}

// Generate produces the window set for one calendar day.
func (g *Generator) Generate(date time.Time, p *profile.UserProfile, checkIn *profile.MorningCheckIn) ([]MealWindow, error) {
	targets := nutrition.ResolveTargets(p)
	strat := g.table.For(p.Goal.Kind)
	wake, sleep := bounds(date, p, checkIn)
	dayDate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	spanStart := wake.Add(time.Duration(strat.LeadOffsetMin) * time.Minute)
	spanEnd := sleep.Add(-time.Duration(strat.TrailingBufferMin) * time.Minute)
	span := spanEnd.Sub(spanStart)

	// Temporal-impossible span: never drop nutrition, emit one
	// best-effort window over whatever time remains.
	if span < minViable {
		w := catchAll(wake, sleep, dayDate, targets)
		return []MealWindow{w}, w.Validate()
	}

	layout := compress(strat, span)
	gap := time.Duration(strat.MinGapMin) * time.Minute

	windows := make([]MealWindow, 0, len(layout.percents))
	k := len(layout.percents)
	slot := span / time.Duration(k)

	calLeft := targets.DailyCalories
	macLeft := shared.Macros{ProteinG: targets.ProteinG, CarbsG: targets.CarbsG, FatG: targets.FatG}

	for i := 0; i < k; i++ {
		start := spanStart.Add(time.Duration(i) * slot)
		end := start.Add(layout.purposes[i].Duration())
		limit := spanEnd
		if i < k-1 {
			limit = start.Add(slot).Add(-gap)
		}
		if end.After(limit) {
			end = limit
		}

		// Last window takes the arithmetic remainder so the day's
		// targets are conserved exactly.
		var cal int
		var mac shared.Macros
		if i == k-1 {
			cal, mac = calLeft, macLeft
		} else {
			pct := float64(layout.percents[i]) / 100
			cal = roundPct(targets.DailyCalories, pct)
			mac = shared.Macros{
				ProteinG: roundPct(targets.ProteinG, pct),
				CarbsG:   roundPct(targets.CarbsG, pct),
				FatG:     roundPct(targets.FatG, pct),
			}
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
			Purpose:        layout.purposes[i],
			Flexibility:    layout.flexibilities[i],
		})
	}

	if err := ValidateSet(windows); err != nil {
		return nil, fmt.Errorf("generated invalid window set: %w", err)
	}
	return windows, nil
}

// catchAll builds the single best-effort window covering the remaining
// waking time with 100% of the day's targets.
func catchAll(wake, sleep, dayDate time.Time, targets nutrition.Targets) MealWindow {
	end := sleep.Add(-catchAllPad)
	if !end.After(wake) {
		end = sleep
	}
	return MealWindow{
		ID:             uuid.NewString(),
		StartTime:      wake,
		EndTime:        end,
		DayDate:        dayDate,
		TargetCalories: targets.DailyCalories,
		TargetMacros:   shared.Macros{ProteinG: targets.ProteinG, CarbsG: targets.CarbsG, FatG: targets.FatG},
		Purpose:        shared.PurposeSustainedEnergy,
		Flexibility:    shared.FlexibilityFlexible,
	}
}

// layout is a strategy after span compression.
type layout struct {
	percents      []int
	purposes      []shared.WindowPurpose
	flexibilities []shared.WindowFlexibility
}

// compress folds a strategy into the window count its span allows.
// A full-length span keeps the strategy as-is; shorter spans merge
// adjacent windows so each merged window carries its members' combined
// share. Count is monotonic in span length.
func compress(strat strategy.Strategy, span time.Duration) layout {
	n := strat.WindowCount()
	k := n
	switch {
	case span >= fullSpan:
		k = n
	case span >= twoWindow:
		k = 2
	default:
		k = 1
	}
	if k > n {
		k = n
	}

	if k == n {
		return layout{
			percents:      strat.WindowPercents,
			purposes:      strat.Purposes,
			flexibilities: strat.Flexibilities,
		}
	}

	if k == 1 {
		return layout{
			percents:      []int{100},
			purposes:      []shared.WindowPurpose{shared.PurposeSustainedEnergy},
			flexibilities: []shared.WindowFlexibility{shared.FlexibilityFlexible},
		}
	}

	out := layout{
		percents:      make([]int, 0, k),
		purposes:      make([]shared.WindowPurpose, 0, k),
		flexibilities: make([]shared.WindowFlexibility, 0, k),
	}
	for i := 0; i < k; i++ {
		lo := i * n / k
		hi := (i + 1) * n / k
		sum, best := 0, lo
		for j := lo; j < hi; j++ {
			sum += strat.WindowPercents[j]
			if strat.WindowPercents[j] > strat.WindowPercents[best] {
				best = j
			}
		}
		out.percents = append(out.percents, sum)
		out.purposes = append(out.purposes, strat.Purposes[best])
		out.flexibilities = append(out.flexibilities, strat.Flexibilities[best])
	}
	return out
}

func roundPct(total int, pct float64) int {
	return int(float64(total)*pct + 0.5)
}
