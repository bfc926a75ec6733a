package redistribution

import (
	"fmt"
	"time"

	"meal-window-planner/internal/meal"
	"meal-window-planner/internal/shared"
	"meal-window-planner/internal/window"
)

// Trigger identifies why a redistribution is being considered.
type Trigger string

const (
	// TriggerMissedWindow: a window closed with no logged meal and was
	// not marked fasted.
	TriggerMissedWindow Trigger = "missed_window"
	// TriggerLateStart: a check-in shifted the remaining day.
	TriggerLateStart Trigger = "late_start"
	// TriggerPaceDrift: the user is eating well behind plan without
	// fully missing windows.
	TriggerPaceDrift Trigger = "pace_drift"
)

// Result is a redistribution proposal. It is advisory: the engine never
// mutates the input windows, and nothing changes until the caller
// explicitly applies the adjusted set.
type Result struct {
	Trigger         Trigger             `json:"trigger"`
	AdjustedWindows []window.MealWindow `json:"adjusted_windows"`
	Explanation     string              `json:"explanation"`
}

// Moderate windows may grow only this fraction of their original
// target; overflow spills to flexible windows.
const moderateGrowthCap = 0.5

// paceDriftRatio: a pace-drift proposal is warranted when consumed
// calories fall below this share of the plan for already-closed windows.
const paceDriftRatio = 0.6

// Engine computes redistribution proposals over explicit inputs. It is
// stateless; time is always an argument, never read from a clock.
type Engine struct{}

// NewEngine creates a redistribution engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Propose evaluates the given trigger against the day's windows and
// logged meals and returns a proposal, or nil when no adjustment is
// warranted.
func (e *Engine) Propose(trigger Trigger, windows []window.MealWindow, meals []meal.Meal, now time.Time) *Result {
	switch trigger {
	case TriggerMissedWindow:
		return e.proposeMissed(windows, meals, now)
	case TriggerPaceDrift:
		return e.proposePaceDrift(windows, meals, now)
	default:
		return nil
	}
}

// proposeMissed moves the calories of missed windows into the rest of
// the day. A window is missed when it has closed with zero logged meals
// and the user did not mark it as an intentional fast.
func (e *Engine) proposeMissed(windows []window.MealWindow, meals []meal.Meal, now time.Time) *Result {
	counts := meal.CountByWindow(meals)

	var missedCal int
	var missedMac shared.Macros
	missedCount := 0
	for i := range windows {
		w := &windows[i]
		if w.ClosedAt(now) && !w.IsMarkedAsFasted && counts[w.ID] == 0 {
			missedCal += w.EffectiveCalories()
			missedMac = missedMac.Add(w.EffectiveMacros())
			missedCount++
		}
	}
	if missedCount == 0 || missedCal == 0 {
		return nil
	}

	adjusted, absorbed := distribute(windows, missedCal, missedMac, now)
	if absorbed == 0 {
		return nil
	}

	return &Result{
		Trigger:         TriggerMissedWindow,
		AdjustedWindows: adjusted,
		Explanation: fmt.Sprintf("%d window(s) closed without a logged meal; moved %d kcal into the remaining windows",
			missedCount, absorbed),
	}
}

// proposePaceDrift covers the case where meals were logged but the user
// is running far behind the plan: the calorie shortfall across closed
// windows is pushed into the rest of the day.
func (e *Engine) proposePaceDrift(windows []window.MealWindow, meals []meal.Meal, now time.Time) *Result {
	counts := meal.CountByWindow(meals)

	planned, consumed := 0, 0
	for i := range windows {
		w := &windows[i]
		if !w.ClosedAt(now) || w.IsMarkedAsFasted {
			continue
		}
		planned += w.EffectiveCalories()
		if counts[w.ID] > 0 {
			for _, m := range meals {
				if m.WindowID == w.ID {
					consumed += m.Calories
				}
			}
		}
	}
	if planned == 0 || float64(consumed) >= paceDriftRatio*float64(planned) {
		return nil
	}

	deficit := planned - consumed
	adjusted, absorbed := distribute(windows, deficit, shared.Macros{}, now)
	if absorbed == 0 {
		return nil
	}

	return &Result{
		Trigger:         TriggerPaceDrift,
		AdjustedWindows: adjusted,
		Explanation: fmt.Sprintf("eating pace is %d kcal behind plan; moved the shortfall into the remaining windows",
			deficit),
	}
}

// ProposeLateStart shifts the not-yet-closed, non-strict windows
// forward by delta. Strict windows do not move; a shifted window that
// would run into a later window is clamped. Returns nil for a
// non-positive delta or when nothing can move.
func (e *Engine) ProposeLateStart(windows []window.MealWindow, delta time.Duration, now time.Time) *Result {
	if delta <= 0 {
		return nil
	}

	adjusted := cloneWindows(windows)
	window.SortByStart(adjusted)

	moved := 0
	for i := range adjusted {
		w := &adjusted[i]
		if w.ClosedAt(now) || w.Flexibility == shared.FlexibilityStrict {
			continue
		}
		start := w.StartTime.Add(delta)
		end := w.EndTime.Add(delta)
		if i+1 < len(adjusted) {
			limit := adjusted[i+1].StartTime
			if end.After(limit) {
				end = limit
			}
		}
		if !start.Before(end) {
			continue
		}
		w.StartTime = start
		w.EndTime = end
		w.RedistributionReason = fmt.Sprintf("shifted %s later after a late start", delta)
		moved++
	}
	if moved == 0 {
		return nil
	}
	if err := window.ValidateSet(adjusted); err != nil {
		return nil
	}

	return &Result{
		Trigger:         TriggerLateStart,
		AdjustedWindows: adjusted,
		Explanation:     fmt.Sprintf("shifted %d window(s) %s later to match the late start", moved, delta),
	}
}

// distribute spreads extra calories/macros across the not-yet-closed
// windows, weighted by flexibility. Strict windows take nothing;
// moderate windows are capped and overflow spills to flexible ones.
// Returns the full adjusted set and how many calories were absorbed.
func distribute(windows []window.MealWindow, extraCal int, extraMac shared.Macros, now time.Time) ([]window.MealWindow, int) {
	adjusted := cloneWindows(windows)

	type recipient struct {
		idx    int
		weight int
		cap    int // max extra calories; 0 means uncapped
	}
	var recipients []recipient
	totalWeight := 0
	for i := range adjusted {
		w := &adjusted[i]
		if w.ClosedAt(now) || w.IsMarkedAsFasted {
			continue
		}
		weight := w.Flexibility.RedistributionWeight()
		if weight == 0 {
			continue
		}
		r := recipient{idx: i, weight: weight}
		if w.Flexibility == shared.FlexibilityModerate {
			r.cap = int(moderateGrowthCap * float64(w.TargetCalories))
		}
		recipients = append(recipients, r)
		totalWeight += weight
	}
	if totalWeight == 0 {
		return adjusted, 0
	}

	// First pass by weight, honoring moderate caps.
	shares := make([]int, len(recipients))
	assigned := 0
	for j, r := range recipients {
		share := extraCal * r.weight / totalWeight
		if r.cap > 0 && share > r.cap {
			share = r.cap
		}
		shares[j] = share
		assigned += share
	}

	// Spill the remainder into uncapped (flexible) recipients.
	if left := extraCal - assigned; left > 0 {
		for j := len(recipients) - 1; j >= 0 && left > 0; j-- {
			if recipients[j].cap == 0 {
				shares[j] += left
				assigned += left
				left = 0
			}
		}
	}

	absorbed := 0
	for j, r := range recipients {
		if shares[j] == 0 {
			continue
		}
		w := &adjusted[r.idx]
		frac := float64(shares[j]) / float64(extraCal)
		cal := w.EffectiveCalories() + shares[j]
		mac := w.EffectiveMacros()
		mac.ProteinG += int(float64(extraMac.ProteinG)*frac + 0.5)
		mac.CarbsG += int(float64(extraMac.CarbsG)*frac + 0.5)
		mac.FatG += int(float64(extraMac.FatG)*frac + 0.5)

		w.AdjustedCalories = &cal
		w.AdjustedMacros = &mac
		w.RedistributionReason = fmt.Sprintf("absorbed %d kcal from earlier in the day", shares[j])
		absorbed += shares[j]
	}
	return adjusted, absorbed
}

func cloneWindows(windows []window.MealWindow) []window.MealWindow {
	out := make([]window.MealWindow, len(windows))
	copy(out, windows)
	return out
}
