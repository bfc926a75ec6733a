package window

import (
	"fmt"
	"sort"
	"time"

	"meal-window-planner/internal/shared"
)

// MealWindow is a contiguous interval of the day in which the user is
// expected to eat, carrying calorie/macro targets, a behavioral purpose
// and a flexibility class.
//
// Adjusted* fields are an overlay set by an accepted redistribution
// proposal. They supersede the original targets when present; the
// originals are preserved for audit and "reset to plan".
type MealWindow struct {
	ID string `json:"id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// DayDate anchors the window to its calendar day, used to detect
	// wrong-day drift.
	DayDate time.Time `json:"day_date"`

	TargetCalories int           `json:"target_calories"`
	TargetMacros   shared.Macros `json:"target_macros"`

	AdjustedCalories     *int           `json:"adjusted_calories,omitempty"`
	AdjustedMacros       *shared.Macros `json:"adjusted_macros,omitempty"`
	RedistributionReason string         `json:"redistribution_reason,omitempty"`

	Purpose     shared.WindowPurpose     `json:"purpose"`
	Flexibility shared.WindowFlexibility `json:"flexibility"`

	// IsMarkedAsFasted records an intentional skip. A fasted window is
	// never treated as missed.
	IsMarkedAsFasted bool `json:"is_marked_as_fasted"`
}

// EffectiveCalories returns the adjusted calorie target when a
// redistribution overlay is present, the original target otherwise.
func (w *MealWindow) EffectiveCalories() int {
	if w.AdjustedCalories != nil {
		return *w.AdjustedCalories
	}
	return w.TargetCalories
}

// EffectiveMacros returns the adjusted macros when present, the
// original targets otherwise.
func (w *MealWindow) EffectiveMacros() shared.Macros {
	if w.AdjustedMacros != nil {
		return *w.AdjustedMacros
	}
	return w.TargetMacros
}

// IsAdjusted reports whether a redistribution overlay is in effect.
func (w *MealWindow) IsAdjusted() bool {
	return w.AdjustedCalories != nil || w.AdjustedMacros != nil
}

// ClearAdjustment removes the redistribution overlay, restoring the
// original plan.
func (w *MealWindow) ClearAdjustment() {
	w.AdjustedCalories = nil
	w.AdjustedMacros = nil
	w.RedistributionReason = ""
}

// ClosedAt reports whether the window had already ended at t.
func (w *MealWindow) ClosedAt(t time.Time) bool {
	return !w.EndTime.After(t)
}

// CrossesMidnight reports whether the window ends on a different
// calendar day than it starts. A legitimate case for night-shift
// schedules; normalization preserves it.
func (w *MealWindow) CrossesMidnight() bool {
	sy, sm, sd := w.StartTime.Date()
	ey, em, ed := w.EndTime.Date()
	return sy != ey || sm != em || sd != ed
}

// Validate checks the window's temporal invariant.
func (w *MealWindow) Validate() error {
	if !w.StartTime.Before(w.EndTime) {
		return fmt.Errorf("window %s: start %s is not before end %s", w.ID, w.StartTime, w.EndTime)
	}
	return nil
}

// ValidateSet checks that all windows are individually valid, ordered
// by start time and non-overlapping.
func ValidateSet(windows []MealWindow) error {
	for i := range windows {
		if err := windows[i].Validate(); err != nil {
			return err
		}
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].StartTime.Before(windows[i-1].EndTime) {
			return fmt.Errorf("windows %s and %s overlap", windows[i-1].ID, windows[i].ID)
		}
	}
	return nil
}

// SortByStart orders windows by start time in place.
func SortByStart(windows []MealWindow) {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartTime.Before(windows[j].StartTime)
	})
}
