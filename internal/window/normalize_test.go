package window

import (
	"testing"
	"time"

	"meal-window-planner/internal/shared"
)

func windowAt(start time.Time, dur time.Duration, cal int) MealWindow {
	return MealWindow{
		ID:             "w-" + start.Format("15:04"),
		StartTime:      start,
		EndTime:        start.Add(dur),
		DayDate:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		TargetCalories: cal,
		TargetMacros:   shared.Macros{ProteinG: 30, CarbsG: 40, FatG: 10},
		Purpose:        shared.PurposeSustainedEnergy,
		Flexibility:    shared.FlexibilityModerate,
	}
}

func TestNormalize_IdentityWhenConsistent(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	in := []MealWindow{
		windowAt(now.Add(2*time.Hour), time.Hour, 500),
		windowAt(now.Add(6*time.Hour), time.Hour, 700),
	}

	out := Normalize(in, now)
	for i := range in {
		if !out[i].StartTime.Equal(in[i].StartTime) || !out[i].EndTime.Equal(in[i].EndTime) {
			t.Errorf("window %d moved without an anomaly present", i)
		}
	}
}

func TestNormalize_WrongDayShiftsWholeSetBy24h(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	// Windows generated for tomorrow: earliest start is 26h out.
	in := []MealWindow{
		windowAt(now.Add(26*time.Hour), time.Hour, 500),
		windowAt(now.Add(30*time.Hour), 2*time.Hour, 700),
	}

	out := Normalize(in, now)
	for i := range in {
		wantStart := in[i].StartTime.Add(-24 * time.Hour)
		wantEnd := in[i].EndTime.Add(-24 * time.Hour)
		if !out[i].StartTime.Equal(wantStart) {
			t.Errorf("window %d start = %v, want %v", i, out[i].StartTime, wantStart)
		}
		if !out[i].EndTime.Equal(wantEnd) {
			t.Errorf("window %d end = %v, want %v", i, out[i].EndTime, wantEnd)
		}
		// Nothing but the times changes.
		if out[i].ID != in[i].ID ||
			out[i].TargetCalories != in[i].TargetCalories ||
			out[i].TargetMacros != in[i].TargetMacros ||
			!out[i].DayDate.Equal(in[i].DayDate) ||
			out[i].Purpose != in[i].Purpose ||
			out[i].Flexibility != in[i].Flexibility {
			t.Errorf("window %d: non-temporal field changed during normalization", i)
		}
	}
}

func TestNormalize_MultiDayDriftCorrectedInOneCall(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	in := []MealWindow{windowAt(now.Add(50*time.Hour), time.Hour, 500)}

	out := Normalize(in, now)
	want := in[0].StartTime.Add(-48 * time.Hour)
	if !out[0].StartTime.Equal(want) {
		t.Errorf("start = %v, want %v (two whole-day shifts)", out[0].StartTime, want)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	cases := map[string][]MealWindow{
		"consistent": {windowAt(now.Add(time.Hour), time.Hour, 400)},
		"wrong-day":  {windowAt(now.Add(26*time.Hour), time.Hour, 400)},
		"empty":      {},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			once := Normalize(in, now)
			twice := Normalize(once, now)
			if len(once) != len(twice) {
				t.Fatalf("length changed on second pass")
			}
			for i := range once {
				if !once[i].StartTime.Equal(twice[i].StartTime) || !once[i].EndTime.Equal(twice[i].EndTime) {
					t.Errorf("window %d moved on the second pass", i)
				}
			}
		})
	}
}

func TestNormalize_PreservesMidnightCrossing(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	// A legitimate night-shift window: 23:00 to 00:30 the next day.
	w := windowAt(time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), 90*time.Minute, 600)
	if !w.CrossesMidnight() {
		t.Fatal("test window should cross midnight")
	}

	out := Normalize([]MealWindow{w}, now)
	if !out[0].StartTime.Equal(w.StartTime) || !out[0].EndTime.Equal(w.EndTime) {
		t.Error("midnight-crossing window was shifted")
	}
	if !out[0].CrossesMidnight() {
		t.Error("midnight crossing was lost")
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	in := []MealWindow{windowAt(now.Add(26*time.Hour), time.Hour, 500)}
	orig := in[0].StartTime

	_ = Normalize(in, now)
	if !in[0].StartTime.Equal(orig) {
		t.Error("Normalize mutated its input slice")
	}
}
