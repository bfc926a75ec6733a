package window

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"meal-window-planner/internal/database"
	"meal-window-planner/internal/shared"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func repoWindows(day time.Time) []MealWindow {
	adj := 900
	adjMac := shared.Macros{ProteinG: 60, CarbsG: 90, FatG: 30}
	return []MealWindow{
		{
			ID:             "w-breakfast",
			StartTime:      day.Add(8 * time.Hour),
			EndTime:        day.Add(10 * time.Hour),
			DayDate:        day,
			TargetCalories: 600,
			TargetMacros:   shared.Macros{ProteinG: 45, CarbsG: 60, FatG: 20},
			Purpose:        shared.PurposeMetabolicBoost,
			Flexibility:    shared.FlexibilityModerate,
		},
		{
			ID:                   "w-dinner",
			StartTime:            day.Add(18 * time.Hour),
			EndTime:              day.Add(20 * time.Hour),
			DayDate:              day,
			TargetCalories:       700,
			TargetMacros:         shared.Macros{ProteinG: 50, CarbsG: 70, FatG: 25},
			AdjustedCalories:     &adj,
			AdjustedMacros:       &adjMac,
			RedistributionReason: "absorbed 200 kcal from earlier in the day",
			Purpose:              shared.PurposeSleepOptimization,
			Flexibility:          shared.FlexibilityFlexible,
		},
	}
}

func TestRepository_ReplaceDayRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	want := repoWindows(day)
	if err := repo.ReplaceDay(ctx, "u1", day, want); err != nil {
		t.Fatalf("ReplaceDay: %v", err)
	}

	got, err := repo.GetDay(ctx, "u1", day)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d", len(got), len(want))
	}

	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID {
			t.Errorf("window %d id = %s, want %s", i, g.ID, w.ID)
		}
		if !g.StartTime.Equal(w.StartTime) || !g.EndTime.Equal(w.EndTime) {
			t.Errorf("window %s times = %v..%v, want %v..%v", w.ID, g.StartTime, g.EndTime, w.StartTime, w.EndTime)
		}
		if g.TargetCalories != w.TargetCalories || g.TargetMacros != w.TargetMacros {
			t.Errorf("window %s targets = %d/%+v, want %d/%+v", w.ID, g.TargetCalories, g.TargetMacros, w.TargetCalories, w.TargetMacros)
		}
		if g.Purpose != w.Purpose || g.Flexibility != w.Flexibility {
			t.Errorf("window %s purpose/flexibility = %s/%s, want %s/%s", w.ID, g.Purpose, g.Flexibility, w.Purpose, w.Flexibility)
		}
	}

	// Overlay fields survive the round trip.
	dinner := got[1]
	if dinner.AdjustedCalories == nil || *dinner.AdjustedCalories != 900 {
		t.Error("adjusted calories lost in round trip")
	}
	if dinner.AdjustedMacros == nil || *dinner.AdjustedMacros != (shared.Macros{ProteinG: 60, CarbsG: 90, FatG: 30}) {
		t.Error("adjusted macros lost in round trip")
	}
	if dinner.RedistributionReason == "" {
		t.Error("redistribution reason lost in round trip")
	}
	// The breakfast window has no overlay and must come back without one.
	if got[0].IsAdjusted() {
		t.Error("unadjusted window gained an overlay")
	}
}

func TestRepository_ReplaceDayIsAtomicSwap(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if err := repo.ReplaceDay(ctx, "u1", day, repoWindows(day)); err != nil {
		t.Fatalf("ReplaceDay: %v", err)
	}

	replacement := []MealWindow{{
		ID:             "w-only",
		StartTime:      day.Add(12 * time.Hour),
		EndTime:        day.Add(14 * time.Hour),
		DayDate:        day,
		TargetCalories: 2000,
		TargetMacros:   shared.Macros{ProteinG: 150, CarbsG: 200, FatG: 66},
		Purpose:        shared.PurposeSustainedEnergy,
		Flexibility:    shared.FlexibilityFlexible,
	}}
	if err := repo.ReplaceDay(ctx, "u1", day, replacement); err != nil {
		t.Fatalf("second ReplaceDay: %v", err)
	}

	got, err := repo.GetDay(ctx, "u1", day)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if len(got) != 1 || got[0].ID != "w-only" {
		t.Errorf("replacement did not swap the day: got %d windows", len(got))
	}

	// Other users and other days are untouched by the swap.
	other, _ := repo.GetDay(ctx, "u2", day)
	if len(other) != 0 {
		t.Errorf("another user's day has %d windows", len(other))
	}
}

func TestRepository_ApplyAdjustments(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	windows := repoWindows(day)
	windows[1].AdjustedCalories = nil
	windows[1].AdjustedMacros = nil
	windows[1].RedistributionReason = ""
	if err := repo.ReplaceDay(ctx, "u1", day, windows); err != nil {
		t.Fatalf("ReplaceDay: %v", err)
	}

	adj := 950
	mac := shared.Macros{ProteinG: 70, CarbsG: 95, FatG: 32}
	windows[1].AdjustedCalories = &adj
	windows[1].AdjustedMacros = &mac
	windows[1].RedistributionReason = "absorbed 250 kcal from earlier in the day"
	if err := repo.ApplyAdjustments(ctx, "u1", windows); err != nil {
		t.Fatalf("ApplyAdjustments: %v", err)
	}

	got, err := repo.GetDay(ctx, "u1", day)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if got[1].AdjustedCalories == nil || *got[1].AdjustedCalories != 950 {
		t.Error("adjustment not persisted")
	}
	// Original target untouched.
	if got[1].TargetCalories != 700 {
		t.Errorf("original target changed to %d", got[1].TargetCalories)
	}
}

func TestRepository_SetFasted(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if err := repo.ReplaceDay(ctx, "u1", day, repoWindows(day)); err != nil {
		t.Fatalf("ReplaceDay: %v", err)
	}

	if err := repo.SetFasted(ctx, "u1", "w-breakfast", true); err != nil {
		t.Fatalf("SetFasted: %v", err)
	}
	got, _ := repo.GetDay(ctx, "u1", day)
	if !got[0].IsMarkedAsFasted {
		t.Error("fasted flag not persisted")
	}

	if err := repo.SetFasted(ctx, "u1", "w-breakfast", false); err != nil {
		t.Fatalf("unset SetFasted: %v", err)
	}
	got, _ = repo.GetDay(ctx, "u1", day)
	if got[0].IsMarkedAsFasted {
		t.Error("fasted flag not cleared")
	}

	if err := repo.SetFasted(ctx, "u1", "no-such-window", true); err == nil {
		t.Error("SetFasted on a missing window should fail")
	}
}
