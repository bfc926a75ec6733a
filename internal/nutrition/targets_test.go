package nutrition

import (
	"math"
	"testing"

	"meal-window-planner/internal/profile"
)

func baseProfile(kind profile.GoalKind) *profile.UserProfile {
	return &profile.UserProfile{
		UserID:        "u1",
		Sex:           profile.SexMale,
		Age:           30,
		HeightCM:      175,
		WeightKG:      80,
		ActivityLevel: profile.ActivitySedentary,
		Goal:          profile.Goal{Kind: kind},
	}
}

func TestBMR_MaleFemaleOffset(t *testing.T) {
	p := baseProfile(profile.GoalMaintenance)
	male := BMR(p)

	p.Sex = profile.SexFemale
	female := BMR(p)

	// Mifflin-St Jeor: +5 for male, -161 for female, same core term.
	if diff := male - female; diff != 166 {
		t.Errorf("male-female BMR offset = %f, want 166", diff)
	}

	// 10*80 + 6.25*175 - 5*30 + 5 = 1748.75
	if math.Abs(male-1748.75) > 0.001 {
		t.Errorf("male BMR = %f, want 1748.75", male)
	}
}

func TestResolveTargets_Maintenance(t *testing.T) {
	got := ResolveTargets(baseProfile(profile.GoalMaintenance))

	// TDEE = 1748.75 * 1.2 = 2098.5, no adjustment.
	if got.DailyCalories != 2099 {
		t.Errorf("DailyCalories = %d, want 2099", got.DailyCalories)
	}
	// 30/40/30 split at 4/4/9 kcal per gram.
	if got.ProteinG != 157 {
		t.Errorf("ProteinG = %d, want 157", got.ProteinG)
	}
	if got.CarbsG != 210 {
		t.Errorf("CarbsG = %d, want 210", got.CarbsG)
	}
	if got.FatG != 70 {
		t.Errorf("FatG = %d, want 70", got.FatG)
	}
}

func TestResolveTargets_DefaultAdjustments(t *testing.T) {
	maintenance := ResolveTargets(baseProfile(profile.GoalMaintenance)).DailyCalories

	cases := []struct {
		kind  profile.GoalKind
		delta int
	}{
		{profile.GoalWeightLoss, -500},
		{profile.GoalMuscleGain, 250},
		{profile.GoalPerformance, 100},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got := ResolveTargets(baseProfile(tc.kind)).DailyCalories
			if got != maintenance+tc.delta {
				t.Errorf("%s calories = %d, want %d", tc.kind, got, maintenance+tc.delta)
			}
		})
	}
}

func TestResolveTargets_WeeklyRateOverridesDefault(t *testing.T) {
	p := baseProfile(profile.GoalWeightLoss)
	p.Goal.TargetLbs = 20
	p.Goal.TimelineWeeks = 10 // 2 lbs/week => -1000 kcal/day

	maintenance := ResolveTargets(baseProfile(profile.GoalMaintenance)).DailyCalories
	got := ResolveTargets(p).DailyCalories
	if got != maintenance-1000 {
		t.Errorf("rate-derived calories = %d, want %d", got, maintenance-1000)
	}
}

func TestResolveTargets_PerformanceTakesHalfRate(t *testing.T) {
	p := baseProfile(profile.GoalPerformance)
	p.Goal.TargetLbs = 10
	p.Goal.TimelineWeeks = 10 // 1 lb/week => +500, performance takes +250

	maintenance := ResolveTargets(baseProfile(profile.GoalMaintenance)).DailyCalories
	got := ResolveTargets(p).DailyCalories
	if got != maintenance+250 {
		t.Errorf("performance rate calories = %d, want %d", got, maintenance+250)
	}
}

func TestResolveTargets_UnknownActivityFailsClosed(t *testing.T) {
	p := baseProfile(profile.GoalMaintenance)
	p.ActivityLevel = profile.ActivityLevel("couch_olympian")

	sedentary := ResolveTargets(baseProfile(profile.GoalMaintenance))
	got := ResolveTargets(p)
	if got != sedentary {
		t.Errorf("unknown activity resolved to %+v, want sedentary result %+v", got, sedentary)
	}
}

func TestResolveTargets_CalorieFloor(t *testing.T) {
	p := &profile.UserProfile{
		Sex:           profile.SexFemale,
		Age:           30,
		HeightCM:      160,
		WeightKG:      60,
		ActivityLevel: profile.ActivitySedentary,
		Goal:          profile.Goal{Kind: profile.GoalWeightLoss, TargetLbs: 30, TimelineWeeks: 10},
	}

	got := ResolveTargets(p)
	if got.DailyCalories != CalorieFloor {
		t.Errorf("DailyCalories = %d, want floor %d", got.DailyCalories, CalorieFloor)
	}
}

// Macro grams must be consistent with the calorie target to within
// rounding at 4/4/9 kcal per gram.
func TestResolveTargets_MacroCalorieConsistency(t *testing.T) {
	kinds := []profile.GoalKind{
		profile.GoalWeightLoss, profile.GoalMuscleGain,
		profile.GoalPerformance, profile.GoalMaintenance,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			got := ResolveTargets(baseProfile(kind))
			kcal := got.ProteinG*KcalPerGramProtein + got.CarbsG*KcalPerGramCarbs + got.FatG*KcalPerGramFat
			if math.Abs(float64(kcal-got.DailyCalories)) > 20 {
				t.Errorf("macros imply %d kcal, target is %d", kcal, got.DailyCalories)
			}
		})
	}
}

func TestResolveTargets_TotalOverAllGoalVariants(t *testing.T) {
	// Even a goal kind the tables have never heard of must resolve.
	p := baseProfile(profile.GoalKind("zen_fasting"))
	got := ResolveTargets(p)
	if got.DailyCalories <= 0 {
		t.Errorf("unknown goal produced non-positive calories: %d", got.DailyCalories)
	}
}
