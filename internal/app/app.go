package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meal-window-planner/internal/logger"
	"meal-window-planner/internal/meal"
	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/redistribution"
	"meal-window-planner/internal/strategy"
	"meal-window-planner/internal/window"
)

// ErrProfileNotFound is returned when an operation targets a user with
// no stored profile. The planning core is never invoked without one.
var ErrProfileNotFound = errors.New("user profile not found")

// WindowStore is the persistence contract for meal windows.
type WindowStore interface {
	ReplaceDay(ctx context.Context, userID string, date time.Time, windows []window.MealWindow) error
	GetDay(ctx context.Context, userID string, date time.Time) ([]window.MealWindow, error)
	ApplyAdjustments(ctx context.Context, userID string, adjusted []window.MealWindow) error
	SetFasted(ctx context.Context, userID, windowID string, fasted bool) error
}

// ProfileStore is the persistence contract for profiles and check-ins.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*profile.UserProfile, error)
	SaveCheckIn(ctx context.Context, c *profile.MorningCheckIn) error
	GetCheckIn(ctx context.Context, userID string, date time.Time) (*profile.MorningCheckIn, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

// MealStore is the persistence contract for logged meals.
type MealStore interface {
	Save(ctx context.Context, m *meal.Meal) error
	ListDay(ctx context.Context, userID string, date time.Time) ([]meal.Meal, error)
}

// App orchestrates the planning core against persistence. The core
// packages are pure; all I/O and the per-user/day serialization of
// generation and redistribution commits live here.
type App struct {
	windows   WindowStore
	profiles  ProfileStore
	meals     MealStore
	generator *window.Generator
	engine    *redistribution.Engine
	table     strategy.Table

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewApp creates and initializes a new App instance.
func NewApp(windows WindowStore, profiles ProfileStore, meals MealStore, table strategy.Table) *App {
	return &App{
		windows:   windows,
		profiles:  profiles,
		meals:     meals,
		generator: window.NewGenerator(table),
		engine:    redistribution.NewEngine(),
		table:     table,
		locks:     make(map[string]*sync.Mutex),
	}
}

// dayLock returns the mutex serializing generation and redistribution
// commits for one user's day.
func (a *App) dayLock(userID string, date time.Time) *sync.Mutex {
	key := userID + "/" + date.Format("2006-01-02")
	a.mu.Lock()
	defer a.mu.Unlock()
	if l, ok := a.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	a.locks[key] = l
	return l
}

// PlanDay returns the user's window set for a day, generating it if the
// day is still empty. Re-generation for a day that already has windows
// is deliberately not done here: existing windows win.
func (a *App) PlanDay(ctx context.Context, userID string, date, now time.Time) ([]window.MealWindow, error) {
	l := a.dayLock(userID, date)
	l.Lock()
	defer l.Unlock()

	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	existing, err := a.windows.GetDay(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load windows: %w", err)
	}
	if len(existing) > 0 {
		return a.reconcile(ctx, userID, existing, now)
	}

	checkIn, err := a.profiles.GetCheckIn(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in: %w", err)
	}

	generated, err := a.generator.Generate(date, p, checkIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate windows: %w", err)
	}
	generated = window.Normalize(generated, now)

	if err := a.windows.ReplaceDay(ctx, userID, date, generated); err != nil {
		return nil, fmt.Errorf("failed to save windows: %w", err)
	}
	logger.Info("generated day plan",
		zap.String("user", userID),
		zap.String("day", date.Format("2006-01-02")),
		zap.Int("windows", len(generated)))
	return generated, nil
}

// reconcile runs the day-boundary normalizer over freshly loaded
// windows and silently persists any wrong-day correction.
func (a *App) reconcile(ctx context.Context, userID string, windows []window.MealWindow, now time.Time) ([]window.MealWindow, error) {
	normalized := window.Normalize(windows, now)
	if len(normalized) > 0 && !normalized[0].StartTime.Equal(windows[0].StartTime) {
		logger.Warn("corrected wrong-day windows",
			zap.String("user", userID),
			zap.Time("was", windows[0].StartTime),
			zap.Time("now", normalized[0].StartTime))
		if err := a.windows.ApplyAdjustments(ctx, userID, normalized); err != nil {
			return nil, fmt.Errorf("failed to persist normalized windows: %w", err)
		}
	}
	return normalized, nil
}

// PlanFirstDay handles a user finishing onboarding mid-day: it prorates
// the remaining day and either generates the partial plan for today or
// tomorrow's plan at full targets.
func (a *App) PlanFirstDay(ctx context.Context, userID string, completionTime time.Time) (window.FirstDayPlan, error) {
	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return window.FirstDayPlan{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return window.FirstDayPlan{}, ErrProfileNotFound
	}

	plan := window.PlanFirstDay(completionTime, p, a.table)

	// Too late today: generate tomorrow's plan at full daily targets.
	if plan.ShowTomorrowPlan {
		tomorrow := completionTime.AddDate(0, 0, 1)
		if _, err := a.PlanDay(ctx, userID, tomorrow, completionTime); err != nil {
			return plan, fmt.Errorf("failed to plan tomorrow: %w", err)
		}
		return plan, nil
	}

	windows := window.BuildFirstDayWindows(plan, completionTime, p)
	windows = window.Normalize(windows, completionTime)

	l := a.dayLock(userID, completionTime)
	l.Lock()
	defer l.Unlock()
	if err := a.windows.ReplaceDay(ctx, userID, completionTime, windows); err != nil {
		return plan, fmt.Errorf("failed to save first-day windows: %w", err)
	}
	logger.Info("planned first day",
		zap.String("user", userID),
		zap.Int("windows", plan.NumberOfWindows),
		zap.Int("prorated_calories", plan.ProratedCalories))
	return plan, nil
}

// SubmitCheckIn stores the morning check-in. If the day's windows were
// already generated and the actual wake time is later than the planned
// first window, a late-start shift proposal is returned for the caller
// to surface; nil otherwise.
func (a *App) SubmitCheckIn(ctx context.Context, c *profile.MorningCheckIn) (*redistribution.Result, error) {
	if err := a.profiles.SaveCheckIn(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	windows, err := a.windows.GetDay(ctx, c.UserID, c.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	delta := c.WakeTime.Sub(windows[0].StartTime)
	return a.engine.ProposeLateStart(windows, delta, c.SubmittedAt), nil
}

// LogMeal stores a logged meal, assigning an id when absent.
func (a *App) LogMeal(ctx context.Context, m *meal.Meal) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := a.meals.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to log meal: %w", err)
	}
	return nil
}

// MarkWindowFasted flags an intentional skip so redistribution never
// treats the window as missed.
func (a *App) MarkWindowFasted(ctx context.Context, userID, windowID string, fasted bool) error {
	return a.windows.SetFasted(ctx, userID, windowID, fasted)
}

// PreviewRedistribution computes an advisory proposal for the day, or
// nil when the plan still holds. It takes no locks: proposals are
// speculative and only the commit step requires exclusivity.
func (a *App) PreviewRedistribution(ctx context.Context, userID string, date, now time.Time) (*redistribution.Result, error) {
	windows, err := a.windows.GetDay(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}
	windows = window.Normalize(windows, now)

	meals, err := a.meals.ListDay(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	if res := a.engine.Propose(redistribution.TriggerMissedWindow, windows, meals, now); res != nil {
		return res, nil
	}
	return a.engine.Propose(redistribution.TriggerPaceDrift, windows, meals, now), nil
}

// ApplyRedistribution commits an accepted proposal, writing the overlay
// fields while preserving the original targets.
func (a *App) ApplyRedistribution(ctx context.Context, userID string, date time.Time, res *redistribution.Result) error {
	if res == nil || len(res.AdjustedWindows) == 0 {
		return nil
	}
	l := a.dayLock(userID, date)
	l.Lock()
	defer l.Unlock()

	if err := a.windows.ApplyAdjustments(ctx, userID, res.AdjustedWindows); err != nil {
		return fmt.Errorf("failed to apply redistribution: %w", err)
	}
	logger.Info("applied redistribution",
		zap.String("user", userID),
		zap.String("trigger", string(res.Trigger)),
		zap.String("explanation", res.Explanation))
	return nil
}

// RunRedistributionSweep previews redistribution for every known user's
// current day and logs the proposals. Committing remains a user
// decision; the sweep only produces nudges.
func (a *App) RunRedistributionSweep(ctx context.Context, now time.Time) error {
	ids, err := a.profiles.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	for _, id := range ids {
		res, err := a.PreviewRedistribution(ctx, id, now, now)
		if err != nil {
			logger.Error("redistribution preview failed", zap.String("user", id), zap.Error(err))
			continue
		}
		if res != nil {
			logger.Info("redistribution proposal available",
				zap.String("user", id),
				zap.String("trigger", string(res.Trigger)),
				zap.String("explanation", res.Explanation))
		}
	}
	return nil
}
