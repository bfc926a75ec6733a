package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is a database-backed store for user profiles and morning
// check-ins.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new profile Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts or replaces a user profile.
func (r *Repository) Save(ctx context.Context, p *UserProfile) error {
	wake := clockToMinutes(p.TypicalWake)
	sleep := clockToMinutes(p.TypicalSleep)

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_profiles (
			user_id, sex, age, height_cm, weight_kg, activity_level,
			goal_kind, goal_target_lbs, goal_timeline_weeks,
			typical_wake_min, typical_sleep_min,
			earliest_meal_hour, latest_meal_hour
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, string(p.Sex), p.Age, p.HeightCM, p.WeightKG, string(p.ActivityLevel),
		string(p.Goal.Kind), p.Goal.TargetLbs, p.Goal.TimelineWeeks,
		wake, sleep, nullableInt(p.EarliestMealHour), nullableInt(p.LatestMealHour),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", p.UserID, err)
	}
	return nil
}

// Get retrieves a user profile. Returns nil when the user is unknown.
func (r *Repository) Get(ctx context.Context, userID string) (*UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, sex, age, height_cm, weight_kg, activity_level,
		       goal_kind, goal_target_lbs, goal_timeline_weeks,
		       typical_wake_min, typical_sleep_min,
		       earliest_meal_hour, latest_meal_hour
		FROM user_profiles WHERE user_id = ?`, userID)

	var p UserProfile
	var sex, activity, goalKind string
	var wakeMin, sleepMin, earliest, latest sql.NullInt64
	err := row.Scan(&p.UserID, &sex, &p.Age, &p.HeightCM, &p.WeightKG, &activity,
		&goalKind, &p.Goal.TargetLbs, &p.Goal.TimelineWeeks,
		&wakeMin, &sleepMin, &earliest, &latest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	p.Sex = Sex(sex)
	p.ActivityLevel = ActivityLevel(activity)
	p.Goal.Kind = GoalKind(goalKind)
	p.TypicalWake = minutesToClock(wakeMin)
	p.TypicalSleep = minutesToClock(sleepMin)
	if earliest.Valid {
		v := int(earliest.Int64)
		p.EarliestMealHour = &v
	}
	if latest.Valid {
		v := int(latest.Int64)
		p.LatestMealHour = &v
	}
	return &p, nil
}

// ListUserIDs returns every known user id, for periodic sweeps.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveCheckIn inserts or replaces the morning check-in for a day.
func (r *Repository) SaveCheckIn(ctx context.Context, c *MorningCheckIn) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO morning_checkins (user_id, date, wake_time, planned_bedtime, submitted_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, dayKey(c.Date), c.WakeTime, c.PlannedBedtime, c.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save check-in for %s: %w", c.UserID, err)
	}
	return nil
}

// GetCheckIn retrieves the check-in for a user and day, or nil when
// none was submitted.
func (r *Repository) GetCheckIn(ctx context.Context, userID string, date time.Time) (*MorningCheckIn, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, wake_time, planned_bedtime, submitted_at
		FROM morning_checkins WHERE user_id = ? AND date = ?`,
		userID, dayKey(date))

	var c MorningCheckIn
	err := row.Scan(&c.UserID, &c.WakeTime, &c.PlannedBedtime, &c.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in for %s: %w", userID, err)
	}
	c.Date = date
	return &c, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func clockToMinutes(c *ClockTime) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(c.Minutes()), Valid: true}
}

func minutesToClock(n sql.NullInt64) *ClockTime {
	if !n.Valid {
		return nil
	}
	c := ClockTime{Hour: int(n.Int64) / 60, Minute: int(n.Int64) % 60}
	return &c
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
