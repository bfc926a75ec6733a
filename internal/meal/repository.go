package meal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is a database-backed store for logged meals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new meal Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a logged meal.
func (r *Repository) Save(ctx context.Context, m *Meal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meals (id, user_id, window_id, name, logged_at, calories, protein_g, carbs_g, fat_g)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.WindowID, m.Name, m.LoggedAt,
		m.Calories, m.Macros.ProteinG, m.Macros.CarbsG, m.Macros.FatG)
	if err != nil {
		return fmt.Errorf("failed to save meal %s: %w", m.ID, err)
	}
	return nil
}

// ListDay returns a user's meals logged within the given calendar day,
// oldest first.
func (r *Repository) ListDay(ctx context.Context, userID string, date time.Time) ([]Meal, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, window_id, name, logged_at, calories, protein_g, carbs_g, fat_g
		FROM meals
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		ORDER BY logged_at`, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals for %s: %w", userID, err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.ID, &m.UserID, &m.WindowID, &m.Name, &m.LoggedAt,
			&m.Calories, &m.Macros.ProteinG, &m.Macros.CarbsG, &m.Macros.FatG); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}
