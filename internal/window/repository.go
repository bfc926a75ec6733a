package window

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meal-window-planner/internal/shared"
)

// Repository is a database-backed store for meal windows.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new window Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceDay atomically replaces the window set for a user's day.
func (r *Repository) ReplaceDay(ctx context.Context, userID string, date time.Time, windows []MealWindow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	key := dayKey(date)
	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_windows WHERE user_id = ? AND day_date = ?`, userID, key); err != nil {
		return fmt.Errorf("failed to clear windows for %s/%s: %w", userID, key, err)
	}

	for i := range windows {
		w := &windows[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO meal_windows (
				id, user_id, day_date, start_time, end_time,
				target_calories, target_protein_g, target_carbs_g, target_fat_g,
				adjusted_calories, adjusted_protein_g, adjusted_carbs_g, adjusted_fat_g,
				redistribution_reason, purpose, flexibility, is_marked_fasted
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, userID, key, w.StartTime, w.EndTime,
			w.TargetCalories, w.TargetMacros.ProteinG, w.TargetMacros.CarbsG, w.TargetMacros.FatG,
			nullInt(w.AdjustedCalories), nullMacro(w.AdjustedMacros, 'p'), nullMacro(w.AdjustedMacros, 'c'), nullMacro(w.AdjustedMacros, 'f'),
			w.RedistributionReason, string(w.Purpose), string(w.Flexibility), boolToInt(w.IsMarkedAsFasted),
		)
		if err != nil {
			return fmt.Errorf("failed to insert window %s: %w", w.ID, err)
		}
	}

	return tx.Commit()
}

// GetDay returns a user's windows for a day, ordered by start time.
func (r *Repository) GetDay(ctx context.Context, userID string, date time.Time) ([]MealWindow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, day_date, start_time, end_time,
		       target_calories, target_protein_g, target_carbs_g, target_fat_g,
		       adjusted_calories, adjusted_protein_g, adjusted_carbs_g, adjusted_fat_g,
		       redistribution_reason, purpose, flexibility, is_marked_fasted
		FROM meal_windows
		WHERE user_id = ? AND day_date = ?
		ORDER BY start_time`, userID, dayKey(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query windows for %s: %w", userID, err)
	}
	defer rows.Close()

	var windows []MealWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ApplyAdjustments writes the overlay fields of an accepted
// redistribution proposal. Original targets are left untouched.
func (r *Repository) ApplyAdjustments(ctx context.Context, userID string, adjusted []MealWindow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range adjusted {
		w := &adjusted[i]
		_, err := tx.ExecContext(ctx, `
			UPDATE meal_windows
			SET start_time = ?, end_time = ?,
			    adjusted_calories = ?, adjusted_protein_g = ?, adjusted_carbs_g = ?, adjusted_fat_g = ?,
			    redistribution_reason = ?
			WHERE id = ? AND user_id = ?`,
			w.StartTime, w.EndTime,
			nullInt(w.AdjustedCalories), nullMacro(w.AdjustedMacros, 'p'), nullMacro(w.AdjustedMacros, 'c'), nullMacro(w.AdjustedMacros, 'f'),
			w.RedistributionReason, w.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to adjust window %s: %w", w.ID, err)
		}
	}
	return tx.Commit()
}

// SetFasted marks or unmarks a window as an intentional fast.
func (r *Repository) SetFasted(ctx context.Context, userID, windowID string, fasted bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE meal_windows SET is_marked_fasted = ? WHERE id = ? AND user_id = ?`,
		boolToInt(fasted), windowID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark window %s fasted: %w", windowID, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("window %s not found for user %s", windowID, userID)
	}
	return nil
}

func scanWindow(rows *sql.Rows) (MealWindow, error) {
	var w MealWindow
	var dayDate, purpose, flexibility string
	var adjCal, adjP, adjC, adjF sql.NullInt64
	var fasted int

	err := rows.Scan(&w.ID, &dayDate, &w.StartTime, &w.EndTime,
		&w.TargetCalories, &w.TargetMacros.ProteinG, &w.TargetMacros.CarbsG, &w.TargetMacros.FatG,
		&adjCal, &adjP, &adjC, &adjF,
		&w.RedistributionReason, &purpose, &flexibility, &fasted)
	if err != nil {
		return w, fmt.Errorf("failed to scan window: %w", err)
	}

	day, err := time.ParseInLocation("2006-01-02", dayDate, w.StartTime.Location())
	if err != nil {
		return w, fmt.Errorf("failed to parse day_date %q: %w", dayDate, err)
	}
	w.DayDate = day
	w.Purpose = shared.WindowPurpose(purpose)
	w.Flexibility = shared.WindowFlexibility(flexibility)
	w.IsMarkedAsFasted = fasted != 0

	if adjCal.Valid {
		v := int(adjCal.Int64)
		w.AdjustedCalories = &v
	}
	if adjP.Valid || adjC.Valid || adjF.Valid {
		m := shared.Macros{ProteinG: int(adjP.Int64), CarbsG: int(adjC.Int64), FatG: int(adjF.Int64)}
		w.AdjustedMacros = &m
	}
	return w, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullMacro(m *shared.Macros, which byte) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	switch which {
	case 'p':
		return sql.NullInt64{Int64: int64(m.ProteinG), Valid: true}
	case 'c':
		return sql.NullInt64{Int64: int64(m.CarbsG), Valid: true}
	default:
		return sql.NullInt64{Int64: int64(m.FatG), Valid: true}
	}
}
