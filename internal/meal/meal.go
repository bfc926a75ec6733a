package meal

import (
	"time"

	"meal-window-planner/internal/shared"
)

// Meal is a logged eating event, optionally tied to the window it was
// eaten in.
type Meal struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	WindowID string    `json:"window_id,omitempty"`
	Name     string    `json:"name"`
	LoggedAt time.Time `json:"logged_at"`

	Calories int           `json:"calories"`
	Macros   shared.Macros `json:"macros"`
}

// CountByWindow returns how many meals were logged against each window.
func CountByWindow(meals []Meal) map[string]int {
	counts := make(map[string]int, len(meals))
	for _, m := range meals {
		if m.WindowID != "" {
			counts[m.WindowID]++
		}
	}
	return counts
}
