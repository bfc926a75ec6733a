package window

import "time"

// wrongDayThreshold flags a window set whose earliest start is
// implausibly far in the future: symptomatic of windows generated
// against the wrong calendar day. This is a compatibility correction
// for drifted persisted data, applied defensively after generation and
// after every external load.
const wrongDayThreshold = 18 * time.Hour

// Normalize corrects window sets generated for the wrong calendar day.
// When the earliest start time is more than 18 hours ahead of now, the
// whole set shifts back by whole days until it is in range. Start and
// end times move together; no other field changes. Midnight-crossing
// windows are legitimate (night-shift schedules) and pass through
// untouched, as does any already-consistent set.
//
// Normalize is pure and idempotent: it returns a new slice and calling
// it on its own output is the identity.
func Normalize(windows []MealWindow, now time.Time) []MealWindow {
	out := make([]MealWindow, len(windows))
	copy(out, windows)
	if len(out) == 0 {
		return out
	}

	earliest := out[0].StartTime
	for _, w := range out[1:] {
		if w.StartTime.Before(earliest) {
			earliest = w.StartTime
		}
	}

	var shift time.Duration
	for earliest.Add(shift).Sub(now) > wrongDayThreshold {
		shift -= 24 * time.Hour
	}
	if shift == 0 {
		return out
	}

	for i := range out {
		out[i].StartTime = out[i].StartTime.Add(shift)
		out[i].EndTime = out[i].EndTime.Add(shift)
	}
	return out
}
