package streak

import "time"

// MaxHistoryDays caps how many distinct meal-log dates the recompute looks at.
const MaxHistoryDays = 365

// Calculate walks a list of distinct meal-log dates (most recent first) and
// returns the current consecutive-day streak. The streak is alive as long as
// the most recent log is from today or yesterday; a user who has not logged
// today yet keeps yesterday's streak (grace), but a latest log older than
// yesterday means the streak already lapsed.
//
// Dates are compared at calendar-day granularity; the caller passes "today"
// so the walk is deterministic under test.
func Calculate(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	today = truncateDay(today)
	yesterday := today.AddDate(0, 0, -1)
	latest := truncateDay(dates[0])

	if latest.Before(yesterday) {
		return 0
	}

	cursor := yesterday
	if latest.Equal(today) {
		cursor = today
	}

	streak := 0
	for _, d := range dates {
		if !truncateDay(d).Equal(cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return streak
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
