package plan

import "time"

const day = 24 * time.Hour

// startOfDayUTC truncates t to midnight of its UTC calendar day.
// All plan arithmetic uses UTC day boundaries so the local timezone can
// never shift the resolved day.
func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TargetDayNumber returns the plan day to display on today.
// It is yesterday's day in the cycle: today's 1-based day number minus one,
// clamped to 1 and wrapped over CycleDays. Before the plan starts it is 1.
func TargetDayNumber(planStart, today time.Time) int {
	diff := startOfDayUTC(today).Sub(planStart.UTC())
	if diff < 0 {
		return 1
	}

	daysSinceStart := int(diff / day)
	todaysDay := daysSinceStart + 1
	target := todaysDay - 1
	if target < 1 {
		target = 1
	}
	if target > CycleDays {
		target = ((target - 1) % CycleDays) + 1
	}
	return target
}

// Resolve returns the PlanDay shown on today, falling back to day 1 when the
// plan has no entry for the target day.
func (p Plan) Resolve(planStart, today time.Time) PlanDay {
	if d, ok := p.Day(TargetDayNumber(planStart, today)); ok {
		return d
	}
	return p.first()
}

// CalendarDay is a plan entry projected onto a calendar date
type CalendarDay struct {
	Date time.Time
	PlanDay
}

// Upcoming projects the plan onto consecutive dates starting at from,
// plan entry i landing on from+i days.
func (p Plan) Upcoming(from time.Time, n int) []CalendarDay {
	if len(p.Days) == 0 || n <= 0 {
		return []CalendarDay{}
	}
	start := startOfDayUTC(from)
	result := make([]CalendarDay, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, CalendarDay{
			Date:    start.AddDate(0, 0, i),
			PlanDay: p.Days[i%len(p.Days)],
		})
	}
	return result
}
