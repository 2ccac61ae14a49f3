package domain

import "time"

// DateLayout is the calendar-date format used for every stored date.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// AddDays shifts an ISO date by n calendar days. Invalid input is returned as is.
func AddDays(date string, n int) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// DaysBetween returns the number of calendar days from a to b.
// ok is false if either date does not parse.
func DaysBetween(a, b string) (days int, ok bool) {
	da, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, false
	}
	db, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, false
	}
	// Both are UTC midnights, so the difference is an exact multiple of 24h.
	return int(db.Sub(da).Hours() / 24), true
}
