package report

import (
	"fmt"
	"time"
)

// Period tokens offered by the report flow.
const (
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodMonth     = "month"
	PeriodCustom    = "custom"
)

// Period is an inclusive date range. From and To are midnight values
// in the server timezone.
type Period struct {
	From time.Time
	To   time.Time
}

// Empty reports an inverted range. Resolve does not special-case
// "today is Monday" for week or "today is the 1st" for month; both
// produce From > To and callers must treat that as no data instead of
// pushing the inverted pair into a query.
func (p Period) Empty() bool {
	return p.From.After(p.To)
}

// Resolve maps a period token to a concrete range anchored at today in
// the server timezone. Ranges never include today itself: the current
// day is still accumulating.
func Resolve(token string, today time.Time) (Period, error) {
	day := Midnight(today)
	yesterday := day.AddDate(0, 0, -1)
	switch token {
	case PeriodYesterday:
		return Period{From: yesterday, To: yesterday}, nil
	case PeriodWeek:
		// Most recent Monday on or before today.
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return Period{From: monday, To: yesterday}, nil
	case PeriodMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return Period{From: first, To: yesterday}, nil
	}
	return Period{}, fmt.Errorf("unknown period %q", token)
}

// Midnight truncates t to the start of its calendar day, keeping the
// location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
