package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
)

// MonthQuery selects the home timeline for one calendar month. Month is 0-based (0 = January).
type MonthQuery struct {
	Month int
	Year  int
	Day   *time.Time
	Loc   *time.Location
}

// Validate rejects months outside 0-11 and years outside a sane window.
func (q MonthQuery) Validate() error {
	if q.Month < 0 || q.Month > 11 {
		return &utils.ValidationError{Field: "month", Message: "month must be between 0 and 11"}
	}
	if q.Year < 1970 || q.Year > 9999 {
		return &utils.ValidationError{Field: "year", Message: "year is out of range"}
	}
	if q.Day != nil {
		y, m, _ := q.Day.Date()
		if y != q.Year || int(m)-1 != q.Month {
			return &utils.ValidationError{Field: "day", Message: "day must fall in the selected month"}
		}
	}
	return nil
}

func (q MonthQuery) location() *time.Location {
	if q.Loc == nil {
		return time.UTC
	}
	return q.Loc
}

// MonthRange returns [start, end) for the month in loc.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Range is the query's month window.
func (q MonthQuery) Range() (time.Time, time.Time) {
	return MonthRange(q.Year, q.Month, q.location())
}

// FilterEntries keeps uncategorized entries created in the month (and on Day, when set),
// newest first. Entries with no creation time never match.
func FilterEntries(entries []models.Entry, q MonthQuery) []models.Entry {
	loc := q.location()
	start, end := q.Range()

	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.CreatedAt.IsZero() || !e.Uncategorized() {
			continue
		}
		if e.CreatedAt.Before(start) || !e.CreatedAt.Before(end) {
			continue
		}
		if q.Day != nil && !sameDay(e.CreatedAt.In(loc), *q.Day) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return entryNewer(out[i], out[j]) })
	return out
}

// MarkedDays lists the days of the month (1-31, ascending) that have at least one uncategorized entry.
func MarkedDays(entries []models.Entry, q MonthQuery) []int {
	loc := q.location()
	q.Day = nil
	seen := map[int]bool{}
	days := []int{}
	for _, e := range FilterEntries(entries, q) {
		d := e.CreatedAt.In(loc).Day()
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// DaysUntilMonth is how many calendar days lie between now and the first of the month.
// Zero or negative means the month has started.
func DaysUntilMonth(now time.Time, q MonthQuery) int {
	start, _ := q.Range()
	return DaysBetween(now.In(q.location()), start)
}

// ParseDay reads a YYYY-MM-DD selection in loc.
func ParseDay(raw string, loc *time.Location) (*time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, &utils.ValidationError{Field: "day", Message: fmt.Sprintf("day %q is not a YYYY-MM-DD date", raw)}
	}
	return &t, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// entryNewer orders by created_at descending, then id descending so equal timestamps stay stable.
func entryNewer(a, b models.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}
