// Package reporting holds the pure aggregation core behind the admin
// dashboards: date bucketing, contribution totals, missed-contribution
// detection and the generic table helper.
//
// Every function works on an immutable snapshot and returns fresh values;
// nothing here performs I/O or keeps state between calls.
package reporting

import (
	"strings"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

const dayLayout = "2006-01-02"

// Period names a reporting window relative to the calendar's "now".
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodTomorrow  Period = "tomorrow"
	PeriodWeek      Period = "week"
	PeriodAll       Period = "all"
)

// ParsePeriod maps a query value onto a Period. Unknown values are rejected.
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodYesterday, PeriodTomorrow, PeriodWeek, PeriodAll:
		return p, true
	}
	return "", false
}

// Buckets is the membership of one date in the dashboard buckets.
type Buckets struct {
	Today     bool
	Yesterday bool
	ThisWeek  bool
}

// Calendar classifies transaction dates relative to a fixed instant.
type Calendar struct {
	now       time.Time
	today     time.Time
	weekStart time.Time
}

// NewCalendar pins the calendar to now. Days are computed in now's location.
func NewCalendar(now time.Time) Calendar {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Calendar{
		now:       now,
		today:     today,
		weekStart: today.AddDate(0, 0, -int(today.Weekday())),
	}
}

// Now returns the reference instant.
func (c Calendar) Now() time.Time { return c.now }

// Today returns midnight of the reference day.
func (c Calendar) Today() time.Time { return c.today }

// WeekStart returns the Sunday that opens the current week.
func (c Calendar) WeekStart() time.Time { return c.weekStart }

// ParseDay extracts the calendar day of a transaction date. Anything after
// the first space (the time of day) is ignored. ok is false for malformed
// input.
func (c Calendar) ParseDay(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, ' '); i >= 0 {
		date = date[:i]
	}
	day, err := time.ParseInLocation(dayLayout, date, c.today.Location())
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Buckets classifies date. Malformed dates belong to no bucket.
func (c Calendar) Buckets(date string) Buckets {
	day, ok := c.ParseDay(date)
	if !ok {
		return Buckets{}
	}
	return Buckets{
		Today:     sameDay(day, c.today),
		Yesterday: sameDay(day, c.today.AddDate(0, 0, -1)),
		ThisWeek:  !day.Before(c.weekStart) && day.Before(c.weekStart.AddDate(0, 0, 7)),
	}
}

func (c Calendar) IsToday(date string) bool     { return c.Buckets(date).Today }
func (c Calendar) IsYesterday(date string) bool { return c.Buckets(date).Yesterday }
func (c Calendar) IsThisWeek(date string) bool  { return c.Buckets(date).ThisWeek }

// InWindow reports whether date falls within the trailing window of days
// ending on today inclusive.
func (c Calendar) InWindow(date string, days int) bool {
	day, ok := c.ParseDay(date)
	if !ok {
		return false
	}
	return !day.After(c.today) && day.After(c.today.AddDate(0, 0, -days))
}

// Matcher returns the transaction predicate for period. Tomorrow has no
// transactions of its own and matches today, as the dashboards do.
func (c Calendar) Matcher(period Period) func(domain.Transaction) bool {
	switch period {
	case PeriodToday, PeriodTomorrow:
		return func(tx domain.Transaction) bool { return c.IsToday(tx.Date) }
	case PeriodYesterday:
		return func(tx domain.Transaction) bool { return c.IsYesterday(tx.Date) }
	case PeriodWeek:
		return func(tx domain.Transaction) bool { return c.IsThisWeek(tx.Date) }
	default:
		return func(domain.Transaction) bool { return true }
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
