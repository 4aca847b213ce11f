package reporting_test

import (
	"testing"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/reporting"
)

// Wednesday; the week opened on Sunday 2024-06-09.
var refNow = time.Date(2024, time.June, 12, 15, 30, 0, 0, time.UTC)

func TestCalendar_Buckets(t *testing.T) {
	cal := reporting.NewCalendar(refNow)

	tests := []struct {
		name string
		date string
		want reporting.Buckets
	}{
		{"today date only", "2024-06-12", reporting.Buckets{Today: true, ThisWeek: true}},
		{"today with time", "2024-06-12 08:15", reporting.Buckets{Today: true, ThisWeek: true}},
		{"today late evening", "2024-06-12 23:59:59", reporting.Buckets{Today: true, ThisWeek: true}},
		{"yesterday", "2024-06-11 10:00", reporting.Buckets{Yesterday: true, ThisWeek: true}},
		{"week start sunday", "2024-06-09", reporting.Buckets{ThisWeek: true}},
		{"saturday before week", "2024-06-08", reporting.Buckets{}},
		{"saturday closing week", "2024-06-15", reporting.Buckets{ThisWeek: true}},
		{"next sunday", "2024-06-16", reporting.Buckets{}},
		{"last year same day", "2023-06-12", reporting.Buckets{}},
		{"garbage", "not-a-date", reporting.Buckets{}},
		{"empty", "", reporting.Buckets{}},
		{"impossible day", "2024-02-31", reporting.Buckets{}},
		{"slashes", "12/06/2024", reporting.Buckets{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.Buckets(tt.date)
			if got != tt.want {
				t.Errorf("Buckets(%q) = %+v, want %+v", tt.date, got, tt.want)
			}
		})
	}
}

func TestCalendar_SundayIsOwnWeekStart(t *testing.T) {
	sunday := time.Date(2024, time.June, 9, 9, 0, 0, 0, time.UTC)
	cal := reporting.NewCalendar(sunday)

	if !cal.WeekStart().Equal(time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected week to start on the same Sunday, got %s", cal.WeekStart())
	}
	if cal.IsThisWeek("2024-06-08") {
		t.Error("expected previous Saturday outside the week")
	}
	if !cal.IsYesterday("2024-06-08") {
		t.Error("expected previous Saturday to be yesterday")
	}
}

func TestCalendar_YesterdayAcrossMonthBoundary(t *testing.T) {
	cal := reporting.NewCalendar(time.Date(2024, time.March, 1, 0, 5, 0, 0, time.UTC))
	if !cal.IsYesterday("2024-02-29 22:00") {
		t.Error("expected leap day to be yesterday on March 1st")
	}
}

func TestCalendar_UsesNowLocation(t *testing.T) {
	kinshasa := time.FixedZone("WAT", 1*60*60)
	// 23:30 UTC on the 11th is already the 12th in Kinshasa.
	now := time.Date(2024, time.June, 11, 23, 30, 0, 0, time.UTC).In(kinshasa)
	cal := reporting.NewCalendar(now)

	if !cal.IsToday("2024-06-12") {
		t.Error("expected the local calendar day to be today")
	}
}

func TestCalendar_Matcher(t *testing.T) {
	cal := reporting.NewCalendar(refNow)
	tx := domain.Transaction{Date: "2024-06-11 09:00"}

	if cal.Matcher(reporting.PeriodToday)(tx) {
		t.Error("today matcher should reject yesterday")
	}
	if !cal.Matcher(reporting.PeriodYesterday)(tx) {
		t.Error("yesterday matcher should accept yesterday")
	}
	if !cal.Matcher(reporting.PeriodWeek)(tx) {
		t.Error("week matcher should accept yesterday")
	}
	if !cal.Matcher(reporting.PeriodAll)(domain.Transaction{Date: "garbage"}) {
		t.Error("all matcher should accept everything")
	}
}

func TestParsePeriod(t *testing.T) {
	if p, ok := reporting.ParsePeriod(" Week "); !ok || p != reporting.PeriodWeek {
		t.Errorf("expected week, got %q (ok=%v)", p, ok)
	}
	if _, ok := reporting.ParsePeriod("fortnight"); ok {
		t.Error("expected unknown period to be rejected")
	}
}

func TestTimestamp_OrdersTimeOfDay(t *testing.T) {
	morning := reporting.Timestamp("2024-06-12 08:00")
	evening := reporting.Timestamp("2024-06-12 20:00")
	dateOnly := reporting.Timestamp("2024-06-12")
	bad := reporting.Timestamp("nope")

	if !(bad < dateOnly && dateOnly < morning && morning < evening) {
		t.Errorf("unexpected ordering: bad=%d date=%d morning=%d evening=%d", bad, dateOnly, morning, evening)
	}
}

func TestCalendar_ParseDayAndWindow(t *testing.T) {
	cal := reporting.NewCalendar(refNow)

	day, ok := cal.ParseDay(" 2024-06-10 07:45 ")
	if !ok || day.Day() != 10 || day.Hour() != 0 {
		t.Errorf("ParseDay = %v, %v; want 2024-06-10 midnight", day, ok)
	}
	if _, ok := cal.ParseDay("2024-13-01"); ok {
		t.Error("month 13 should not parse")
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2024-06-12 23:00", true},
		{"2024-06-06", true},
		{"2024-06-05", false},
		{"2024-06-13", false},
		{"bad", false},
	}
	for _, tt := range tests {
		if got := cal.InWindow(tt.date, 7); got != tt.want {
			t.Errorf("InWindow(%q, 7) = %v, want %v", tt.date, got, tt.want)
		}
	}
}
