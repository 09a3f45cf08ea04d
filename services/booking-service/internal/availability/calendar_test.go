package availability

import (
	"testing"
	"time"

	"bookly/libs/schedule"
)

func TestMonthGrid_Layout(t *testing.T) {
	hours := schedule.DefaultWeeklyHours()
	// January 2024 starts on a Monday and has 31 days.
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)

	grid := MonthGrid(hours, anchor, today)
	if len(grid)%7 != 0 {
		t.Fatalf("grid length %d is not a multiple of 7", len(grid))
	}
	if grid[0] != nil {
		t.Fatal("expected leading Sunday placeholder for a month starting Monday")
	}
	if grid[1] == nil || grid[1].ISODate != "2024-01-01" {
		t.Fatalf("expected Jan 1 at cell 1, got %+v", grid[1])
	}

	var inMonth int
	for _, cell := range grid {
		if cell != nil {
			inMonth++
		}
	}
	if inMonth != 31 {
		t.Fatalf("expected 31 in-month cells, got %d", inMonth)
	}
}

func TestMonthGrid_PastTodayAndWeekday(t *testing.T) {
	hours := schedule.DefaultWeeklyHours()
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// Late in the day: the date comparison alone decides past-ness.
	today := time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)

	grid := MonthGrid(hours, anchor, today)
	byISO := map[string]*CalendarDay{}
	for _, cell := range grid {
		if cell != nil {
			byISO[cell.ISODate] = cell
		}
	}

	if !byISO["2024-01-14"].IsPast {
		t.Fatal("Jan 14 should be past")
	}
	if byISO["2024-01-15"].IsPast || !byISO["2024-01-15"].IsToday {
		t.Fatal("Jan 15 should be today and not past")
	}
	if byISO["2024-01-16"].IsPast {
		t.Fatal("Jan 16 should not be past")
	}

	mon := byISO["2024-01-01"]
	if mon.Weekday != time.Monday || mon.WeekdayName != "Segunda" {
		t.Fatalf("Jan 1 weekday = %v/%s", mon.Weekday, mon.WeekdayName)
	}
	sat := byISO["2024-01-06"]
	if sat.Config.IsOpen() {
		t.Fatal("Saturday should be closed under default hours")
	}
}

func TestMonthGrid_PartialHoursDegradeToClosed(t *testing.T) {
	hours := schedule.WeeklyHours{
		time.Monday: schedule.DayConfig{Open: clockPtr(t, "09:00"), Close: clockPtr(t, "12:00")},
	}
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	grid := MonthGrid(hours, anchor, anchor)

	for _, cell := range grid {
		if cell == nil {
			continue
		}
		open := cell.Config.IsOpen()
		if cell.Weekday == time.Monday && !open {
			t.Fatalf("%s: Monday should be open", cell.ISODate)
		}
		if cell.Weekday != time.Monday && open {
			t.Fatalf("%s: weekday without config should degrade to closed", cell.ISODate)
		}
	}
}

func clockPtr(t *testing.T, hhmm string) *schedule.ClockTime {
	t.Helper()
	c := clock(t, hhmm)
	return &c
}
