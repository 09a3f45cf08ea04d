package availability

import (
	"time"

	"bookly/libs/schedule"
)

// CalendarDay is one in-month cell of the booking calendar. It is derived
// on every request and never persisted.
type CalendarDay struct {
	Date        time.Time
	ISODate     string
	Weekday     time.Weekday
	WeekdayName string
	IsToday     bool
	IsPast      bool
	Config      schedule.DayConfig
}

// MonthGrid lays the month containing anchor out on a fixed seven-column
// week grid starting on Sunday. Cells before the first and after the last
// day of the month are nil placeholders, so the result length is always a
// multiple of seven.
func MonthGrid(hours schedule.WeeklyHours, anchor, today time.Time) []*CalendarDay {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayDate := dateOnly(today)

	grid := make([]*CalendarDay, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		grid = append(grid, nil)
	}
	for dayNum := 1; dayNum <= daysInMonth; dayNum++ {
		day := dayFor(hours, first.AddDate(0, 0, dayNum-1), todayDate)
		grid = append(grid, &day)
	}
	for len(grid)%7 != 0 {
		grid = append(grid, nil)
	}
	return grid
}

// DayFor builds the calendar cell for a single date outside any month grid.
func DayFor(hours schedule.WeeklyHours, date, today time.Time) CalendarDay {
	return dayFor(hours, dateOnly(date), dateOnly(today))
}

func dayFor(hours schedule.WeeklyHours, date, todayDate time.Time) CalendarDay {
	wd := date.Weekday()
	return CalendarDay{
		Date:        date,
		ISODate:     date.Format("2006-01-02"),
		Weekday:     wd,
		WeekdayName: schedule.WeekdayName(wd),
		IsToday:     date.Equal(todayDate),
		IsPast:      date.Before(todayDate),
		Config:      hours.Day(wd),
	}
}

// dateOnly truncates t to its calendar date in t's own location. Past-ness
// is a date comparison only; time of day never matters.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
