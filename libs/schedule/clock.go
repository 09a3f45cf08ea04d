package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

const MinutesPerDay = 24 * 60

// ClockTime is a minute-of-day value (0..1439) rendered as "HH:MM".
// Appointments and working hours carry no seconds and no date.
type ClockTime int

// ParseClock accepts "HH:MM" and, for tolerance of database time columns,
// "HH:MM:SS" (the seconds are discarded).
func ParseClock(s string) (ClockTime, error) {
	var h, m int
	if len(s) >= 8 {
		var sec int
		if _, err := fmt.Sscanf(s, "%02d:%02d:%02d", &h, &m, &sec); err != nil {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	} else {
		if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) String() string {
	mins := int(c) % MinutesPerDay
	if mins < 0 {
		mins += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Add returns the clock time mins minutes later, wrapping past midnight.
// The wrap loses the day boundary on purpose: appointment end times are
// clock values only and never move the appointment date.
func (c ClockTime) Add(mins int) ClockTime {
	v := (int(c) + mins) % MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return ClockTime(v)
}

// At anchors the clock time on the given calendar date, in that date's location.
func (c ClockTime) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, date.Location())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
