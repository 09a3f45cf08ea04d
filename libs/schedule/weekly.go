package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayConfig is one weekday's opening window. Closed days carry no times.
type DayConfig struct {
	Open   *ClockTime `json:"open"`
	Close  *ClockTime `json:"close"`
	Closed bool       `json:"closed"`
}

// IsOpen reports whether the day has a usable booking window. A day whose
// config is missing either bound is treated as closed rather than an error.
func (d DayConfig) IsOpen() bool {
	return !d.Closed && d.Open != nil && d.Close != nil
}

// WeeklyHours is a provider's per-weekday opening configuration. Its JSON
// form is an object keyed by the localized weekday names the dashboard
// stores (Segunda..Domingo), always with all seven keys present.
type WeeklyHours map[time.Weekday]DayConfig

// Weekday display names, pt-BR, matching the stored configuration keys.
var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Segunda",
	time.Tuesday:   "Terça",
	time.Wednesday: "Quarta",
	time.Thursday:  "Quinta",
	time.Friday:    "Sexta",
	time.Saturday:  "Sábado",
}

var weekdayByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(weekdayNames))
	for wd, name := range weekdayNames {
		m[name] = wd
	}
	// English key aliases for older rows written before the dashboard was localized.
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		m[wd.String()] = wd
	}
	return m
}()

func WeekdayName(wd time.Weekday) string {
	return weekdayNames[wd]
}

// Day returns the configuration for a weekday. Missing entries come back
// as a closed day so a partially stored configuration degrades instead of
// failing the whole calendar.
func (w WeeklyHours) Day(wd time.Weekday) DayConfig {
	cfg, ok := w[wd]
	if !ok {
		return DayConfig{Closed: true}
	}
	return cfg
}

func (w WeeklyHours) MarshalJSON() ([]byte, error) {
	out := make(map[string]DayConfig, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		out[weekdayNames[wd]] = w.Day(wd)
	}
	return json.Marshal(out)
}

func (w *WeeklyHours) UnmarshalJSON(data []byte) error {
	var raw map[string]DayConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	hours := make(WeeklyHours, 7)
	for name, cfg := range raw {
		wd, ok := weekdayByName[name]
		if !ok {
			// Unknown keys are dropped; the weekday falls back to closed.
			continue
		}
		hours[wd] = cfg
	}
	*w = hours
	return nil
}

// Validate enforces the write-path invariants: all seven weekdays present,
// closed days carry no times, open days carry both with open before close.
// Read paths never call this; they degrade to closed instead.
func (w WeeklyHours) Validate() error {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		cfg, ok := w[wd]
		if !ok {
			return fmt.Errorf("missing weekday %s", weekdayNames[wd])
		}
		if cfg.Closed {
			if cfg.Open != nil || cfg.Close != nil {
				return fmt.Errorf("%s is closed but has times set", weekdayNames[wd])
			}
			continue
		}
		if cfg.Open == nil || cfg.Close == nil {
			return fmt.Errorf("%s needs both open and close times", weekdayNames[wd])
		}
		if *cfg.Open >= *cfg.Close {
			return fmt.Errorf("%s open time must be before close time", weekdayNames[wd])
		}
	}
	return nil
}

// DefaultWeeklyHours is the configuration seeded at provider registration:
// weekdays 09:00-18:00, weekend closed.
func DefaultWeeklyHours() WeeklyHours {
	open := ClockTime(9 * 60)
	close := ClockTime(18 * 60)
	hours := make(WeeklyHours, 7)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		o, c := open, close
		hours[wd] = DayConfig{Open: &o, Close: &c}
	}
	hours[time.Saturday] = DayConfig{Closed: true}
	hours[time.Sunday] = DayConfig{Closed: true}
	return hours
}
