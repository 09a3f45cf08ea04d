package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

func clockPtr(hhmm string) *ClockTime {
	c, err := ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return &c
}

func TestWeeklyHoursJSONUsesLocalizedKeys(t *testing.T) {
	hours := DefaultWeeklyHours()
	data, err := json.Marshal(hours)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]DayConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if len(raw) != 7 {
		t.Fatalf("expected 7 weekday keys, got %d", len(raw))
	}
	for _, key := range []string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing weekday key %q", key)
		}
	}

	var back WeeklyHours
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	monday := back.Day(time.Monday)
	if !monday.IsOpen() || monday.Open.String() != "09:00" || monday.Close.String() != "18:00" {
		t.Fatalf("monday round trip = %+v", monday)
	}
	if back.Day(time.Sunday).IsOpen() {
		t.Fatal("sunday should be closed")
	}
}

func TestWeeklyHoursUnknownKeysDegradeToClosed(t *testing.T) {
	var hours WeeklyHours
	raw := `{"Segunda":{"open":"08:00","close":"12:00","closed":false},"Feriado":{"open":"08:00","close":"12:00","closed":false}}`
	if err := json.Unmarshal([]byte(raw), &hours); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !hours.Day(time.Monday).IsOpen() {
		t.Fatal("monday should be open")
	}
	// Every other weekday falls back to closed rather than erroring.
	if hours.Day(time.Tuesday).IsOpen() {
		t.Fatal("tuesday should degrade to closed")
	}
}

func TestWeeklyHoursValidate(t *testing.T) {
	hours := DefaultWeeklyHours()
	if err := hours.Validate(); err != nil {
		t.Fatalf("default hours should validate: %v", err)
	}

	missing := DefaultWeeklyHours()
	delete(missing, time.Wednesday)
	if err := missing.Validate(); err == nil {
		t.Fatal("expected error for missing weekday")
	}

	inverted := DefaultWeeklyHours()
	inverted[time.Monday] = DayConfig{Open: clockPtr("18:00"), Close: clockPtr("09:00")}
	if err := inverted.Validate(); err == nil {
		t.Fatal("expected error for open >= close")
	}

	halfClosed := DefaultWeeklyHours()
	halfClosed[time.Friday] = DayConfig{Open: clockPtr("09:00"), Closed: true}
	if err := halfClosed.Validate(); err == nil {
		t.Fatal("expected error for closed day with times")
	}

	openMissingClose := DefaultWeeklyHours()
	openMissingClose[time.Friday] = DayConfig{Open: clockPtr("09:00")}
	if err := openMissingClose.Validate(); err == nil {
		t.Fatal("expected error for open day missing close")
	}
}

func TestWeekdayName(t *testing.T) {
	if WeekdayName(time.Monday) != "Segunda" || WeekdayName(time.Sunday) != "Domingo" {
		t.Fatal("unexpected weekday names")
	}
}
