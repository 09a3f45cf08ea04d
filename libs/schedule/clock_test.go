package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"14:00:00", 840, false}, // time column with seconds
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"garbage", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockString(t *testing.T) {
	if got := ClockTime(570).String(); got != "09:30" {
		t.Fatalf("String = %q, want 09:30", got)
	}
	if got := ClockTime(0).String(); got != "00:00" {
		t.Fatalf("String = %q, want 00:00", got)
	}
}

func TestClockAddWrapsPastMidnight(t *testing.T) {
	start := ClockTime(23*60 + 30)
	if got := start.Add(45); got.String() != "00:15" {
		t.Fatalf("23:30 + 45m = %s, want 00:15", got)
	}
	// 09:30 + 45m = 10:15
	if got := ClockTime(570).Add(45); got.String() != "10:15" {
		t.Fatalf("09:30 + 45m = %s, want 10:15", got)
	}
}

func TestClockAt(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, loc)
	got := ClockTime(570).At(date)
	want := time.Date(2024, 1, 15, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("At = %s, want %s", got, want)
	}
}

func TestClockJSONRoundTrip(t *testing.T) {
	c := ClockTime(1020)
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"17:00"` {
		t.Fatalf("marshal = %s, want \"17:00\"", data)
	}
	var back ClockTime
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != c {
		t.Fatalf("round trip = %d, want %d", back, c)
	}
}
