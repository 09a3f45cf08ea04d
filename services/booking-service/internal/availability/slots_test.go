package availability

import (
	"testing"

	"bookly/libs/schedule"
)

func clock(t *testing.T, hhmm string) schedule.ClockTime {
	t.Helper()
	c, err := schedule.ParseClock(hhmm)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", hhmm, err)
	}
	return c
}

func TestSlots_HourlySteps(t *testing.T) {
	got := Slots(clock(t, "09:00"), clock(t, "18:00"), 60)
	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d (%v)", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("slot[%d] = %s, want %s", i, got[i], w)
		}
	}
}

func TestSlots_CloseIsExclusive(t *testing.T) {
	got := Slots(clock(t, "09:00"), clock(t, "12:00"), 30)
	if len(got) == 0 {
		t.Fatal("expected slots")
	}
	if last := got[len(got)-1].String(); last != "11:30" {
		t.Fatalf("last slot = %s, want 11:30 (close time must never be emitted)", last)
	}
}

func TestSlots_NonPositiveStep(t *testing.T) {
	if got := Slots(clock(t, "09:00"), clock(t, "18:00"), 0); got != nil {
		t.Fatalf("step 0: expected no slots, got %v", got)
	}
	if got := Slots(clock(t, "09:00"), clock(t, "18:00"), -15); got != nil {
		t.Fatalf("negative step: expected no slots, got %v", got)
	}
}

func TestSlots_InvertedWindowStaysBounded(t *testing.T) {
	// close <= open extends the end by 24h once; the sequence must be
	// finite and start at the configured open time.
	got := Slots(clock(t, "22:00"), clock(t, "02:00"), 60)
	if len(got) != 4 {
		t.Fatalf("expected 4 slots, got %d (%v)", len(got), got)
	}
	if got[0].String() != "22:00" || got[2].String() != "00:00" {
		t.Fatalf("unexpected sequence %v", got)
	}

	same := Slots(clock(t, "09:00"), clock(t, "09:00"), 60)
	if len(same) != 24 {
		t.Fatalf("same-instant window: expected 24 hourly slots, got %d", len(same))
	}
}
