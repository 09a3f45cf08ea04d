package availability

import (
	"testing"
	"time"

	"bookly/libs/schedule"
	"bookly/services/booking-service/internal/model"
)

func testService(durationMinutes int) *model.Service {
	return &model.Service{
		ID:              "svc-1",
		ProviderID:      "prov-1",
		Name:            "Corte de cabelo",
		DurationMinutes: durationMinutes,
		Active:          true,
	}
}

func openDay(t *testing.T, date time.Time, open, close string) CalendarDay {
	t.Helper()
	return CalendarDay{
		Date:        date,
		ISODate:     date.Format("2006-01-02"),
		Weekday:     date.Weekday(),
		WeekdayName: schedule.WeekdayName(date.Weekday()),
		Config:      schedule.DayConfig{Open: clockPtr(t, open), Close: clockPtr(t, close)},
	}
}

func appt(t *testing.T, date time.Time, start, end string, status model.Status) model.Appointment {
	t.Helper()
	return model.Appointment{
		ID:         "appt",
		ProviderID: "prov-1",
		ServiceID:  "svc-1",
		Date:       date,
		Start:      clock(t, start),
		End:        clock(t, end),
		Status:     status,
	}
}

func TestIndexByDate(t *testing.T) {
	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	appts := []model.Appointment{
		appt(t, d1, "09:00", "10:00", model.StatusPending),
		appt(t, d2, "09:00", "10:00", model.StatusConfirmed),
		appt(t, d1, "11:00", "12:00", model.StatusConfirmed),
	}
	byDate := IndexByDate(appts)
	if len(byDate["2024-01-10"]) != 2 || len(byDate["2024-01-11"]) != 1 {
		t.Fatalf("unexpected grouping: %v", byDate)
	}
	// Insertion order within a day is preserved.
	if byDate["2024-01-10"][0].Start.String() != "09:00" {
		t.Fatal("expected insertion order within day")
	}
}

func TestDayAvailable_ClosedAndPastAndNoService(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "18:00")
	svc := testService(60)

	closed := day
	closed.Config = schedule.DayConfig{Closed: true}
	if DayAvailable(closed, svc, nil, 0) {
		t.Fatal("closed day must never be available")
	}

	past := day
	past.IsPast = true
	if DayAvailable(past, svc, nil, 0) {
		t.Fatal("past day must never be available")
	}

	if DayAvailable(day, nil, nil, 0) {
		t.Fatal("day without a selected service must not be available")
	}

	if !DayAvailable(day, svc, nil, 0) {
		t.Fatal("open future day with capacity should be available")
	}
}

func TestDayAvailable_CapacityCeiling(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "18:00")
	svc := testService(30)

	var full []model.Appointment
	for i := 0; i < DefaultDayCapacity; i++ {
		// Status does not matter for the ceiling; cancelled rows count too.
		full = append(full, appt(t, date, "09:00", "09:30", model.StatusCancelled))
	}
	if DayAvailable(day, svc, full, 0) {
		t.Fatalf("day with %d appointments must be unavailable", DefaultDayCapacity)
	}
	if !DayAvailable(day, svc, full[:DefaultDayCapacity-1], 0) {
		t.Fatal("day below the ceiling should be available")
	}
}

func TestSlotAvailable_OverlapExclusion(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "18:00")
	svc := testService(60)
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	booked := []model.Appointment{appt(t, date, "10:00", "11:00", model.StatusConfirmed)}

	if SlotAvailable(day, clock(t, "10:30"), svc, booked, now) {
		t.Fatal("10:30 overlaps 10:00-11:00 and must be blocked")
	}
	if SlotAvailable(day, clock(t, "09:30"), svc, booked, now) {
		t.Fatal("09:30-10:30 overlaps 10:00-11:00 and must be blocked")
	}
	if !SlotAvailable(day, clock(t, "11:00"), svc, booked, now) {
		t.Fatal("11:00 is adjacent, not overlapping, and must be offerable")
	}
	if !SlotAvailable(day, clock(t, "09:00"), svc, booked, now) {
		t.Fatal("09:00-10:00 is adjacent, not overlapping, and must be offerable")
	}

	cancelled := []model.Appointment{appt(t, date, "10:00", "11:00", model.StatusCancelled)}
	if !SlotAvailable(day, clock(t, "10:30"), svc, cancelled, now) {
		t.Fatal("cancelled appointments must never block")
	}

	// Pending still reserves the slot (optimistic hold).
	pending := []model.Appointment{appt(t, date, "10:00", "11:00", model.StatusPending)}
	if SlotAvailable(day, clock(t, "10:30"), svc, pending, now) {
		t.Fatal("pending appointments must block")
	}
}

func TestSlotAvailable_PastInstantGuard(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "18:00")
	svc := testService(60)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	if SlotAvailable(day, clock(t, "09:00"), svc, nil, now) {
		t.Fatal("slot before now must be blocked")
	}
	if SlotAvailable(day, clock(t, "10:00"), svc, nil, now) {
		t.Fatal("slot starting exactly at now must be blocked")
	}
	if !SlotAvailable(day, clock(t, "10:05"), svc, nil, now) {
		t.Fatal("slot after now should be offerable")
	}
}

func TestSlotAvailable_EndOfDayBoundary(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "23:30")
	svc := testService(60)
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	// 23:00 + 60min ends exactly at midnight and stays on this date.
	if !SlotAvailable(day, clock(t, "23:00"), svc, nil, now) {
		t.Fatal("slot ending exactly at midnight should be offerable")
	}
	// 23:30 + 60min would spill into the next date and must not be offered.
	if SlotAvailable(day, clock(t, "23:30"), svc, nil, now) {
		t.Fatal("slot crossing past midnight must be blocked")
	}

	// An end-of-day booking still blocks overlapping slots.
	late := []model.Appointment{appt(t, date, "23:00", "23:59", model.StatusConfirmed)}
	late[0].End = schedule.ClockTime(schedule.MinutesPerDay)
	if SlotAvailable(day, clock(t, "23:00"), svc, late, now) {
		t.Fatal("23:00 overlaps the 23:00-24:00 booking and must be blocked")
	}
}

func TestSlotAvailable_NilServiceNeverPanics(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := openDay(t, date, "09:00", "18:00")
	if SlotAvailable(day, clock(t, "09:00"), nil, nil, time.Time{}) {
		t.Fatal("nil service must yield false")
	}
}

func TestOfferableSlots_RoundTrip(t *testing.T) {
	// Monday 09:00-12:00, one 30-minute service, no bookings yet.
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) // a Monday
	day := openDay(t, date, "09:00", "12:00")
	svc := testService(30)
	now := time.Date(2024, 1, 8, 9, 45, 0, 0, time.UTC)

	got := OfferableSlots(day, svc, nil, now)
	want := []string{"10:00", "10:30", "11:00", "11:30"} // 09:00, 09:30 already past
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("slot[%d] = %s, want %s", i, got[i], w)
		}
	}

	// Same day seen from the evening before: the full window is offerable.
	before := time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC)
	all := OfferableSlots(day, svc, nil, before)
	if len(all) != 6 || all[0].String() != "09:00" || all[5].String() != "11:30" {
		t.Fatalf("expected full window of 6 slots, got %v", all)
	}

	if OfferableSlots(day, nil, nil, now) != nil {
		t.Fatal("no service selected must yield no slots")
	}
}
