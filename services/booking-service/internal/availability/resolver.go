package availability

import (
	"time"

	"bookly/libs/schedule"
	"bookly/services/booking-service/internal/model"
)

// DefaultDayCapacity is the admission-control ceiling on appointments per
// provider per calendar date, counted across all statuses.
const DefaultDayCapacity = 10

// IndexByDate groups appointments by calendar date, preserving input order
// within each day. It is rebuilt from the full list on every fetch.
func IndexByDate(appts []model.Appointment) map[string][]model.Appointment {
	byDate := make(map[string][]model.Appointment, len(appts))
	for _, a := range appts {
		key := a.ISODate()
		byDate[key] = append(byDate[key], a)
	}
	return byDate
}

// DayAvailable decides whether a calendar day is selectable at all:
// not past, a service chosen (otherwise slots cannot be sized), an open
// working window, and the per-day ceiling not yet reached.
func DayAvailable(day CalendarDay, service *model.Service, apptsOnDay []model.Appointment, capacity int) bool {
	if capacity <= 0 {
		capacity = DefaultDayCapacity
	}
	if day.IsPast {
		return false
	}
	if service == nil {
		return false
	}
	if !day.Config.IsOpen() {
		return false
	}
	if len(apptsOnDay) >= capacity {
		return false
	}
	return true
}

// SlotAvailable decides whether a single generated start time is offerable
// on a day that already passed DayAvailable. A slot starting at or before
// now is never offerable, and neither is one overlapping any non-cancelled
// appointment on that date (half-open intervals). A slot whose end would
// cross past midnight is not offerable either: appointments belong to one
// calendar date, with an end of exactly 24:00 as the latest allowed.
func SlotAvailable(day CalendarDay, slot schedule.ClockTime, service *model.Service, apptsOnDay []model.Appointment, now time.Time) bool {
	if service == nil {
		return false
	}

	slotStart := slot.At(day.Date)
	if !slotStart.After(now) {
		return false
	}

	startMin := int(slot)
	endMin := startMin + service.DurationMinutes
	if endMin > schedule.MinutesPerDay {
		return false
	}
	for _, a := range apptsOnDay {
		if !a.Status.Blocks() {
			continue
		}
		if startMin < int(a.End) && endMin > int(a.Start) {
			return false
		}
	}
	return true
}

// OfferableSlots runs the full per-day pipeline: generate candidates from
// the day's window sized by the service duration, then keep the ones that
// pass SlotAvailable, in generation order.
func OfferableSlots(day CalendarDay, service *model.Service, apptsOnDay []model.Appointment, now time.Time) []schedule.ClockTime {
	if service == nil || !day.Config.IsOpen() {
		return nil
	}
	candidates := Slots(*day.Config.Open, *day.Config.Close, service.DurationMinutes)
	out := make([]schedule.ClockTime, 0, len(candidates))
	for _, slot := range candidates {
		if SlotAvailable(day, slot, service, apptsOnDay, now) {
			out = append(out, slot)
		}
	}
	return out
}
