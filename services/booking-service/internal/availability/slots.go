package availability

import "bookly/libs/schedule"

// Slots emits the candidate start times for a working window: open first,
// then stepping by stepMinutes while strictly before close. No conflict or
// past-ness filtering happens here.
//
// A window with close <= open gets the end extended by 24 hours exactly
// once, so an inverted or same-instant configuration still yields a bounded
// sequence. Start times generated past midnight wrap to their clock value.
func Slots(open, close schedule.ClockTime, stepMinutes int) []schedule.ClockTime {
	if stepMinutes <= 0 {
		return nil
	}
	end := int(close)
	if end <= int(open) {
		end += schedule.MinutesPerDay
	}
	var out []schedule.ClockTime
	for t := int(open); t < end; t += stepMinutes {
		out = append(out, schedule.ClockTime(t%schedule.MinutesPerDay))
	}
	return out
}
