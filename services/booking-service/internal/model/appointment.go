package model

import (
	"time"

	"bookly/libs/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Valid reports whether s is one of the known appointment statuses.
// Transitions between statuses are deliberately unconstrained.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status reserves its slot.
// Only cancelled appointments release the time; a pending, unconfirmed
// booking still holds it (first successful write wins).
func (s Status) Blocks() bool {
	return s != StatusCancelled
}

type Appointment struct {
	ID          string
	ProviderID  string
	ServiceID   string
	ClientID    string
	ClientName  string
	ClientEmail string
	ClientPhone string
	Date        time.Time // calendar date; time-of-day is always midnight
	Start       schedule.ClockTime
	End         schedule.ClockTime
	Status      Status
	Notes       string
	CreatedAt   time.Time
}

// ISODate is the date identity used to group appointments per calendar day.
func (a Appointment) ISODate() string {
	return a.Date.Format("2006-01-02")
}
