package model

// Service is the booking view of a provider's catalog entry. Its duration
// sizes the slots offered for it and fixes the appointment end time at
// creation; later catalog edits never touch existing appointments.
type Service struct {
	ID              string
	ProviderID      string
	Name            string
	Description     string
	DurationMinutes int
	Price           string
	Active          bool
}
