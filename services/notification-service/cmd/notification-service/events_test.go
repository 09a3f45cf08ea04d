package main

import "testing"

func TestCreatedNotificationTargetsProvider(t *testing.T) {
	payload := appointmentCreatedPayload{
		AppointmentID: "appt-1",
		ProviderID:    "prov-1",
		ServiceName:   "Corte de cabelo",
		ClientID:      "client-1",
		ClientName:    "Maria",
		Date:          "2024-06-10",
		StartTime:     "10:00",
	}

	notif := createdNotification(payload)
	if notif.RecipientID != "prov-1" {
		t.Errorf("recipient = %q, want the provider", notif.RecipientID)
	}
	if notif.Kind != "appointment_created" {
		t.Errorf("kind = %q", notif.Kind)
	}
}

func TestStatusNotificationTargetsClient(t *testing.T) {
	payload := statusChangedPayload{
		AppointmentID: "appt-1",
		ProviderID:    "prov-1",
		ClientID:      "client-1",
		ClientName:    "Maria",
		Date:          "2024-06-10",
		StartTime:     "10:00",
		OldStatus:     "pending",
		NewStatus:     "confirmed",
	}

	notif, ok := statusNotification(payload)
	if !ok {
		t.Fatal("client with an account must get an in-app notification")
	}
	if notif.RecipientID != "client-1" {
		t.Errorf("recipient = %q, want the client", notif.RecipientID)
	}
	if notif.Title != "Appointment confirmed" {
		t.Errorf("title = %q", notif.Title)
	}

	// Guest bookings carry no client id; email is their only channel.
	payload.ClientID = ""
	if _, ok := statusNotification(payload); ok {
		t.Fatal("guest booking must not produce an in-app notification")
	}
}
