package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"bookly/services/notification-service/internal/consumer"
	"bookly/services/notification-service/internal/email"
	"bookly/services/notification-service/internal/storage"
)

type appointmentCreatedPayload struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	ServiceName   string `json:"service_name"`
	ClientID      string `json:"client_id"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type statusChangedPayload struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	ClientID      string `json:"client_id"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

// createdNotification is the in-app row for the provider: a new request
// landed on their calendar.
func createdNotification(p appointmentCreatedPayload) storage.Notification {
	return storage.Notification{
		RecipientID:   p.ProviderID,
		AppointmentID: p.AppointmentID,
		Kind:          "appointment_created",
		Title:         "New booking request",
		Body:          fmt.Sprintf("%s booked %s on %s at %s.", p.ClientName, p.ServiceName, p.Date, p.StartTime),
		Payload: map[string]any{
			"date":       p.Date,
			"start_time": p.StartTime,
			"end_time":   p.EndTime,
		},
	}
}

// statusNotification is the in-app row for the client whose appointment
// moved. Guests have no account to deliver to, so ok is false and only
// email reaches them.
func statusNotification(p statusChangedPayload) (storage.Notification, bool) {
	if p.ClientID == "" {
		return storage.Notification{}, false
	}
	return storage.Notification{
		RecipientID:   p.ClientID,
		AppointmentID: p.AppointmentID,
		Kind:          "appointment_status_changed",
		Title:         "Appointment " + p.NewStatus,
		Body:          fmt.Sprintf("Your appointment on %s at %s moved from %s to %s.", p.Date, p.StartTime, p.OldStatus, p.NewStatus),
		Payload: map[string]any{
			"old_status": p.OldStatus,
			"new_status": p.NewStatus,
		},
	}, true
}

func handleCreated(logger *slog.Logger, repo *storage.Repository, sender email.Sender) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload appointmentCreatedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid appointment created payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.ProviderID == "" {
			logger.Error("missing appointment created fields")
			return nil
		}

		if err := repo.Insert(ctx, createdNotification(payload)); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}

		if payload.ClientEmail != "" {
			subject := "Booking request received"
			body := fmt.Sprintf("Hi %s, your booking for %s on %s at %s was received and is pending confirmation.",
				payload.ClientName, payload.ServiceName, payload.Date, payload.StartTime)
			if err := sender.Send(payload.ClientEmail, subject, body); err != nil {
				// Email is best effort; the in-app notification already committed.
				logger.Error("email send failed", "err", err, "recipient", payload.ClientEmail)
			}
		}

		logger.Info("appointment created processed", "appointment_id", payload.AppointmentID)
		return nil
	}
}

func handleStatusChanged(logger *slog.Logger, repo *storage.Repository, sender email.Sender) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload statusChangedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid status changed payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.ProviderID == "" || payload.NewStatus == "" {
			logger.Error("missing status changed fields")
			return nil
		}

		if notif, ok := statusNotification(payload); ok {
			if err := repo.Insert(ctx, notif); err != nil {
				logger.Error("failed to persist notification", "err", err)
				return err
			}
		}

		if payload.ClientEmail != "" {
			subject := "Your appointment is " + payload.NewStatus
			body := fmt.Sprintf("Hi %s, your appointment on %s at %s is now %s.",
				payload.ClientName, payload.Date, payload.StartTime, payload.NewStatus)
			if err := sender.Send(payload.ClientEmail, subject, body); err != nil {
				logger.Error("email send failed", "err", err, "recipient", payload.ClientEmail)
			}
		}

		logger.Info("status change processed", "appointment_id", payload.AppointmentID, "new_status", payload.NewStatus)
		return nil
	}
}
