package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookly/libs/schedule"
	"bookly/services/booking-service/internal/availability"
	"bookly/services/booking-service/internal/model"
	"bookly/services/booking-service/internal/outbox"
	"bookly/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo        *storage.BookingRepository
	outboxRepo  *outbox.Repository
	logger      *slog.Logger
	dayCapacity int
	now         func() time.Time
}

func NewBookingHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, logger *slog.Logger, dayCapacity int) *BookingHandler {
	if dayCapacity <= 0 {
		dayCapacity = availability.DefaultDayCapacity
	}
	return &BookingHandler{
		repo:        repo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		dayCapacity: dayCapacity,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type dayItem struct {
	Date        string `json:"date"`
	WeekdayName string `json:"weekday_name"`
	IsToday     bool   `json:"is_today"`
	IsPast      bool   `json:"is_past"`
	Closed      bool   `json:"closed"`
	Open        string `json:"open,omitempty"`
	Close       string `json:"close,omitempty"`
	Available   bool   `json:"available"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type createBookingRequest struct {
	ProviderID  string `json:"provider_id"`
	ServiceID   string `json:"service_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	Notes       string `json:"notes"`
}

type appointmentResponse struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	ServiceID     string `json:"service_id"`
	ClientName    string `json:"client_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type updateStatusRequest struct {
	ProviderID    string `json:"provider_id"`
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// Days reports, for each day of the requested month, whether the provider
// can take at least one more booking for the given service. The month grid
// is Sunday-first with null padding cells, mirroring the booking calendar.
func (h *BookingHandler) Days(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	if providerID == "" || serviceID == "" {
		http.Error(w, "provider_id and service_id are required", http.StatusBadRequest)
		return
	}

	now := h.now()
	anchor := now
	if monthStr != "" {
		parsed, err := time.ParseInLocation("2006-01", monthStr, time.UTC)
		if err != nil {
			http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
			return
		}
		anchor = parsed
	}

	ctx := r.Context()
	svc, err := h.repo.GetService(ctx, providerID, serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}

	hours, err := h.repo.GetProviderSchedule(ctx, providerID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	appts, err := h.repo.ListByProviderBetween(ctx, providerID, monthStart, monthEnd)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}
	byDate := availability.IndexByDate(appts)

	grid := availability.MonthGrid(hours, anchor, now)
	items := make([]*dayItem, 0, len(grid))
	for _, day := range grid {
		if day == nil {
			items = append(items, nil)
			continue
		}
		item := &dayItem{
			Date:        day.ISODate,
			WeekdayName: day.WeekdayName,
			IsToday:     day.IsToday,
			IsPast:      day.IsPast,
			Closed:      !day.Config.IsOpen(),
			Available:   availability.DayAvailable(*day, &svc, byDate[day.ISODate], h.dayCapacity),
		}
		if day.Config.IsOpen() {
			item.Open = day.Config.Open.String()
			item.Close = day.Config.Close.String()
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

// Slots returns the bookable start times for one provider, service, and date.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if providerID == "" || serviceID == "" || dateStr == "" {
		http.Error(w, "provider_id, service_id, and date are required", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, err := h.repo.GetService(ctx, providerID, serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	hours, err := h.repo.GetProviderSchedule(ctx, providerID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	appts, err := h.repo.ListOnDate(ctx, providerID, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	now := h.now()
	day := availability.DayFor(hours, date, now)

	resp := []slotItem{}
	if availability.DayAvailable(day, &svc, appts, h.dayCapacity) {
		for _, s := range availability.OfferableSlots(day, &svc, appts, now) {
			resp = append(resp, slotItem{
				StartTime: s.String(),
				EndTime:   s.Add(svc.DurationMinutes).String(),
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create books an appointment. Availability is re-checked in the handler for
// a friendly error, but the database exclusion constraint is the authority:
// under a race the first insert to commit wins and the loser gets 409.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)
	if req.ProviderID == "" || req.ServiceID == "" || req.ClientName == "" || req.ClientEmail == "" || req.ClientPhone == "" {
		http.Error(w, "provider_id, service_id, client_name, client_email, and client_phone are required", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	start, err := schedule.ParseClock(strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time, expected HH:MM", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	svc, err := h.repo.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	hours, err := h.repo.GetProviderSchedule(ctx, req.ProviderID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	appts, err := h.repo.ListOnDate(ctx, req.ProviderID, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	now := h.now()
	day := availability.DayFor(hours, date, now)
	if !availability.DayAvailable(day, &svc, appts, h.dayCapacity) {
		http.Error(w, "day is not available for booking", http.StatusUnprocessableEntity)
		return
	}
	if !availability.SlotAvailable(day, start, &svc, appts, now) {
		http.Error(w, "requested time is not available", http.StatusUnprocessableEntity)
		return
	}

	// The end minute stays unwrapped: a booking running to end of day
	// stores minute 1440 so the persisted interval is well ordered.
	// ClockTime renders it as "00:00" on the wire.
	end := schedule.ClockTime(int(start) + svc.DurationMinutes)

	appt := &model.Appointment{
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		ClientID:    strings.TrimSpace(r.Header.Get("X-User-Id")),
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		Date:        date,
		Start:       start,
		End:         end,
		Status:      model.StatusPending,
		Notes:       strings.TrimSpace(req.Notes),
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, appt.ProviderID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 && len(rec.ResponsePayload) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	id, createdAt, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}
	appt.ID = id
	appt.CreatedAt = createdAt

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"provider_id":    appt.ProviderID,
		"service_id":     appt.ServiceID,
		"service_name":   svc.Name,
		"client_id":      appt.ClientID,
		"client_name":    appt.ClientName,
		"client_email":   appt.ClientEmail,
		"date":           appt.ISODate(),
		"start_time":     appt.Start.String(),
		"end_time":       appt.End.String(),
		"status":         string(appt.Status),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.NewAppointmentCreated(id, evtPayload)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(appointmentToResponse(*appt))
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, appt.ProviderID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

// List returns appointments for the authenticated party. Providers see their
// own calendar; clients see the appointments they booked.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	role := strings.TrimSpace(r.Header.Get("X-User-Role"))
	if userID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var (
		appts []model.Appointment
		err   error
	)
	if role == "provider" {
		appts, err = h.repo.ListByProvider(r.Context(), userID, limit)
	} else {
		appts, err = h.repo.ListByClient(r.Context(), userID, limit)
	}
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appointmentToResponse(appt))
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateStatus moves an appointment between statuses. Any transition between
// known statuses is accepted; bringing a cancelled appointment back can fail
// with 409 when the slot has been taken in the meantime.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	if req.ProviderID == "" {
		req.ProviderID = strings.TrimSpace(r.Header.Get("X-User-Id"))
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	newStatus := model.Status(strings.TrimSpace(req.Status))
	if req.ProviderID == "" || req.AppointmentID == "" {
		http.Error(w, "provider_id and appointment_id required", http.StatusBadRequest)
		return
	}
	if !newStatus.Valid() {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.ProviderID, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if current.Status == newStatus {
		writeJSON(w, http.StatusOK, appointmentToResponse(current))
		return
	}

	updated, err := h.repo.UpdateStatus(ctx, tx, req.ProviderID, req.AppointmentID, newStatus)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": updated.ID,
		"provider_id":    updated.ProviderID,
		"client_id":      updated.ClientID,
		"client_email":   updated.ClientEmail,
		"client_name":    updated.ClientName,
		"date":           updated.ISODate(),
		"start_time":     updated.Start.String(),
		"old_status":     string(current.Status),
		"new_status":     string(updated.Status),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.NewAppointmentStatusChanged(updated.ID, evtPayload)); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToResponse(updated))
}

func appointmentToResponse(appt model.Appointment) appointmentResponse {
	return appointmentResponse{
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		ServiceID:     appt.ServiceID,
		ClientName:    appt.ClientName,
		Date:          appt.ISODate(),
		StartTime:     appt.Start.String(),
		EndTime:       appt.End.String(),
		Status:        string(appt.Status),
		Notes:         appt.Notes,
		CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
