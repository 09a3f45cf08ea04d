package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookly/libs/db"
	"bookly/libs/schedule"
	"bookly/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	ProviderID      string
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetProviderSchedule loads a provider's weekly opening hours. A provider row
// with no hours yet yields the default schedule rather than an error.
func (r *BookingRepository) GetProviderSchedule(ctx context.Context, providerID string) (schedule.WeeklyHours, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(working_hours, '{}'::jsonb)
		FROM provider_profiles
		WHERE id = $1
	`, providerID).Scan(&raw)
	if err != nil {
		return nil, err
	}

	var hours schedule.WeeklyHours
	if err := hours.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		return schedule.DefaultWeeklyHours(), nil
	}
	return hours, nil
}

func (r *BookingRepository) GetService(ctx context.Context, providerID, serviceID string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, provider_id, name, COALESCE(description, ''), duration_minutes, COALESCE(price::text, ''), active
		FROM services
		WHERE id = $1 AND provider_id = $2 AND active
	`, serviceID, providerID).Scan(
		&svc.ID,
		&svc.ProviderID,
		&svc.Name,
		&svc.Description,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.Active,
	)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

const apptColumns = `
	id, provider_id, service_id, COALESCE(client_id::text, ''), client_name, client_email,
	COALESCE(client_phone, ''), appointment_date, start_minute, end_minute, status,
	COALESCE(notes, ''), created_at`

// ListByProviderBetween returns every appointment for the provider whose date
// falls in [from, to], cancelled ones included. Availability filtering happens
// in memory where status semantics live.
func (r *BookingRepository) ListByProviderBetween(ctx context.Context, providerID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+apptColumns+`
		FROM appointments
		WHERE provider_id = $1
			AND appointment_date >= $2
			AND appointment_date <= $3
		ORDER BY appointment_date ASC, start_minute ASC
	`, providerID, from, to)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *BookingRepository) ListOnDate(ctx context.Context, providerID string, date time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+apptColumns+`
		FROM appointments
		WHERE provider_id = $1 AND appointment_date = $2
		ORDER BY start_minute ASC
	`, providerID, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *BookingRepository) ListByProvider(ctx context.Context, providerID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+apptColumns+`
		FROM appointments
		WHERE provider_id = $1
		ORDER BY appointment_date ASC, start_minute ASC
		LIMIT $2
	`, providerID, limit)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+apptColumns+`
		FROM appointments
		WHERE client_id = $1
		ORDER BY appointment_date ASC, start_minute ASC
		LIMIT $2
	`, clientID, limit)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// Create inserts the appointment inside tx. The exclusion constraint on
// (provider_id, appointment_date, minute range) rejects overlapping
// non-cancelled rows; callers detect that with IsConflict.
func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, time.Time, error) {
	var (
		id        string
		createdAt time.Time
	)
	var clientID any
	if appt.ClientID != "" {
		clientID = appt.ClientID
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(provider_id, service_id, client_id, client_name, client_email, client_phone,
			appointment_date, start_minute, end_minute, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, appt.ProviderID, appt.ServiceID, clientID, appt.ClientName, appt.ClientEmail, appt.ClientPhone,
		appt.Date, int(appt.Start), int(appt.End), appt.Status, appt.Notes).Scan(&id, &createdAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return id, createdAt, nil
}

func (r *BookingRepository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, providerID, appointmentID string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT`+apptColumns+`
		FROM appointments
		WHERE id = $1 AND provider_id = $2
		FOR UPDATE
	`, appointmentID, providerID)
	return scanAppointment(row)
}

// UpdateStatus moves an appointment to the given status inside tx and returns
// the updated row. Re-activating a cancelled appointment goes back through the
// exclusion constraint, so a slot taken in the meantime surfaces as a conflict.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, providerID, appointmentID string, status model.Status) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND provider_id = $2
		RETURNING`+apptColumns+`
	`, appointmentID, providerID, status)
	return scanAppointment(row)
}

func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, providerID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, providerID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (provider_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (provider_id, idempotency_key) DO NOTHING
	`, providerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, providerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, providerID, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $3,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE provider_id = $1 AND idempotency_key = $2
	`, providerID, key, appointmentID, statusCode, response)
	return err
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, providerID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT provider_id::text,
			idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE provider_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, providerID, key).Scan(
		&rec.ProviderID,
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (model.Appointment, error) {
	var (
		appt             model.Appointment
		startMin, endMin int
	)
	err := row.Scan(
		&appt.ID,
		&appt.ProviderID,
		&appt.ServiceID,
		&appt.ClientID,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.Date,
		&startMin,
		&endMin,
		&appt.Status,
		&appt.Notes,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Start = schedule.ClockTime(startMin)
	appt.End = schedule.ClockTime(endMin)
	return appt, nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
