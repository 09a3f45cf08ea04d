package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bookly/libs/db"
	"bookly/libs/schedule"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type ProviderProfile struct {
	ID           string
	DisplayName  string
	Bio          string
	Phone        string
	Cep          string
	Street       string
	Neighborhood string
	City         string
	State        string
	AvatarURL    string
	WorkingHours schedule.WeeklyHours
	UpdatedAt    time.Time
}

// GetOrCreateProfile returns the provider's profile, seeding an empty row
// with the default weekly hours on first access.
func (r *Repository) GetOrCreateProfile(ctx context.Context, providerID string) (ProviderProfile, error) {
	defaults, err := schedule.DefaultWeeklyHours().MarshalJSON()
	if err != nil {
		return ProviderProfile{}, err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO provider_profiles (id, working_hours)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, providerID, defaults)
	if err != nil {
		return ProviderProfile{}, err
	}
	return r.GetProfile(ctx, providerID)
}

func (r *Repository) GetProfile(ctx context.Context, providerID string) (ProviderProfile, error) {
	var (
		p   ProviderProfile
		raw []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, COALESCE(display_name, ''), COALESCE(bio, ''), COALESCE(phone, ''),
			COALESCE(cep, ''), COALESCE(street, ''), COALESCE(neighborhood, ''),
			COALESCE(city, ''), COALESCE(state, ''), COALESCE(avatar_url, ''),
			COALESCE(working_hours, '{}'::jsonb), updated_at
		FROM provider_profiles
		WHERE id = $1
	`, providerID).Scan(
		&p.ID, &p.DisplayName, &p.Bio, &p.Phone,
		&p.Cep, &p.Street, &p.Neighborhood,
		&p.City, &p.State, &p.AvatarURL,
		&raw, &p.UpdatedAt,
	)
	if err != nil {
		return ProviderProfile{}, err
	}
	if err := p.WorkingHours.UnmarshalJSON(raw); err != nil {
		return ProviderProfile{}, err
	}
	if len(p.WorkingHours) == 0 {
		p.WorkingHours = schedule.DefaultWeeklyHours()
	}
	return p, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p ProviderProfile) error {
	hours, err := p.WorkingHours.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO provider_profiles
			(id, display_name, bio, phone, cep, street, neighborhood, city, state, working_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			phone = EXCLUDED.phone,
			cep = EXCLUDED.cep,
			street = EXCLUDED.street,
			neighborhood = EXCLUDED.neighborhood,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			working_hours = EXCLUDED.working_hours,
			updated_at = now()
	`, p.ID, p.DisplayName, p.Bio, p.Phone, p.Cep, p.Street, p.Neighborhood, p.City, p.State, hours)
	return err
}

func (r *Repository) SetAvatarURL(ctx context.Context, providerID, url string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE provider_profiles
		SET avatar_url = $2, updated_at = now()
		WHERE id = $1
	`, providerID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListProviders returns the public directory of providers that have at least
// one active service.
func (r *Repository) ListProviders(ctx context.Context, limit int) ([]ProviderProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.id::text, COALESCE(p.display_name, ''), COALESCE(p.bio, ''), COALESCE(p.phone, ''),
			COALESCE(p.cep, ''), COALESCE(p.street, ''), COALESCE(p.neighborhood, ''),
			COALESCE(p.city, ''), COALESCE(p.state, ''), COALESCE(p.avatar_url, ''),
			COALESCE(p.working_hours, '{}'::jsonb), p.updated_at
		FROM provider_profiles p
		JOIN services s ON s.provider_id = p.id AND s.active
		ORDER BY p.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProviderProfile
	for rows.Next() {
		var (
			p   ProviderProfile
			raw []byte
		)
		if err := rows.Scan(
			&p.ID, &p.DisplayName, &p.Bio, &p.Phone,
			&p.Cep, &p.Street, &p.Neighborhood,
			&p.City, &p.State, &p.AvatarURL,
			&raw, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := p.WorkingHours.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Service struct {
	ID              string
	ProviderID      string
	Name            string
	Description     string
	DurationMinutes int
	Price           string
	Active          bool
	CreatedAt       time.Time
}

func (r *Repository) CreateService(ctx context.Context, svc Service) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, provider_id, name, description, duration_minutes, price, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
	`, id, svc.ProviderID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateService(ctx context.Context, svc Service) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $3,
			description = $4,
			duration_minutes = $5,
			price = $6,
			active = $7,
			updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`, svc.ID, svc.ProviderID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeactivateService soft-deletes a catalog entry. Existing appointments keep
// their copied duration and are unaffected.
func (r *Repository) DeactivateService(ctx context.Context, providerID, serviceID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET active = false, updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`, serviceID, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListServices returns the provider's own catalog, inactive entries included.
// Set activeOnly for the public view.
func (r *Repository) ListServices(ctx context.Context, providerID string, activeOnly bool, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, provider_id::text, name, COALESCE(description, ''),
			duration_minutes, COALESCE(price::text, ''), active, created_at
		FROM services
		WHERE provider_id = $1 AND (active OR NOT $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, providerID, activeOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.DurationMinutes, &s.Price, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
