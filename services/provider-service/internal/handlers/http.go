package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bookly/libs/schedule"
	"bookly/services/provider-service/internal/avatars"
	"bookly/services/provider-service/internal/postal"
	"bookly/services/provider-service/internal/storage"
)

type Handler struct {
	repo    *storage.Repository
	postal  *postal.Client
	avatars *avatars.Store
	logger  *slog.Logger
}

func New(repo *storage.Repository, postalClient *postal.Client, avatarStore *avatars.Store, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, postal: postalClient, avatars: avatarStore, logger: logger}
}

func providerIDFromHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

type profilePayload struct {
	ProviderID   string               `json:"provider_id"`
	DisplayName  string               `json:"display_name"`
	Bio          string               `json:"bio,omitempty"`
	Phone        string               `json:"phone,omitempty"`
	Cep          string               `json:"cep,omitempty"`
	Street       string               `json:"street,omitempty"`
	Neighborhood string               `json:"neighborhood,omitempty"`
	City         string               `json:"city,omitempty"`
	State        string               `json:"state,omitempty"`
	AvatarURL    string               `json:"avatar_url,omitempty"`
	WorkingHours schedule.WeeklyHours `json:"working_hours"`
}

type servicePayload struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Active          *bool   `json:"active,omitempty"`
}

func profileToPayload(p storage.ProviderProfile) profilePayload {
	return profilePayload{
		ProviderID:   p.ID,
		DisplayName:  p.DisplayName,
		Bio:          p.Bio,
		Phone:        p.Phone,
		Cep:          p.Cep,
		Street:       p.Street,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
		AvatarURL:    p.AvatarURL,
		WorkingHours: p.WorkingHours,
	}
}

// Profile serves the authenticated provider's own profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r)
	case http.MethodPut:
		h.updateProfile(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-User-Id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetOrCreateProfile(r.Context(), providerID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profileToPayload(p))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-User-Id", http.StatusBadRequest)
		return
	}

	var req profilePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		http.Error(w, "display_name is required", http.StatusBadRequest)
		return
	}
	if len(req.WorkingHours) == 0 {
		req.WorkingHours = schedule.DefaultWeeklyHours()
	}
	if err := req.WorkingHours.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateProfile(r.Context(), storage.ProviderProfile{
		ID:           providerID,
		DisplayName:  req.DisplayName,
		Bio:          strings.TrimSpace(req.Bio),
		Phone:        strings.TrimSpace(req.Phone),
		Cep:          strings.TrimSpace(req.Cep),
		Street:       strings.TrimSpace(req.Street),
		Neighborhood: strings.TrimSpace(req.Neighborhood),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		WorkingHours: req.WorkingHours,
	}); err != nil {
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Avatar accepts an image body on POST and deletes the avatar on DELETE.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-User-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		if !h.avatars.Enabled() {
			http.Error(w, "avatar storage not configured", http.StatusServiceUnavailable)
			return
		}
		contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
		data, err := io.ReadAll(io.LimitReader(r.Body, avatars.MaxAvatarBytes+1))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}
		if len(data) > avatars.MaxAvatarBytes {
			http.Error(w, "avatar too large", http.StatusRequestEntityTooLarge)
			return
		}

		url, err := h.avatars.Upload(r.Context(), providerID, contentType, data)
		if err != nil {
			if errors.Is(err, avatars.ErrUnsupportedType) {
				http.Error(w, "unsupported image type", http.StatusUnsupportedMediaType)
				return
			}
			http.Error(w, "failed to store avatar", http.StatusInternalServerError)
			return
		}
		if err := h.repo.SetAvatarURL(r.Context(), providerID, url); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "profile not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to save avatar url", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})

	case http.MethodDelete:
		if err := h.avatars.Remove(r.Context(), providerID); err != nil {
			http.Error(w, "failed to delete avatar", http.StatusInternalServerError)
			return
		}
		if err := h.repo.SetAvatarURL(r.Context(), providerID, ""); err != nil && !storage.IsNotFound(err) {
			http.Error(w, "failed to clear avatar url", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// LookupCep proxies a postal code lookup for the profile address form.
func (h *Handler) LookupCep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cep := strings.TrimSpace(r.URL.Query().Get("cep"))
	if cep == "" {
		http.Error(w, "cep is required", http.StatusBadRequest)
		return
	}

	addr, err := h.postal.Lookup(r.Context(), cep)
	if err != nil {
		switch {
		case errors.Is(err, postal.ErrInvalidCep):
			http.Error(w, "invalid cep", http.StatusBadRequest)
		case errors.Is(err, postal.ErrNotFound):
			http.Error(w, "cep not found", http.StatusNotFound)
		default:
			h.logger.Error("cep lookup failed", "err", err)
			http.Error(w, "postal lookup unavailable", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// Services handles the provider's own catalog.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	providerID := providerIDFromHeader(r)
	if providerID == "" {
		http.Error(w, "missing X-User-Id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		services, err := h.repo.ListServices(r.Context(), providerID, false, 100)
		if err != nil {
			http.Error(w, "failed to list services", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, servicesToPayload(services))

	case http.MethodPost:
		req, ok := decodeService(w, r)
		if !ok {
			return
		}
		id, err := h.repo.CreateService(r.Context(), storage.Service{
			ProviderID:      providerID,
			Name:            req.Name,
			Description:     req.Description,
			DurationMinutes: req.DurationMinutes,
			Price:           strconv.FormatFloat(req.Price, 'f', 2, 64),
		})
		if err != nil {
			http.Error(w, "failed to create service", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})

	case http.MethodPut:
		req, ok := decodeService(w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.ID) == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		err := h.repo.UpdateService(r.Context(), storage.Service{
			ID:              strings.TrimSpace(req.ID),
			ProviderID:      providerID,
			Name:            req.Name,
			Description:     req.Description,
			DurationMinutes: req.DurationMinutes,
			Price:           strconv.FormatFloat(req.Price, 'f', 2, 64),
			Active:          active,
		})
		if err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "service not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to update service", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeactivateService(r.Context(), providerID, id); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "service not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to deactivate service", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListProviders is the public provider directory.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providers, err := h.repo.ListProviders(r.Context(), 100)
	if err != nil {
		http.Error(w, "failed to list providers", http.StatusInternalServerError)
		return
	}
	items := make([]profilePayload, 0, len(providers))
	for _, p := range providers {
		items = append(items, profileToPayload(p))
	}
	writeJSON(w, http.StatusOK, items)
}

// GetProvider is the public view of one provider with its active services.
func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	if providerID == "" {
		http.Error(w, "provider_id is required", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetProfile(r.Context(), providerID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "provider not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load provider", http.StatusInternalServerError)
		return
	}
	services, err := h.repo.ListServices(r.Context(), providerID, true, 100)
	if err != nil {
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  profileToPayload(p),
		"services": servicesToPayload(services),
	})
}

func decodeService(w http.ResponseWriter, r *http.Request) (servicePayload, bool) {
	var req servicePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return servicePayload{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.DurationMinutes <= 0 || req.DurationMinutes > 8*60 {
		http.Error(w, "name and a duration between 1 and 480 minutes are required", http.StatusBadRequest)
		return servicePayload{}, false
	}
	if req.Price < 0 {
		http.Error(w, "price must not be negative", http.StatusBadRequest)
		return servicePayload{}, false
	}
	return req, true
}

func servicesToPayload(services []storage.Service) []map[string]any {
	items := make([]map[string]any, 0, len(services))
	for _, s := range services {
		items = append(items, map[string]any{
			"id":               s.ID,
			"provider_id":      s.ProviderID,
			"name":             s.Name,
			"description":      s.Description,
			"duration_minutes": s.DurationMinutes,
			"price":            s.Price,
			"active":           s.Active,
		})
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
