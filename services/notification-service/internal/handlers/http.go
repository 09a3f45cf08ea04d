package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bookly/services/notification-service/internal/storage"
)

type Handler struct {
	repo *storage.Repository
}

func New(repo *storage.Repository) *Handler {
	return &Handler{repo: repo}
}

type notificationItem struct {
	ID            string         `json:"id"`
	AppointmentID string         `json:"appointment_id,omitempty"`
	Kind          string         `json:"kind"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	Payload       map[string]any `json:"payload,omitempty"`
	Read          bool           `json:"read"`
	CreatedAt     string         `json:"created_at"`
}

// List serves the in-app notification feed for the authenticated user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recipientID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if recipientID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	notifications, err := h.repo.ListByRecipient(r.Context(), recipientID, unreadOnly, limit)
	if err != nil {
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	unread, err := h.repo.CountUnread(r.Context(), recipientID)
	if err != nil {
		http.Error(w, "failed to count notifications", http.StatusInternalServerError)
		return
	}

	items := make([]notificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationItem{
			ID:            n.ID,
			AppointmentID: n.AppointmentID,
			Kind:          n.Kind,
			Title:         n.Title,
			Body:          n.Body,
			Payload:       n.Payload,
			Read:          n.Read,
			CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"unread_count":  unread,
		"notifications": items,
	})
}

// MarkRead flags one notification, or all of them with {"all": true}.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recipientID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if recipientID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		ID  string `json:"id"`
		All bool   `json:"all"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if req.All {
		if err := h.repo.MarkAllRead(r.Context(), recipientID); err != nil {
			http.Error(w, "failed to mark notifications read", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		http.Error(w, "id or all required", http.StatusBadRequest)
		return
	}
	if err := h.repo.MarkRead(r.Context(), recipientID, req.ID); err != nil {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
