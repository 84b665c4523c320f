package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/domain"
)

// CategoriesStore is the storage surface for category reads.
type CategoriesStore interface {
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	store CategoriesStore
	log   zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(store CategoriesStore, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: store, log: log}
}

type categoryJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Icon   string `json:"icon,omitempty"`
	Color  string `json:"color,omitempty"`
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListActiveCategories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryJSON{
			ID:     c.ID,
			Name:   c.Name,
			Parent: c.Parent,
			Icon:   c.Icon,
			Color:  c.Color,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": out,
		"count":      len(out),
	})
}
