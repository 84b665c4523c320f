package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/categorize"
)

// CategorizeService is the categorization surface the handler consumes.
type CategorizeService interface {
	Run(ctx context.Context) (*categorize.Result, error)
}

// CategorizeHandler handles the manual categorization endpoint.
type CategorizeHandler struct {
	service CategorizeService
	log     zerolog.Logger
}

// NewCategorizeHandler creates a new categorize handler.
func NewCategorizeHandler(service CategorizeService, log zerolog.Logger) *CategorizeHandler {
	return &CategorizeHandler{service: service, log: log}
}

// Categorize handles POST /api/transactions/categorize. The response always
// carries the step log, failure included, so the caller can see how far the
// batch got.
func (h *CategorizeHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Categorization failed")
		var logs []string
		if res != nil {
			logs = res.Logs
		}
		middleware.WriteErrorWithLogs(w, http.StatusInternalServerError, err.Error(), logs)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"categorized": res.Categorized,
		"logs":        res.Logs,
	})
}
