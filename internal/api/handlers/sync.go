// Package handlers implements the HTTP API surface: SimpleFIN claim and
// sync, categorization, and the read/update endpoints for accounts,
// transactions, categories, documents and jobs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/domain"
	"homeledger/internal/jobs"
	"homeledger/internal/simplefin"
	syncsvc "homeledger/internal/sync"
)

// SyncService is the sync surface the handler consumes.
type SyncService interface {
	Claim(ctx context.Context, setupToken string) error
	Run(ctx context.Context, opts syncsvc.Options) (*syncsvc.Result, error)
}

// ConfigStore reads the stored SimpleFIN configuration.
type ConfigStore interface {
	GetSimpleFINConfig(ctx context.Context) (*domain.SimpleFINConfig, error)
}

// SyncHandler handles SimpleFIN claim and sync endpoints.
type SyncHandler struct {
	service   SyncService
	config    ConfigStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewSyncHandler creates a new sync handler. publisher may be nil, in which
// case a transaction sync does not kick off categorization.
func NewSyncHandler(service SyncService, config ConfigStore, publisher jobs.Publisher, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		service:   service,
		config:    config,
		publisher: publisher,
		log:       log,
	}
}

type syncRequest struct {
	Mode       string `json:"mode"`
	SetupToken string `json:"setup_token,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
	Days       int    `json:"days,omitempty"`
}

// Sync handles POST /api/simplefin/sync
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Mode == "claim" {
		h.claim(ctx, w, req.SetupToken)
		return
	}

	res, err := h.service.Run(ctx, syncsvc.Options{
		Mode:      syncsvc.Mode(req.Mode),
		AccountID: req.AccountID,
		Days:      req.Days,
	})
	if err != nil {
		h.log.Error().Err(err).Str("mode", req.Mode).Msg("Sync failed")
		middleware.WriteError(w, syncStatus(err), err.Error())
		return
	}

	if res.Transactions > 0 {
		h.enqueueCategorization(ctx, res.Transactions)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"accounts":     res.Accounts,
		"transactions": res.Transactions,
		"warnings":     res.Warnings,
	})
}

func (h *SyncHandler) claim(ctx context.Context, w http.ResponseWriter, setupToken string) {
	if err := h.service.Claim(ctx, setupToken); err != nil {
		h.log.Error().Err(err).Msg("Claim failed")
		middleware.WriteError(w, syncStatus(err), err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"mode":    "claim",
	})
}

// GetConfig handles GET /api/simplefin/config. The access URL itself is a
// credential and never leaves the server.
func (h *SyncHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.GetSimpleFINConfig(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load SimpleFIN config")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load configuration")
		return
	}

	resp := map[string]interface{}{
		"configured": cfg != nil && cfg.AccessURL != "",
	}
	if cfg != nil && cfg.LastSynced != nil {
		resp["last_synced"] = cfg.LastSynced.Format(time.RFC3339)
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (h *SyncHandler) enqueueCategorization(ctx context.Context, inserted int) {
	if h.publisher == nil {
		return
	}

	job := &jobs.CategorizeJob{
		JobID:     uuid.NewString(),
		Reason:    "sync",
		Status:    jobs.JobStatusPending,
		CreatedAt: time.Now(),
	}
	if err := h.publisher.PublishCategorize(ctx, job); err != nil {
		// The next sync or a manual categorize call covers the gap.
		h.log.Warn().Err(err).Msg("Failed to enqueue categorization job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Int("new_transactions", inserted).
		Msg("Categorization job enqueued")
}

// syncStatus maps sync errors onto HTTP status codes: caller mistakes are
// 400, everything else (bridge, store) is 500.
func syncStatus(err error) int {
	switch {
	case errors.Is(err, syncsvc.ErrMissingSetupToken),
		errors.Is(err, syncsvc.ErrInvalidMode),
		errors.Is(err, syncsvc.ErrInvalidDays),
		errors.Is(err, syncsvc.ErrNotConfigured),
		errors.Is(err, simplefin.ErrInvalidSetupToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
