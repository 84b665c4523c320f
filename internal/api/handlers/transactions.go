package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/domain"
)

// TransactionsStore is the storage surface for transaction reads.
type TransactionsStore interface {
	ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
}

// TransactionsHandler handles transaction read endpoints.
type TransactionsHandler struct {
	store TransactionsStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionsStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

type transactionJSON struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"account_id"`
	SimpleFINID  string  `json:"simplefin_id"`
	PostedDate   string  `json:"posted_date"`
	Amount       string  `json:"amount"`
	Description  string  `json:"description"`
	Memo         string  `json:"memo,omitempty"`
	Pending      bool    `json:"pending"`
	CategoryID   string  `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	AICategory   string  `json:"ai_category,omitempty"`
	AIConfidence float64 `json:"ai_confidence,omitempty"`
	UserOverride bool    `json:"user_override"`
}

func toTransactionJSON(t domain.Transaction) transactionJSON {
	return transactionJSON{
		ID:           t.ID,
		AccountID:    t.AccountID,
		SimpleFINID:  t.SimpleFINID,
		PostedDate:   t.PostedDate.Format("2006-01-02"),
		Amount:       t.Amount.String(),
		Description:  t.Description,
		Memo:         t.Memo,
		Pending:      t.Pending,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		AICategory:   t.AICategory,
		AIConfidence: t.AIConfidence,
		UserOverride: t.UserOverride,
	}
}

// ListTransactions handles GET /api/transactions?start=YYYY-MM-DD&end=YYYY-MM-DD.
// The window defaults to the last 30 days.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if e := r.URL.Query().Get("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		end = parsed
	}
	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	txns, err := h.store.ListTransactionsByDateRange(r.Context(), start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	out := make([]transactionJSON, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionJSON(t))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": out,
		"count":        len(out),
	})
}
