package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"homeledger/internal/domain"
)

type fakeTransactionsStore struct {
	txns  []domain.Transaction
	start time.Time
	end   time.Time
}

func (f *fakeTransactionsStore) ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	f.start = start
	f.end = end
	return f.txns, nil
}

func TestListTransactionsExplicitWindow(t *testing.T) {
	store := &fakeTransactionsStore{txns: []domain.Transaction{
		{
			ID:          "txn-1",
			AccountID:   "acc-1",
			SimpleFINID: "sf-t-1",
			PostedDate:  time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.RequireFromString("-42.17"),
			Description: "TRADER JOES",
		},
	}}
	h := NewTransactionsHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?start=2026-08-01&end=2026-08-31", nil)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := store.start.Format("2006-01-02"); got != "2026-08-01" {
		t.Errorf("start = %s", got)
	}
	if got := store.end.Format("2006-01-02"); got != "2026-08-31" {
		t.Errorf("end = %s", got)
	}

	var resp struct {
		Transactions []transactionJSON `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("got %d transactions", len(resp.Transactions))
	}
	if resp.Transactions[0].Amount != "-42.17" {
		t.Errorf("amount = %q", resp.Transactions[0].Amount)
	}
	if resp.Transactions[0].PostedDate != "2026-08-15" {
		t.Errorf("posted_date = %q", resp.Transactions[0].PostedDate)
	}
}

func TestListTransactionsDefaultWindowIs30Days(t *testing.T) {
	store := &fakeTransactionsStore{}
	h := NewTransactionsHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	window := store.end.Sub(store.start)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Errorf("window = %v, want ~30 days", window)
	}
}

func TestListTransactionsRejectsBadDates(t *testing.T) {
	h := NewTransactionsHandler(&fakeTransactionsStore{}, zerolog.Nop())

	for _, q := range []string{"?start=yesterday", "?end=2026/08/31", "?start=2026-08-31&end=2026-08-01"} {
		req := httptest.NewRequest(http.MethodGet, "/api/transactions"+q, nil)
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}
