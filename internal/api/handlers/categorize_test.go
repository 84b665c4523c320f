package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"homeledger/internal/categorize"
)

type fakeCategorizeService struct {
	res *categorize.Result
	err error
}

func (f *fakeCategorizeService) Run(ctx context.Context) (*categorize.Result, error) {
	return f.res, f.err
}

func TestCategorizeSuccess(t *testing.T) {
	svc := &fakeCategorizeService{res: &categorize.Result{
		Categorized: 3,
		Logs:        []string{"Starting categorization", "Categorized 3 transactions"},
	}}
	h := NewCategorizeHandler(svc, zerolog.Nop())

	rec := postJSON(t, h.Categorize, "/api/transactions/categorize", `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success     bool     `json:"success"`
		Categorized int      `json:"categorized"`
		Logs        []string `json:"logs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Categorized != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Logs) != 2 {
		t.Errorf("logs = %v", resp.Logs)
	}
}

func TestCategorizeFailureCarriesLogs(t *testing.T) {
	svc := &fakeCategorizeService{
		res: &categorize.Result{Logs: []string{"Starting categorization", "Found 4 uncategorized transactions"}},
		err: errors.New("oracle: deadline exceeded"),
	}
	h := NewCategorizeHandler(svc, zerolog.Nop())

	rec := postJSON(t, h.Categorize, "/api/transactions/categorize", `{}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error string   `json:"error"`
		Logs  []string `json:"logs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error == "" {
		t.Error("error message missing")
	}
	if len(resp.Logs) != 2 {
		t.Errorf("logs = %v, want the partial trail", resp.Logs)
	}
}
