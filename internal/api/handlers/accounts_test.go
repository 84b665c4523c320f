package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"homeledger/internal/domain"
)

type fakeAccountsStore struct {
	accounts []domain.CashAccount

	updatedID  string
	updatedUpd *domain.AccountUpdate
}

func (f *fakeAccountsStore) ListAccounts(ctx context.Context) ([]domain.CashAccount, error) {
	return f.accounts, nil
}

func (f *fakeAccountsStore) UpdateAccountLocalFields(ctx context.Context, id string, upd domain.AccountUpdate) error {
	f.updatedID = id
	f.updatedUpd = &upd
	return nil
}

func TestListAccounts(t *testing.T) {
	store := &fakeAccountsStore{accounts: []domain.CashAccount{
		{
			ID:          "acc-1",
			SimpleFINID: "sf-1",
			Name:        "Checking",
			Institution: "Chase",
			Currency:    "USD",
			Balance:     decimal.RequireFromString("1250.75"),
			BalanceDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			Owner:       domain.OwnerJoint,
			AccountType: domain.AccountTypeChecking,
			IsActive:    true,
		},
	}}
	h := NewAccountsHandler(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()
	h.ListAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Accounts []accountJSON `json:"accounts"`
		Count    int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d", resp.Count)
	}
	got := resp.Accounts[0]
	if got.Balance != "1250.75" {
		t.Errorf("balance = %q, want decimal string", got.Balance)
	}
	if got.Owner != "Joint" || got.AccountType != "checking" {
		t.Errorf("local fields wrong: %+v", got)
	}
}

func patchAccount(t *testing.T, h *AccountsHandler, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/accounts/"+id, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateAccount(rec, req, id)
	return rec
}

func TestUpdateAccountLocalFields(t *testing.T) {
	store := &fakeAccountsStore{}
	h := NewAccountsHandler(store, zerolog.Nop())

	rec := patchAccount(t, h, "acc-1", `{"owner":"Sai","account_type":"investment","display_order":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.updatedID != "acc-1" {
		t.Errorf("updated id = %q", store.updatedID)
	}
	upd := store.updatedUpd
	if upd == nil {
		t.Fatal("no update recorded")
	}
	if upd.Owner == nil || *upd.Owner != domain.OwnerSai {
		t.Errorf("owner not forwarded: %+v", upd)
	}
	if upd.AccountType == nil || *upd.AccountType != domain.AccountTypeInvestment {
		t.Errorf("account type not forwarded: %+v", upd)
	}
	if upd.DisplayOrder == nil || *upd.DisplayOrder != 3 {
		t.Errorf("display order not forwarded: %+v", upd)
	}
	if upd.IsActive != nil {
		t.Errorf("is_active should be untouched, got %v", *upd.IsActive)
	}
}

func TestUpdateAccountRejectsUnknownOwner(t *testing.T) {
	store := &fakeAccountsStore{}
	h := NewAccountsHandler(store, zerolog.Nop())

	rec := patchAccount(t, h, "acc-1", `{"owner":"Somebody"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if store.updatedUpd != nil {
		t.Error("store was called despite invalid owner")
	}
}

func TestUpdateAccountRejectsEmptyPatch(t *testing.T) {
	store := &fakeAccountsStore{}
	h := NewAccountsHandler(store, zerolog.Nop())

	rec := patchAccount(t, h, "acc-1", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
