package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"homeledger/internal/api/middleware"
	"homeledger/internal/domain"
)

// AccountsStore is the storage surface for account endpoints.
type AccountsStore interface {
	ListAccounts(ctx context.Context) ([]domain.CashAccount, error)
	UpdateAccountLocalFields(ctx context.Context, id string, upd domain.AccountUpdate) error
}

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	store AccountsStore
	log   zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(store AccountsStore, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{store: store, log: log}
}

type accountJSON struct {
	ID           string `json:"id"`
	SimpleFINID  string `json:"simplefin_id"`
	Name         string `json:"name"`
	Institution  string `json:"institution"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
	BalanceDate  string `json:"balance_date"`
	Owner        string `json:"owner"`
	AccountType  string `json:"account_type"`
	DisplayOrder int64  `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

func toAccountJSON(a domain.CashAccount) accountJSON {
	return accountJSON{
		ID:           a.ID,
		SimpleFINID:  a.SimpleFINID,
		Name:         a.Name,
		Institution:  a.Institution,
		Currency:     a.Currency,
		Balance:      a.Balance.String(),
		BalanceDate:  a.BalanceDate.Format(time.RFC3339),
		Owner:        string(a.Owner),
		AccountType:  string(a.AccountType),
		DisplayOrder: a.DisplayOrder,
		IsActive:     a.IsActive,
	}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": out,
		"count":    len(out),
	})
}

type accountUpdateRequest struct {
	Owner        *string `json:"owner"`
	AccountType  *string `json:"account_type"`
	DisplayOrder *int64  `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

var validOwners = map[domain.Owner]bool{
	domain.OwnerSai:   true,
	domain.OwnerWife:  true,
	domain.OwnerJoint: true,
}

var validAccountTypes = map[domain.AccountType]bool{
	domain.AccountTypeChecking:   true,
	domain.AccountTypeSavings:    true,
	domain.AccountTypeCredit:     true,
	domain.AccountTypeInvestment: true,
	domain.AccountTypeLoan:       true,
	domain.AccountTypeOther:      true,
}

// UpdateAccount handles PATCH /api/accounts/:id. Only the user-owned fields
// are reachable here; sync-owned fields cannot be edited.
func (h *AccountsHandler) UpdateAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	var req accountUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var upd domain.AccountUpdate
	if req.Owner != nil {
		owner := domain.Owner(*req.Owner)
		if !validOwners[owner] {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid owner")
			return
		}
		upd.Owner = &owner
	}
	if req.AccountType != nil {
		at := domain.AccountType(*req.AccountType)
		if !validAccountTypes[at] {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid account_type")
			return
		}
		upd.AccountType = &at
	}
	upd.DisplayOrder = req.DisplayOrder
	upd.IsActive = req.IsActive

	if upd.Owner == nil && upd.AccountType == nil && upd.DisplayOrder == nil && upd.IsActive == nil {
		middleware.WriteError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := h.store.UpdateAccountLocalFields(r.Context(), accountID, upd); err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to update account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update account")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
