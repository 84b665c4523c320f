package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"

	"homeledger/internal/domain"
)

// CashAccountRow maps the cash_accounts table. simplefin_id is the natural
// key from the bridge; id is the generated local identifier.
type CashAccountRow struct {
	ID          string `bigquery:"id"` // REQUIRED
	SimpleFINID string `bigquery:"simplefin_id"`

	Name        string              `bigquery:"name"`
	Institution bigquery.NullString `bigquery:"institution"`
	Currency    string              `bigquery:"currency"`

	Balance     *big.Rat               `bigquery:"balance"`      // NUMERIC
	BalanceDate bigquery.NullTimestamp `bigquery:"balance_date"` // TIMESTAMP, NULLABLE

	Owner        string            `bigquery:"owner"`
	AccountType  string            `bigquery:"account_type"`
	DisplayOrder int64             `bigquery:"display_order"`
	IsActive     bigquery.NullBool `bigquery:"is_active"`

	CreatedTS time.Time              `bigquery:"created_ts"`
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"`
}

const numericScale = 9 // BigQuery NUMERIC fractional digits

func (r *CashAccountRow) toDomain() *domain.CashAccount {
	acct := &domain.CashAccount{
		ID:           r.ID,
		SimpleFINID:  r.SimpleFINID,
		Name:         r.Name,
		Institution:  r.Institution.StringVal,
		Currency:     r.Currency,
		Owner:        domain.Owner(r.Owner),
		AccountType:  domain.AccountType(r.AccountType),
		DisplayOrder: r.DisplayOrder,
		IsActive:     !r.IsActive.Valid || r.IsActive.Bool,
		CreatedAt:    r.CreatedTS,
	}
	if r.Balance != nil {
		acct.Balance = decimal.NewFromBigRat(r.Balance, numericScale)
	}
	if r.BalanceDate.Valid {
		acct.BalanceDate = r.BalanceDate.Timestamp
	}
	if r.UpdatedTS.Valid {
		acct.UpdatedAt = r.UpdatedTS.Timestamp
	}
	return acct
}
