package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"homeledger/internal/domain"
)

// TransactionRow maps the transactions table. simplefin_id is the natural
// key; the immutable fields (posted_date, amount, description, memo) are
// written once at insert and never updated. Category fields are the only
// mutable columns, and updates to them are guarded by user_override.
type TransactionRow struct {
	ID          string `bigquery:"id"` // REQUIRED
	AccountID   string `bigquery:"account_id"`
	SimpleFINID string `bigquery:"simplefin_id"`

	PostedDate  civil.Date          `bigquery:"posted_date"`
	Amount      *big.Rat            `bigquery:"amount"` // NUMERIC, signed
	Description string              `bigquery:"description"`
	Memo        bigquery.NullString `bigquery:"memo"`
	Pending     bigquery.NullBool   `bigquery:"pending"`

	CategoryID   bigquery.NullString  `bigquery:"category_id"`
	CategoryName bigquery.NullString  `bigquery:"category_name"`
	AICategory   bigquery.NullString  `bigquery:"ai_category"`
	AIConfidence bigquery.NullFloat64 `bigquery:"ai_confidence"`
	UserOverride bigquery.NullBool    `bigquery:"user_override"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

func (r *TransactionRow) toDomain() *domain.Transaction {
	txn := &domain.Transaction{
		ID:           r.ID,
		AccountID:    r.AccountID,
		SimpleFINID:  r.SimpleFINID,
		PostedDate:   r.PostedDate.In(time.UTC),
		Description:  r.Description,
		Memo:         r.Memo.StringVal,
		Pending:      r.Pending.Valid && r.Pending.Bool,
		CategoryID:   r.CategoryID.StringVal,
		CategoryName: r.CategoryName.StringVal,
		AICategory:   r.AICategory.StringVal,
		UserOverride: r.UserOverride.Valid && r.UserOverride.Bool,
		CreatedAt:    r.CreatedTS,
	}
	if r.Amount != nil {
		txn.Amount = decimal.NewFromBigRat(r.Amount, numericScale)
	}
	if r.AIConfidence.Valid {
		txn.AIConfidence = r.AIConfidence.Float64
	}
	return txn
}
