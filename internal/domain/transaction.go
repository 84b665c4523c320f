package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one bank transaction pulled from the SimpleFIN bridge.
// SimpleFINID is the aggregator-assigned natural key; a transaction is an
// immutable fact once recorded - re-sync never re-inserts or rewrites
// posted date, amount or description. Only categorization may touch the
// category fields, and never when UserOverride is set.
type Transaction struct {
	ID          string
	AccountID   string
	SimpleFINID string

	PostedDate  time.Time // date precision
	Amount      decimal.Decimal
	Description string
	Memo        string
	Pending     bool

	CategoryID   string
	CategoryName string
	AICategory   string
	AIConfidence float64
	UserOverride bool

	CreatedAt time.Time
}

// CategoryAssignment is the result of one classified transaction as applied
// to the store: the resolved local category plus the model's raw suggestion.
type CategoryAssignment struct {
	TransactionID string
	CategoryID    string
	CategoryName  string
	AICategory    string
	AIConfidence  float64
}
