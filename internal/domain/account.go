package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Owner tags a cash account with the household member it belongs to.
// These are local attributes; a SimpleFIN sync never changes them.
type Owner string

const (
	OwnerSai   Owner = "Sai"
	OwnerWife  Owner = "Wife"
	OwnerJoint Owner = "Joint"
)

// AccountType classifies a cash account for display and net-worth grouping.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

// CashAccount is a bank or card account mirrored from the SimpleFIN bridge.
// SimpleFINID is the aggregator-assigned natural key: there is exactly one
// local row per distinct SimpleFINID. Balance, BalanceDate, Name, Institution
// and Currency are owned by the sync; Owner, AccountType, DisplayOrder and
// IsActive are owned by the user.
type CashAccount struct {
	ID          string
	SimpleFINID string

	Name        string
	Institution string
	Currency    string
	Balance     decimal.Decimal
	BalanceDate time.Time

	Owner        Owner
	AccountType  AccountType
	DisplayOrder int64
	IsActive     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountUpdate carries the user-editable fields of a cash account.
// Nil fields are left untouched.
type AccountUpdate struct {
	Owner        *Owner
	AccountType  *AccountType
	DisplayOrder *int64
	IsActive     *bool
}
