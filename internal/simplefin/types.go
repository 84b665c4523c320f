package simplefin

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSet is the top-level payload of GET {base}/accounts.
type AccountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []Account `json:"accounts"`
}

// Account is one account as reported by the SimpleFIN bridge. Balance is a
// signed decimal transmitted as a JSON string; BalanceDate is epoch seconds.
type Account struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Org          Org             `json:"org"`
	Currency     string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance"`
	BalanceDate  int64           `json:"balance-date"`
	Transactions []Transaction   `json:"transactions"`
}

// Org is the institution an account belongs to.
type Org struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// Transaction is one transaction nested under an account. Posted is epoch
// seconds; Amount is a signed decimal (negative = money out).
type Transaction struct {
	ID          string          `json:"id"`
	Posted      int64           `json:"posted"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Memo        string          `json:"memo"`
	Pending     bool            `json:"pending"`
}

// BalanceTime converts the epoch balance-date to a time. A zero balance-date
// falls back to now, matching how the bridge omits the field for some orgs.
func (a Account) BalanceTime() time.Time {
	if a.BalanceDate == 0 {
		return time.Now().UTC()
	}
	return time.Unix(a.BalanceDate, 0).UTC()
}

// PostedTime converts the epoch posted timestamp to a time.
func (t Transaction) PostedTime() time.Time {
	return time.Unix(t.Posted, 0).UTC()
}
