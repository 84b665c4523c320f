// Package sync reconciles SimpleFIN bridge data into local storage: it owns
// the claim lifecycle for the aggregator credential and the idempotent
// balance/transaction pull.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"homeledger/internal/domain"
	"homeledger/internal/simplefin"
)

// Mode selects what a sync run pulls from the bridge.
type Mode string

const (
	// ModeBalances refreshes account balances only.
	ModeBalances Mode = "balances"
	// ModeTransactions refreshes balances and pulls transaction history
	// for the lookback window.
	ModeTransactions Mode = "transactions"
)

// DefaultLookbackDays is the transaction window used when the caller does
// not specify one.
const DefaultLookbackDays = 30

var (
	// ErrMissingSetupToken is returned by Claim when no token was supplied.
	ErrMissingSetupToken = errors.New("sync: setup_token is required")

	// ErrNotConfigured means no access URL has been claimed yet; the caller
	// should prompt for a setup token.
	ErrNotConfigured = errors.New("sync: SimpleFIN is not configured")

	// ErrConfigCorrupt means the stored access URL no longer parses. This is
	// surfaced loudly rather than treated as "not configured" so a broken
	// row is never silently re-claimed over.
	ErrConfigCorrupt = errors.New("sync: stored access URL is not parsable")

	// ErrInvalidDays is returned for a non-positive lookback window.
	ErrInvalidDays = errors.New("sync: days must be a positive integer")

	// ErrInvalidMode is returned for an unknown sync mode.
	ErrInvalidMode = errors.New("sync: mode must be balances or transactions")
)

// Store is the slice of storage the sync service needs. Find* calls return
// nil (no error) when nothing matches the natural key, which keeps the
// find-or-create decision explicit in this package.
type Store interface {
	GetSimpleFINConfig(ctx context.Context) (*domain.SimpleFINConfig, error)
	UpsertSimpleFINConfig(ctx context.Context, accessURL string) error
	MarkSynced(ctx context.Context, at time.Time) error

	FindAccountBySimpleFINID(ctx context.Context, simplefinID string) (*domain.CashAccount, error)
	InsertAccount(ctx context.Context, acct *domain.CashAccount) (string, error)
	UpdateAccountFromSync(ctx context.Context, id string, acct *domain.CashAccount) error

	FindTransactionBySimpleFINID(ctx context.Context, simplefinID string) (*domain.Transaction, error)
	InsertTransaction(ctx context.Context, txn *domain.Transaction) error
}

// Bridge is the protocol client surface consumed by the service.
type Bridge interface {
	ClaimAccessURL(ctx context.Context, setupToken string) (string, error)
	FetchAccounts(ctx context.Context, access simplefin.Access, opts simplefin.FetchOptions) (*simplefin.AccountSet, error)
}

// Service composes the protocol client with the store.
type Service struct {
	bridge Bridge
	store  Store
	log    zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a sync service.
func NewService(bridge Bridge, store Store, log zerolog.Logger) *Service {
	return &Service{
		bridge: bridge,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// Claim exchanges a setup token for an access URL and persists it as the
// singleton configuration. Repeated claims overwrite the same row; a second
// row is never created.
func (s *Service) Claim(ctx context.Context, setupToken string) error {
	if setupToken == "" {
		return ErrMissingSetupToken
	}

	accessURL, err := s.bridge.ClaimAccessURL(ctx, setupToken)
	if err != nil {
		return fmt.Errorf("Claim: %w", err)
	}

	if err := s.store.UpsertSimpleFINConfig(ctx, accessURL); err != nil {
		return fmt.Errorf("Claim: persisting config: %w", err)
	}

	s.log.Info().Msg("SimpleFIN access URL claimed and stored")
	return nil
}

// Options narrows a sync run.
type Options struct {
	Mode      Mode
	AccountID string // bridge account id filter, optional
	Days      int    // lookback window, transactions mode; 0 means default
}

// Result reports what a sync run did. Warnings collects per-row store
// failures that did not abort the run; the run itself succeeded as long as
// the upstream fetch did.
type Result struct {
	Accounts     int
	Transactions int
	Warnings     []string
}

// Run performs one balance or transaction sync. Accounts are upserted by
// their SimpleFIN id; user-owned fields (owner, account type, display order,
// active flag) are never touched on update. Transactions are immutable once
// recorded: a transaction whose SimpleFIN id is already present is skipped,
// which makes re-running a window a no-op.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Mode != ModeBalances && opts.Mode != ModeTransactions {
		return nil, ErrInvalidMode
	}
	days := opts.Days
	if days == 0 {
		days = DefaultLookbackDays
	}
	if days < 0 {
		return nil, ErrInvalidDays
	}

	cfg, err := s.store.GetSimpleFINConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: loading config: %w", err)
	}
	if cfg == nil || cfg.AccessURL == "" {
		return nil, ErrNotConfigured
	}

	access, err := simplefin.ParseAccessURL(cfg.AccessURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigCorrupt, err)
	}

	fetch := simplefin.FetchOptions{AccountID: opts.AccountID}
	if opts.Mode == ModeTransactions {
		fetch.StartDate = s.now().Unix() - int64(days)*86400
	}

	set, err := s.bridge.FetchAccounts(ctx, access, fetch)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	res := &Result{}
	for _, acct := range set.Accounts {
		localID, err := s.upsertAccount(ctx, acct)
		if err != nil {
			warn := fmt.Sprintf("account %s: %v", acct.ID, err)
			res.Warnings = append(res.Warnings, warn)
			s.log.Warn().Str("simplefin_id", acct.ID).Err(err).Msg("Account upsert failed")
			continue
		}
		res.Accounts++

		if opts.Mode != ModeTransactions {
			continue
		}
		for _, txn := range acct.Transactions {
			inserted, err := s.insertTransactionIfAbsent(ctx, localID, txn)
			if err != nil {
				warn := fmt.Sprintf("transaction %s: %v", txn.ID, err)
				res.Warnings = append(res.Warnings, warn)
				s.log.Warn().Str("simplefin_id", txn.ID).Err(err).Msg("Transaction insert failed")
				continue
			}
			if inserted {
				res.Transactions++
			}
		}
	}

	// last_synced advances even when nothing changed; it records the pull,
	// not the mutation.
	if err := s.store.MarkSynced(ctx, s.now()); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("last_synced: %v", err))
		s.log.Warn().Err(err).Msg("Failed to update last_synced")
	}

	s.log.Info().
		Str("mode", string(opts.Mode)).
		Int("accounts", res.Accounts).
		Int("transactions", res.Transactions).
		Int("warnings", len(res.Warnings)).
		Msg("Sync completed")

	return res, nil
}

// upsertAccount finds an account by its SimpleFIN id and either refreshes the
// sync-owned fields or inserts a new row with default local attributes. The
// local id of the row is returned either way.
func (s *Service) upsertAccount(ctx context.Context, acct simplefin.Account) (string, error) {
	existing, err := s.store.FindAccountBySimpleFINID(ctx, acct.ID)
	if err != nil {
		return "", fmt.Errorf("finding account: %w", err)
	}

	row := &domain.CashAccount{
		SimpleFINID: acct.ID,
		Name:        acct.Name,
		Institution: acct.Org.Name,
		Currency:    currencyOrDefault(acct.Currency),
		Balance:     acct.Balance,
		BalanceDate: acct.BalanceTime(),
	}

	if existing != nil {
		if err := s.store.UpdateAccountFromSync(ctx, existing.ID, row); err != nil {
			return "", fmt.Errorf("updating account: %w", err)
		}
		return existing.ID, nil
	}

	row.Owner = domain.OwnerJoint
	row.AccountType = domain.AccountTypeChecking
	row.DisplayOrder = 0
	row.IsActive = true

	id, err := s.store.InsertAccount(ctx, row)
	if err != nil {
		return "", fmt.Errorf("inserting account: %w", err)
	}
	return id, nil
}

// insertTransactionIfAbsent inserts a transaction keyed by its SimpleFIN id,
// or reports it as already known. Existing rows are left completely alone.
func (s *Service) insertTransactionIfAbsent(ctx context.Context, accountID string, txn simplefin.Transaction) (bool, error) {
	existing, err := s.store.FindTransactionBySimpleFINID(ctx, txn.ID)
	if err != nil {
		return false, fmt.Errorf("finding transaction: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	row := &domain.Transaction{
		AccountID:   accountID,
		SimpleFINID: txn.ID,
		PostedDate:  txn.PostedTime(),
		Amount:      txn.Amount,
		Description: txn.Description,
		Memo:        txn.Memo,
		Pending:     txn.Pending,
	}
	if err := s.store.InsertTransaction(ctx, row); err != nil {
		return false, fmt.Errorf("inserting transaction: %w", err)
	}
	return true, nil
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
