package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"homeledger/internal/domain"
)

const accountColumns = `
	id,
	simplefin_id,
	name,
	institution,
	currency,
	balance,
	balance_date,
	owner,
	account_type,
	display_order,
	is_active,
	created_ts,
	updated_ts`

// FindAccountBySimpleFINID looks an account up by its bridge-assigned id.
// Returns nil (no error) when no row matches.
func (s *Store) FindAccountBySimpleFINID(ctx context.Context, simplefinID string) (*domain.CashAccount, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE simplefin_id = @simplefin_id
		LIMIT 1
	`, accountColumns, s.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "simplefin_id", Value: simplefinID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindAccountBySimpleFINID: query read: %w", err)
	}

	var row CashAccountRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindAccountBySimpleFINID: iter next: %w", err)
	}
	return row.toDomain(), nil
}

// InsertAccount inserts a new cash account and returns its generated id.
// The caller supplies the local defaults (owner, type, display order).
func (s *Store) InsertAccount(ctx context.Context, acct *domain.CashAccount) (string, error) {
	id := acct.ID
	if id == "" {
		id = uuid.NewString()
	}

	q := s.client.Query(fmt.Sprintf(`
		INSERT INTO %s (
			id, simplefin_id, name, institution, currency,
			balance, balance_date,
			owner, account_type, display_order, is_active,
			created_ts
		)
		VALUES (
			@id, @simplefin_id, @name, @institution, @currency,
			@balance, @balance_date,
			@owner, @account_type, @display_order, @is_active,
			CURRENT_TIMESTAMP()
		)
	`, s.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "simplefin_id", Value: acct.SimpleFINID},
		{Name: "name", Value: acct.Name},
		{Name: "institution", Value: acct.Institution},
		{Name: "currency", Value: acct.Currency},
		{Name: "balance", Value: acct.Balance.Rat()},
		{Name: "balance_date", Value: acct.BalanceDate},
		{Name: "owner", Value: string(acct.Owner)},
		{Name: "account_type", Value: string(acct.AccountType)},
		{Name: "display_order", Value: acct.DisplayOrder},
		{Name: "is_active", Value: acct.IsActive},
	}

	if err := s.runDML(ctx, q); err != nil {
		return "", fmt.Errorf("InsertAccount: %w", err)
	}
	return id, nil
}

// UpdateAccountFromSync refreshes only the sync-owned fields of an existing
// account. Owner, account type, display order and the active flag belong to
// the user and are deliberately absent from the SET list.
func (s *Store) UpdateAccountFromSync(ctx context.Context, id string, acct *domain.CashAccount) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET name = @name,
		    institution = @institution,
		    currency = @currency,
		    balance = @balance,
		    balance_date = @balance_date,
		    updated_ts = CURRENT_TIMESTAMP()
		WHERE id = @id
	`, s.table(accountsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "name", Value: acct.Name},
		{Name: "institution", Value: acct.Institution},
		{Name: "currency", Value: acct.Currency},
		{Name: "balance", Value: acct.Balance.Rat()},
		{Name: "balance_date", Value: acct.BalanceDate},
	}

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateAccountFromSync: %w", err)
	}
	return nil
}

// UpdateAccountLocalFields applies user edits to the local-only attributes.
// Nil fields in the update are left untouched.
func (s *Store) UpdateAccountLocalFields(ctx context.Context, id string, upd domain.AccountUpdate) error {
	var set []string
	params := []bigquery.QueryParameter{{Name: "id", Value: id}}

	if upd.Owner != nil {
		set = append(set, "owner = @owner")
		params = append(params, bigquery.QueryParameter{Name: "owner", Value: string(*upd.Owner)})
	}
	if upd.AccountType != nil {
		set = append(set, "account_type = @account_type")
		params = append(params, bigquery.QueryParameter{Name: "account_type", Value: string(*upd.AccountType)})
	}
	if upd.DisplayOrder != nil {
		set = append(set, "display_order = @display_order")
		params = append(params, bigquery.QueryParameter{Name: "display_order", Value: *upd.DisplayOrder})
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = @is_active")
		params = append(params, bigquery.QueryParameter{Name: "is_active", Value: *upd.IsActive})
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_ts = CURRENT_TIMESTAMP()")

	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE id = @id
	`, s.table(accountsTable), strings.Join(set, ", ")))
	q.Parameters = params

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateAccountLocalFields: %w", err)
	}
	return nil
}

// ListAccounts returns all cash accounts ordered for display.
func (s *Store) ListAccounts(ctx context.Context) ([]domain.CashAccount, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY display_order, name
	`, accountColumns, s.table(accountsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: query read: %w", err)
	}

	var accounts []domain.CashAccount
	for {
		var row CashAccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: iter next: %w", err)
		}
		accounts = append(accounts, *row.toDomain())
	}
	return accounts, nil
}
