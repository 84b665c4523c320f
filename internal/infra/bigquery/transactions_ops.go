package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"homeledger/internal/domain"
)

const transactionColumns = `
	id,
	account_id,
	simplefin_id,
	posted_date,
	amount,
	description,
	memo,
	pending,
	category_id,
	category_name,
	ai_category,
	ai_confidence,
	user_override,
	created_ts`

// FindTransactionBySimpleFINID looks a transaction up by its bridge-assigned
// id. Returns nil (no error) when no row matches.
func (s *Store) FindTransactionBySimpleFINID(ctx context.Context, simplefinID string) (*domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE simplefin_id = @simplefin_id
		LIMIT 1
	`, transactionColumns, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "simplefin_id", Value: simplefinID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindTransactionBySimpleFINID: query read: %w", err)
	}

	var row TransactionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindTransactionBySimpleFINID: iter next: %w", err)
	}
	return row.toDomain(), nil
}

// InsertTransaction inserts a new transaction with its immutable fields.
// Category fields start unset; the categorization pass fills them later.
func (s *Store) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	id := txn.ID
	if id == "" {
		id = uuid.NewString()
	}

	q := s.client.Query(fmt.Sprintf(`
		INSERT INTO %s (
			id, account_id, simplefin_id,
			posted_date, amount, description, memo, pending,
			created_ts
		)
		VALUES (
			@id, @account_id, @simplefin_id,
			@posted_date, @amount, @description, @memo, @pending,
			CURRENT_TIMESTAMP()
		)
	`, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "account_id", Value: txn.AccountID},
		{Name: "simplefin_id", Value: txn.SimpleFINID},
		{Name: "posted_date", Value: civil.DateOf(txn.PostedDate)},
		{Name: "amount", Value: txn.Amount.Rat()},
		{Name: "description", Value: txn.Description},
		{Name: "memo", Value: txn.Memo},
		{Name: "pending", Value: txn.Pending},
	}

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}
	return nil
}

// ListUncategorizedTransactions returns up to limit transactions whose
// category is unset, oldest first so backlogs drain in posting order.
func (s *Store) ListUncategorizedTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE category_id IS NULL
		ORDER BY posted_date, created_ts
		LIMIT @limit
	`, transactionColumns, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUncategorizedTransactions: query read: %w", err)
	}

	var txns []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUncategorizedTransactions: iter next: %w", err)
		}
		txns = append(txns, *row.toDomain())
	}
	return txns, nil
}

// ListTransactionsByDateRange returns transactions posted within the range,
// newest first, for the UI transaction list.
func (s *Store) ListTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE posted_date >= @start_date
		  AND posted_date <= @end_date
		ORDER BY posted_date DESC, created_ts DESC
	`, transactionColumns, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(start)},
		{Name: "end_date", Value: civil.DateOf(end)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByDateRange: query read: %w", err)
	}

	var txns []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: iter next: %w", err)
		}
		txns = append(txns, *row.toDomain())
	}
	return txns, nil
}

// UpdateTransactionCategory applies a category assignment. The predicate
// excludes overridden rows so a human-set category can never be replaced
// here, even if the caller's snapshot of the row was stale.
func (s *Store) UpdateTransactionCategory(ctx context.Context, a domain.CategoryAssignment) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET category_id = @category_id,
		    category_name = @category_name,
		    ai_category = @ai_category,
		    ai_confidence = @ai_confidence
		WHERE id = @id
		  AND IFNULL(user_override, FALSE) = FALSE
	`, s.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: a.TransactionID},
		{Name: "category_id", Value: a.CategoryID},
		{Name: "category_name", Value: a.CategoryName},
		{Name: "ai_category", Value: a.AICategory},
		{Name: "ai_confidence", Value: a.AIConfidence},
	}

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpdateTransactionCategory: %w", err)
	}
	return nil
}
