// Package categorize runs the language-model classification pass over
// uncategorized transactions: batch them into one prompt, parse the
// structured response, and apply category assignments with confidence
// metadata. Human-set categories are never replaced.
package categorize

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"homeledger/internal/domain"
)

// BatchSize caps how many transactions go into one oracle request.
const BatchSize = 50

// Store is the slice of storage the categorization service needs.
type Store interface {
	ListUncategorizedTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	UpdateTransactionCategory(ctx context.Context, a domain.CategoryAssignment) error
}

// Service composes the oracle with the store.
type Service struct {
	oracle Oracle
	store  Store
	log    zerolog.Logger
}

// NewService creates a categorization service.
func NewService(oracle Oracle, store Store, log zerolog.Logger) *Service {
	return &Service{oracle: oracle, store: store, log: log}
}

// Result reports one categorization run. Logs is the step trail, in the
// order the steps happened, for surfacing to the caller.
type Result struct {
	Categorized int
	Logs        []string
}

// Run classifies one batch of uncategorized transactions. An empty batch is
// a success with zero categorized - the oracle is never invoked. Re-running
// converges: categorized transactions leave the input set by construction.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	res.logf("Starting categorization")

	txns, err := s.store.ListUncategorizedTransactions(ctx, BatchSize)
	if err != nil {
		return res, fmt.Errorf("Run: listing uncategorized: %w", err)
	}
	res.logf("Found %d uncategorized transactions", len(txns))

	if len(txns) == 0 {
		return res, nil
	}

	categories, err := s.store.ListActiveCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("Run: listing categories: %w", err)
	}
	if len(categories) == 0 {
		return res, fmt.Errorf("Run: no active categories found")
	}

	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}
	fallbackID := byName[domain.UncategorizedName]

	prompt := buildPrompt(categories, txns)
	res.logf("Calling classification oracle with %d transactions", len(txns))

	raw, err := s.oracle.Complete(ctx, prompt)
	if err != nil {
		return res, fmt.Errorf("Run: oracle: %w", err)
	}
	res.logf("Oracle response: %s", truncate(raw, 100))

	assignments, err := parseAssignments(raw)
	if err != nil {
		return res, fmt.Errorf("Run: %w", err)
	}

	for _, a := range assignments {
		if a.ID < 1 || a.ID > len(txns) {
			res.logf("Skipping out-of-range index %d", a.ID)
			continue
		}
		txn := txns[a.ID-1]

		if txn.UserOverride {
			res.logf("Skipping %s: user override set", txn.ID)
			continue
		}

		categoryID, ok := byName[a.Category]
		if !ok {
			// Unknown name from the oracle resolves to the reserved
			// fallback instead of failing the batch.
			res.logf("Unknown category %q for %s, falling back to %s", a.Category, txn.ID, domain.UncategorizedName)
			categoryID = fallbackID
		}
		if categoryID == "" {
			res.logf("Skipping %s: no %s category in store", txn.ID, domain.UncategorizedName)
			continue
		}

		err := s.store.UpdateTransactionCategory(ctx, domain.CategoryAssignment{
			TransactionID: txn.ID,
			CategoryID:    categoryID,
			CategoryName:  a.Category,
			AICategory:    a.Category,
			AIConfidence:  a.Confidence,
		})
		if err != nil {
			res.logf("Update failed for %s: %v", txn.ID, err)
			s.log.Warn().Str("transaction_id", txn.ID).Err(err).Msg("Category update failed")
			continue
		}
		res.Categorized++
	}

	res.logf("Categorized %d transactions", res.Categorized)
	s.log.Info().Int("categorized", res.Categorized).Msg("Categorization completed")

	return res, nil
}

func (r *Result) logf(format string, args ...interface{}) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
