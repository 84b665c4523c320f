// Package bigquery is the storage layer: cash accounts, transactions, the
// category vocabulary, the SimpleFIN singleton config and document metadata,
// all in one BigQuery dataset. Natural-key lookups are explicit find
// operations so the upsert decisions stay in the calling services.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

const (
	accountsTable     = "cash_accounts"
	transactionsTable = "transactions"
	categoriesTable   = "categories"
	configTable       = "simplefin_config"
	documentsTable    = "documents"
)

// Store holds a shared BigQuery client so one connection serves all
// operations of a request.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewStore creates a Store for the given project and dataset.
func NewStore(ctx context.Context, projectID, datasetID string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return &Store{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the underlying BigQuery client.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// table returns the fully qualified, backtick-quoted table name.
func (s *Store) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", s.projectID, s.datasetID, name)
}

// runDML executes a DML statement and waits for the job to finish.
func (s *Store) runDML(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
