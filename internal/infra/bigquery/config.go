package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"homeledger/internal/domain"
)

// SimpleFINConfigRow maps the simplefin_config table. The table is a
// singleton: at most one row exists, enforced by the existence check in
// UpsertSimpleFINConfig rather than assumed from schema constraints.
type SimpleFINConfigRow struct {
	ID         string                 `bigquery:"id"` // REQUIRED
	AccessURL  string                 `bigquery:"access_url"`
	LastSynced bigquery.NullTimestamp `bigquery:"last_synced"`
}

// GetSimpleFINConfig returns the singleton config, or nil when the claim has
// never run.
func (s *Store) GetSimpleFINConfig(ctx context.Context) (*domain.SimpleFINConfig, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT id, access_url, last_synced
		FROM %s
		LIMIT 1
	`, s.table(configTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetSimpleFINConfig: query read: %w", err)
	}

	var row SimpleFINConfigRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetSimpleFINConfig: iter next: %w", err)
	}

	cfg := &domain.SimpleFINConfig{ID: row.ID, AccessURL: row.AccessURL}
	if row.LastSynced.Valid {
		t := row.LastSynced.Timestamp
		cfg.LastSynced = &t
	}
	return cfg, nil
}

// UpsertSimpleFINConfig stores the access URL as the singleton config row:
// update when a row exists, insert when none does. The existence check keys
// the decision, so repeated claims can never grow a second row.
func (s *Store) UpsertSimpleFINConfig(ctx context.Context, accessURL string) error {
	existing, err := s.GetSimpleFINConfig(ctx)
	if err != nil {
		return fmt.Errorf("UpsertSimpleFINConfig: %w", err)
	}

	if existing != nil {
		q := s.client.Query(fmt.Sprintf(`
			UPDATE %s
			SET access_url = @access_url
			WHERE id = @id
		`, s.table(configTable)))
		q.Parameters = []bigquery.QueryParameter{
			{Name: "id", Value: existing.ID},
			{Name: "access_url", Value: accessURL},
		}
		if err := s.runDML(ctx, q); err != nil {
			return fmt.Errorf("UpsertSimpleFINConfig: updating: %w", err)
		}
		return nil
	}

	q := s.client.Query(fmt.Sprintf(`
		INSERT INTO %s (id, access_url)
		VALUES (@id, @access_url)
	`, s.table(configTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: uuid.NewString()},
		{Name: "access_url", Value: accessURL},
	}
	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpsertSimpleFINConfig: inserting: %w", err)
	}
	return nil
}

// MarkSynced records the completion time of a pull on the singleton row.
func (s *Store) MarkSynced(ctx context.Context, at time.Time) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET last_synced = @at
		WHERE TRUE
	`, s.table(configTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "at", Value: at},
	}

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("MarkSynced: %w", err)
	}
	return nil
}
