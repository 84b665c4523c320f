package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"homeledger/internal/domain"
)

// DocumentRow maps the documents table: metadata for files whose bytes live
// in GCS.
type DocumentRow struct {
	ID          string              `bigquery:"id"` // REQUIRED
	Filename    string              `bigquery:"filename"`
	GCSURI      string              `bigquery:"gcs_uri"`
	ContentType bigquery.NullString `bigquery:"content_type"`
	SizeBytes   bigquery.NullInt64  `bigquery:"size_bytes"`

	EntityType bigquery.NullString `bigquery:"entity_type"`
	EntityID   bigquery.NullString `bigquery:"entity_id"`

	UploadedTS time.Time `bigquery:"uploaded_ts"`
}

func (r *DocumentRow) toDomain() domain.Document {
	return domain.Document{
		ID:          r.ID,
		Filename:    r.Filename,
		GCSURI:      r.GCSURI,
		ContentType: r.ContentType.StringVal,
		SizeBytes:   r.SizeBytes.Int64,
		EntityType:  r.EntityType.StringVal,
		EntityID:    r.EntityID.StringVal,
		UploadedAt:  r.UploadedTS,
	}
}

// InsertDocument records uploaded file metadata.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document) error {
	q := s.client.Query(fmt.Sprintf(`
		INSERT INTO %s (id, filename, gcs_uri, content_type, size_bytes, entity_type, entity_id, uploaded_ts)
		VALUES (@id, @filename, @gcs_uri, @content_type, @size_bytes, @entity_type, @entity_id, @uploaded_ts)
	`, s.table(documentsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "id", Value: doc.ID},
		{Name: "filename", Value: doc.Filename},
		{Name: "gcs_uri", Value: doc.GCSURI},
		{Name: "content_type", Value: doc.ContentType},
		{Name: "size_bytes", Value: doc.SizeBytes},
		{Name: "entity_type", Value: doc.EntityType},
		{Name: "entity_id", Value: doc.EntityID},
		{Name: "uploaded_ts", Value: doc.UploadedAt},
	}

	if err := s.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertDocument: %w", err)
	}
	return nil
}

// ListDocuments returns document metadata, optionally filtered to one
// entity, newest first.
func (s *Store) ListDocuments(ctx context.Context, entityType, entityID string) ([]domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, filename, gcs_uri, content_type, size_bytes, entity_type, entity_id, uploaded_ts
		FROM %s
	`, s.table(documentsTable))

	var params []bigquery.QueryParameter
	if entityType != "" {
		query += `WHERE entity_type = @entity_type AND entity_id = @entity_id
		`
		params = append(params,
			bigquery.QueryParameter{Name: "entity_type", Value: entityType},
			bigquery.QueryParameter{Name: "entity_id", Value: entityID},
		)
	}
	query += `ORDER BY uploaded_ts DESC`

	q := s.client.Query(query)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDocuments: query read: %w", err)
	}

	var docs []domain.Document
	for {
		var row DocumentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDocuments: iter next: %w", err)
		}
		docs = append(docs, row.toDomain())
	}
	return docs, nil
}
