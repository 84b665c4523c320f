package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"homeledger/internal/domain"
)

// CategoryRow maps the categories table: the fixed classification
// vocabulary, read-only from the services' perspective.
type CategoryRow struct {
	ID       string              `bigquery:"id"` // REQUIRED
	Name     string              `bigquery:"name"`
	Parent   bigquery.NullString `bigquery:"parent"`
	Icon     bigquery.NullString `bigquery:"icon"`
	Color    bigquery.NullString `bigquery:"color"`
	IsActive bigquery.NullBool   `bigquery:"is_active"`
}

func (r *CategoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:       r.ID,
		Name:     r.Name,
		Parent:   r.Parent.StringVal,
		Icon:     r.Icon.StringVal,
		Color:    r.Color.StringVal,
		IsActive: !r.IsActive.Valid || r.IsActive.Bool,
	}
}

// ListActiveCategories returns the active vocabulary ordered by parent group
// then name.
func (s *Store) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT id, name, parent, icon, color, is_active
		FROM %s
		WHERE IFNULL(is_active, TRUE)
		ORDER BY parent, name
	`, s.table(categoriesTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActiveCategories: query read: %w", err)
	}

	var categories []domain.Category
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActiveCategories: iter next: %w", err)
		}
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}
