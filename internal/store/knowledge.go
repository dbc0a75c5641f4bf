package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const knowledgeColumns = `id, category, key, value, display_title, sort_order, created_at, updated_at`

// KnowledgePatch holds the optional fields of a knowledge update.
type KnowledgePatch struct {
	Category     *string `json:"category"`
	Key          *string `json:"key"`
	Value        *string `json:"value"`
	DisplayTitle *string `json:"display_title"`
	SortOrder    *int    `json:"sort_order"`
}

func scanKnowledge(row pgx.Row) (*models.KnowledgeEntry, error) {
	var e models.KnowledgeEntry
	if err := row.Scan(&e.ID, &e.Category, &e.Key, &e.Value, &e.DisplayTitle, &e.SortOrder, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListKnowledge returns every entry ordered by category, sort order, key.
func (s *Store) ListKnowledge(ctx context.Context) ([]models.KnowledgeEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+knowledgeColumns+` FROM knowledge_base ORDER BY category, sort_order, key`)
	if err != nil {
		return nil, fmt.Errorf("list knowledge: %w", err)
	}
	defer rows.Close()

	var out []models.KnowledgeEntry
	for rows.Next() {
		e, err := scanKnowledge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) GetKnowledge(ctx context.Context, id int64) (*models.KnowledgeEntry, error) {
	e, err := scanKnowledge(s.pool.QueryRow(ctx, `SELECT `+knowledgeColumns+` FROM knowledge_base WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get knowledge %d: %w", id, classify(err))
	}
	return e, nil
}

// CreateKnowledge inserts a new entry. A duplicate (category, key) yields ErrConflict.
func (s *Store) CreateKnowledge(ctx context.Context, e models.KnowledgeEntry) (*models.KnowledgeEntry, error) {
	out, err := scanKnowledge(s.pool.QueryRow(ctx, `
		INSERT INTO knowledge_base (category, key, value, display_title, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+knowledgeColumns,
		e.Category, e.Key, e.Value, e.DisplayTitle, e.SortOrder,
	))
	if err != nil {
		return nil, fmt.Errorf("create knowledge: %w", classify(err))
	}
	return out, nil
}

// UpdateKnowledge applies the non-nil fields of p.
func (s *Store) UpdateKnowledge(ctx context.Context, id int64, p KnowledgePatch) (*models.KnowledgeEntry, error) {
	out, err := scanKnowledge(s.pool.QueryRow(ctx, `
		UPDATE knowledge_base
		SET category = COALESCE($1, category),
			key = COALESCE($2, key),
			value = COALESCE($3, value),
			display_title = COALESCE($4, display_title),
			sort_order = COALESCE($5, sort_order),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING `+knowledgeColumns,
		p.Category, p.Key, p.Value, p.DisplayTitle, p.SortOrder, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update knowledge %d: %w", id, classify(err))
	}
	return out, nil
}

func (s *Store) DeleteKnowledge(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM knowledge_base WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete knowledge %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete knowledge %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertKnowledge inserts e or, when (category, key) exists, replaces its
// value and display title. The existing sort order is kept.
func (s *Store) UpsertKnowledge(ctx context.Context, e models.KnowledgeEntry) (*models.KnowledgeEntry, error) {
	out, err := scanKnowledge(s.pool.QueryRow(ctx, `
		INSERT INTO knowledge_base (category, key, value, display_title, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			display_title = EXCLUDED.display_title,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+knowledgeColumns,
		e.Category, e.Key, e.Value, e.DisplayTitle, e.SortOrder,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert knowledge: %w", err)
	}
	return out, nil
}

// NextKnowledgeSortOrder returns max(sort_order)+1 for the category, or 0
// when it has no entries.
func (s *Store) NextKnowledgeSortOrder(ctx context.Context, category string) (int, error) {
	var next int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM knowledge_base WHERE category = $1`, category,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sort order for %s: %w", category, err)
	}
	return next, nil
}
