package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

func (s *Store) ListWizardSteps(ctx context.Context) ([]models.WizardStep, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, category, sort_order FROM wizard_steps ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list wizard steps: %w", err)
	}
	defer rows.Close()

	var out []models.WizardStep
	for rows.Next() {
		var w models.WizardStep
		if err := rows.Scan(&w.ID, &w.Title, &w.Category, &w.SortOrder); err != nil {
			return nil, fmt.Errorf("scan wizard step: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// CreateWizardStep appends a step after the current last one. It reports
// false without error when the category already has a step.
func (s *Store) CreateWizardStep(ctx context.Context, title, category string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO wizard_steps (title, category, sort_order)
		SELECT $1, $2, COALESCE(MAX(sort_order) + 1, 0) FROM wizard_steps
		ON CONFLICT (category) DO NOTHING`,
		title, category,
	)
	if err != nil {
		return false, fmt.Errorf("create wizard step %s: %w", category, err)
	}
	return tag.RowsAffected() == 1, nil
}
