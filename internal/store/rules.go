package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const defaultRulePriority = 5

const ruleColumns = `er.id, er.name, er.description, er.check_prompt, er.priority, er.is_active, er.category, er.knowledge_base_id, er.created_at`

// RulePatch holds the optional fields of an evaluator rule update.
type RulePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CheckPrompt *string `json:"check_prompt"`
	Priority    *int    `json:"priority"`
	IsActive    *bool   `json:"is_active"`
	Category    *string `json:"category"`
}

// Empty reports whether no field is set.
func (p RulePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.CheckPrompt == nil &&
		p.Priority == nil && p.IsActive == nil && p.Category == nil
}

func scanRule(row pgx.Row) (*models.EvaluatorRule, error) {
	var r models.EvaluatorRule
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CheckPrompt, &r.Priority, &r.IsActive,
		&r.Category, &r.KnowledgeBaseID, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListEvaluatorRules returns rules ordered by priority DESC, name, joined with
// the knowledge entry and wizard step they came from. Only active rules are
// returned unless all is set.
func (s *Store) ListEvaluatorRules(ctx context.Context, all bool) ([]models.EvaluatorRuleWithSource, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+ruleColumns+`,
			kb.category, kb.key, kb.display_title, COALESCE(ws.title, ws2.title)
		FROM evaluator_rules er
		LEFT JOIN knowledge_base kb ON er.knowledge_base_id = kb.id
		LEFT JOIN wizard_steps ws ON kb.category = ws.category
		LEFT JOIN wizard_steps ws2 ON er.category = ws2.category
		WHERE $1 OR er.is_active = true
		ORDER BY er.priority DESC, er.name`, all)
	if err != nil {
		return nil, fmt.Errorf("list evaluator rules: %w", err)
	}
	defer rows.Close()

	var out []models.EvaluatorRuleWithSource
	for rows.Next() {
		var r models.EvaluatorRuleWithSource
		err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CheckPrompt, &r.Priority, &r.IsActive,
			&r.Category, &r.KnowledgeBaseID, &r.CreatedAt,
			&r.KBCategory, &r.KBKey, &r.KBDisplayTitle, &r.StepTitle)
		if err != nil {
			return nil, fmt.Errorf("scan evaluator rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateEvaluatorRule inserts r. A zero priority becomes the default of 5.
// A duplicate name yields ErrConflict.
func (s *Store) CreateEvaluatorRule(ctx context.Context, r models.EvaluatorRule) (*models.EvaluatorRule, error) {
	if r.Priority == 0 {
		r.Priority = defaultRulePriority
	}
	out, err := scanRule(s.pool.QueryRow(ctx, `
		INSERT INTO evaluator_rules AS er (name, description, check_prompt, priority, is_active, category, knowledge_base_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ruleColumns,
		r.Name, r.Description, r.CheckPrompt, r.Priority, r.IsActive, r.Category, r.KnowledgeBaseID,
	))
	if err != nil {
		return nil, fmt.Errorf("create evaluator rule: %w", classify(err))
	}
	return out, nil
}

// UpdateEvaluatorRule applies the non-nil fields of p.
func (s *Store) UpdateEvaluatorRule(ctx context.Context, id int64, p RulePatch) (*models.EvaluatorRule, error) {
	out, err := scanRule(s.pool.QueryRow(ctx, `
		UPDATE evaluator_rules AS er
		SET name = COALESCE($1, er.name),
			description = COALESCE($2, er.description),
			check_prompt = COALESCE($3, er.check_prompt),
			priority = COALESCE($4, er.priority),
			is_active = COALESCE($5, er.is_active),
			category = COALESCE($6, er.category)
		WHERE er.id = $7
		RETURNING `+ruleColumns,
		p.Name, p.Description, p.CheckPrompt, p.Priority, p.IsActive, p.Category, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update evaluator rule %d: %w", id, classify(err))
	}
	return out, nil
}

// DeleteEvaluatorRule removes a rule. Deleting a missing id is not an error.
func (s *Store) DeleteEvaluatorRule(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM evaluator_rules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete evaluator rule %d: %w", id, err)
	}
	return nil
}
