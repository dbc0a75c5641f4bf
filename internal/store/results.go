package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const resultSelect = `
	SELECT r.id, r.test_case_id, r.prompt_version_id, r.agent_response, r.evaluator_score,
		r.evaluator_reasoning, r.rule_checks, r.created_at, tc.name, pv.name
	FROM test_results r
	LEFT JOIN test_cases tc ON r.test_case_id = tc.id
	LEFT JOIN prompt_versions pv ON r.prompt_version_id = pv.id`

// ResultFilter narrows ListTestResults. Zero fields are ignored.
type ResultFilter struct {
	TestCaseID      int64
	PromptVersionID int64
	Limit           int
}

func scanResult(row pgx.Row) (*models.TestResult, error) {
	var r models.TestResult
	err := row.Scan(&r.ID, &r.TestCaseID, &r.PromptVersionID, &r.AgentResponse, &r.EvaluatorScore,
		&r.EvaluatorReasoning, &r.RuleChecks, &r.CreatedAt, &r.TestCaseName, &r.PromptVersionName)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListTestResults returns results newest first with test case and prompt names.
func (s *Store) ListTestResults(ctx context.Context, f ResultFilter) ([]models.TestResult, error) {
	query := resultSelect + ` WHERE ($1::integer IS NULL OR r.test_case_id = $1) AND ($2::integer IS NULL OR r.prompt_version_id = $2)
		ORDER BY r.created_at DESC, r.id DESC`
	args := []any{nullableID(f.TestCaseID), nullableID(f.PromptVersionID)}
	if f.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	defer rows.Close()

	var out []models.TestResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) GetTestResult(ctx context.Context, id int64) (*models.TestResult, error) {
	r, err := scanResult(s.pool.QueryRow(ctx, resultSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get test result %d: %w", id, classify(err))
	}
	return r, nil
}

// CreateTestResult saves a playground run. A missing test case or prompt
// version yields ErrNotFound.
func (s *Store) CreateTestResult(ctx context.Context, r models.TestResult) (*models.TestResult, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO test_results (test_case_id, prompt_version_id, agent_response, evaluator_score, evaluator_reasoning, rule_checks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		r.TestCaseID, r.PromptVersionID, r.AgentResponse, r.EvaluatorScore, r.EvaluatorReasoning, r.RuleChecks,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("create test result: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("create test result: %w", classify(err))
	}
	return s.GetTestResult(ctx, id)
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
