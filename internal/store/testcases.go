package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const testCaseColumns = `id, name, email_thread, customer_email, customer_name, subject, order_number, expected_behavior, tags, created_at`

// TestCasePatch holds the optional fields of a test case update.
type TestCasePatch struct {
	Name             *string  `json:"name"`
	EmailThread      *string  `json:"email_thread"`
	CustomerEmail    *string  `json:"customer_email"`
	CustomerName     *string  `json:"customer_name"`
	Subject          *string  `json:"subject"`
	OrderNumber      *string  `json:"order_number"`
	ExpectedBehavior *string  `json:"expected_behavior"`
	Tags             []string `json:"tags"`
}

func scanTestCase(row pgx.Row) (*models.TestCase, error) {
	var tc models.TestCase
	err := row.Scan(&tc.ID, &tc.Name, &tc.EmailThread, &tc.CustomerEmail, &tc.CustomerName,
		&tc.Subject, &tc.OrderNumber, &tc.ExpectedBehavior, &tc.Tags, &tc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if tc.Tags == nil {
		tc.Tags = []string{}
	}
	return &tc, nil
}

// ListTestCases returns test cases newest first, filtered to those carrying
// tag when tag is non-empty.
func (s *Store) ListTestCases(ctx context.Context, tag string) ([]models.TestCase, error) {
	query := `SELECT ` + testCaseColumns + ` FROM test_cases`
	var args []any
	if tag != "" {
		query += ` WHERE $1 = ANY(tags)`
		args = append(args, tag)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list test cases: %w", err)
	}
	defer rows.Close()

	var out []models.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test case: %w", err)
		}
		out = append(out, *tc)
	}
	return out, rows.Err()
}

func (s *Store) GetTestCase(ctx context.Context, id int64) (*models.TestCase, error) {
	tc, err := scanTestCase(s.pool.QueryRow(ctx, `SELECT `+testCaseColumns+` FROM test_cases WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get test case %d: %w", id, classify(err))
	}
	return tc, nil
}

func (s *Store) CreateTestCase(ctx context.Context, tc models.TestCase) (*models.TestCase, error) {
	tags := tc.Tags
	if tags == nil {
		tags = []string{}
	}
	out, err := scanTestCase(s.pool.QueryRow(ctx, `
		INSERT INTO test_cases (name, email_thread, customer_email, customer_name, subject, order_number, expected_behavior, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+testCaseColumns,
		tc.Name, tc.EmailThread, tc.CustomerEmail, tc.CustomerName, tc.Subject, tc.OrderNumber, tc.ExpectedBehavior, tags,
	))
	if err != nil {
		return nil, fmt.Errorf("create test case: %w", classify(err))
	}
	return out, nil
}

// UpdateTestCase applies the non-nil fields of p.
func (s *Store) UpdateTestCase(ctx context.Context, id int64, p TestCasePatch) (*models.TestCase, error) {
	out, err := scanTestCase(s.pool.QueryRow(ctx, `
		UPDATE test_cases
		SET name = COALESCE($1, name),
			email_thread = COALESCE($2, email_thread),
			customer_email = COALESCE($3, customer_email),
			customer_name = COALESCE($4, customer_name),
			subject = COALESCE($5, subject),
			order_number = COALESCE($6, order_number),
			expected_behavior = COALESCE($7, expected_behavior),
			tags = COALESCE($8, tags)
		WHERE id = $9
		RETURNING `+testCaseColumns,
		p.Name, p.EmailThread, p.CustomerEmail, p.CustomerName, p.Subject, p.OrderNumber, p.ExpectedBehavior, p.Tags, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update test case %d: %w", id, classify(err))
	}
	return out, nil
}

// DeleteTestCase removes a test case; its results go with it.
func (s *Store) DeleteTestCase(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM test_cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete test case %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete test case %d: %w", id, ErrNotFound)
	}
	return nil
}
