package store

import (
	"context"
	"fmt"
)

// migrations run in order on every Migrate call; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_base (
		id SERIAL PRIMARY KEY,
		category VARCHAR(100) NOT NULL,
		key VARCHAR(255) NOT NULL,
		value TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (category, key)
	)`,
	`ALTER TABLE knowledge_base ADD COLUMN IF NOT EXISTS display_title VARCHAR(255)`,
	`ALTER TABLE knowledge_base ADD COLUMN IF NOT EXISTS sort_order INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_knowledge_base_category ON knowledge_base(category)`,

	`CREATE TABLE IF NOT EXISTS wizard_steps (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		category VARCHAR(100) NOT NULL UNIQUE,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS prompt_versions (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		system_prompt TEXT NOT NULL,
		user_prompt TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		notes TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS test_cases (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email_thread TEXT NOT NULL,
		customer_email VARCHAR(255),
		customer_name VARCHAR(255),
		subject VARCHAR(500),
		order_number VARCHAR(100),
		expected_behavior TEXT,
		tags TEXT[],
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS test_results (
		id SERIAL PRIMARY KEY,
		test_case_id INTEGER NOT NULL REFERENCES test_cases(id) ON DELETE CASCADE,
		prompt_version_id INTEGER NOT NULL REFERENCES prompt_versions(id) ON DELETE CASCADE,
		agent_response TEXT NOT NULL,
		evaluator_score INTEGER,
		evaluator_reasoning TEXT,
		rule_checks JSONB,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_test_results_test_case ON test_results(test_case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_test_results_prompt_version ON test_results(prompt_version_id)`,
	`ALTER TABLE test_results DROP CONSTRAINT IF EXISTS test_results_evaluator_score_check`,
	`ALTER TABLE test_results ADD CONSTRAINT test_results_evaluator_score_check CHECK (evaluator_score >= 0 AND evaluator_score <= 100)`,

	`CREATE TABLE IF NOT EXISTS evaluator_rules (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		check_prompt TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`DELETE FROM evaluator_rules a USING evaluator_rules b WHERE a.id > b.id AND a.name = b.name`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_evaluator_rules_name ON evaluator_rules(name)`,
	`ALTER TABLE evaluator_rules ADD COLUMN IF NOT EXISTS knowledge_base_id INTEGER REFERENCES knowledge_base(id) ON DELETE SET NULL`,
	`CREATE INDEX IF NOT EXISTS idx_evaluator_rules_kb ON evaluator_rules(knowledge_base_id)`,
	`ALTER TABLE evaluator_rules ADD COLUMN IF NOT EXISTS category VARCHAR(100)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluator_rules_category ON evaluator_rules(category)`,
}

// Migrate applies the schema. Safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
