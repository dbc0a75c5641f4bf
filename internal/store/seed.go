package store

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// SeedRule is one entry of the embedded default rule set.
type SeedRule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	CheckPrompt string `yaml:"check_prompt"`
}

// DefaultRules parses the embedded default evaluator rules.
func DefaultRules() ([]SeedRule, error) {
	var rules []SeedRule
	if err := yaml.Unmarshal(defaultRulesYAML, &rules); err != nil {
		return nil, fmt.Errorf("parse default rules: %w", err)
	}
	return rules, nil
}

// Seed inserts the default evaluator rules, leaving existing names untouched.
// It returns the number of rules inserted.
func (s *Store) Seed(ctx context.Context) (int, error) {
	rules, err := DefaultRules()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, r := range rules {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO evaluator_rules (name, description, check_prompt)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`,
			r.Name, r.Description, r.CheckPrompt,
		)
		if err != nil {
			return inserted, fmt.Errorf("seed rule %q: %w", r.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
