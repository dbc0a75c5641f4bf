package models

import "time"

// KnowledgeEntry is a single category/key fact fed into the agent's system prompt.
// (category, key) is unique.
type KnowledgeEntry struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	Key          string    `json:"key"`
	Value        string    `json:"value"`
	DisplayTitle *string   `json:"display_title,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WizardStep groups the knowledge entries of one category. Category is unique.
type WizardStep struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	SortOrder int    `json:"sort_order"`
}

// PromptVersion is an editable system/user prompt pair. At most one is active.
type PromptVersion struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	IsActive     bool      `json:"is_active"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TestCase is a sample customer email thread used in the playground.
type TestCase struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	EmailThread      string    `json:"email_thread"`
	CustomerEmail    *string   `json:"customer_email,omitempty"`
	CustomerName     *string   `json:"customer_name,omitempty"`
	Subject          *string   `json:"subject,omitempty"`
	OrderNumber      *string   `json:"order_number,omitempty"`
	ExpectedBehavior *string   `json:"expected_behavior,omitempty"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
}

// EvaluatorRule is a natural-language check the evaluator model applies to a response.
type EvaluatorRule struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	CheckPrompt     string    `json:"check_prompt"`
	Priority        int       `json:"priority"`
	IsActive        bool      `json:"is_active"`
	Category        *string   `json:"category,omitempty"`
	KnowledgeBaseID *int64    `json:"knowledge_base_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RuleSource carries the display provenance of a rule, joined from
// knowledge_base and wizard_steps.
type RuleSource struct {
	KBCategory     *string `json:"kb_category,omitempty"`
	KBKey          *string `json:"kb_key,omitempty"`
	KBDisplayTitle *string `json:"kb_display_title,omitempty"`
	StepTitle      *string `json:"step_title,omitempty"`
}

// EvaluatorRuleWithSource is a rule row plus its provenance columns.
type EvaluatorRuleWithSource struct {
	EvaluatorRule
	RuleSource
}

// RuleCheck is the per-rule verdict returned by the evaluator.
type RuleCheck struct {
	Passed    bool   `json:"passed"`
	Reasoning string `json:"reasoning"`
}

// Evaluation is the evaluator's verdict on one agent response.
type Evaluation struct {
	Score      int                  `json:"score"`
	Reasoning  string               `json:"reasoning"`
	RuleChecks map[string]RuleCheck `json:"ruleChecks"`
}

// TestResult is a saved playground run. Immutable once created.
type TestResult struct {
	ID                 int64                `json:"id"`
	TestCaseID         int64                `json:"test_case_id"`
	PromptVersionID    int64                `json:"prompt_version_id"`
	AgentResponse      string               `json:"agent_response"`
	EvaluatorScore     *int                 `json:"evaluator_score,omitempty"`
	EvaluatorReasoning *string              `json:"evaluator_reasoning,omitempty"`
	RuleChecks         map[string]RuleCheck `json:"rule_checks,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`

	// Joined for display.
	TestCaseName      *string `json:"test_case_name,omitempty"`
	PromptVersionName *string `json:"prompt_version_name,omitempty"`
}

// Suggestion types.
const (
	SuggestionAddToExisting = "add_to_existing"
	SuggestionNewStep       = "new_step"
)

// Suggestion is a proposed knowledge-base addition. Not persisted until applied.
type Suggestion struct {
	ID            string `json:"id"`
	Type          string `json:"type"` // add_to_existing | new_step
	StepTitle     string `json:"stepTitle"`
	StepCategory  string `json:"stepCategory,omitempty"`
	QuestionTitle string `json:"questionTitle"`
	QuestionValue string `json:"questionValue"`
	Reasoning     string `json:"reasoning"`
	Priority      string `json:"priority"` // high | medium | low
	RuleViolated  string `json:"ruleViolated,omitempty"`
}

// SuggestionSet is the suggestion pipeline's result.
type SuggestionSet struct {
	Suggestions []Suggestion `json:"suggestions"`
	Summary     string       `json:"summary"`
}
