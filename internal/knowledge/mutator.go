// Package knowledge applies accepted suggestions to the knowledge base.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/csopt/internal/events"
	"github.com/MikeSquared-Agency/csopt/internal/models"
)

// Store is the subset of the record store the mutator writes through.
type Store interface {
	NextKnowledgeSortOrder(ctx context.Context, category string) (int, error)
	UpsertKnowledge(ctx context.Context, e models.KnowledgeEntry) (*models.KnowledgeEntry, error)
	CreateWizardStep(ctx context.Context, title, category string) (bool, error)
	GetPromptVersion(ctx context.Context, id int64) (*models.PromptVersion, error)
	SetSystemPrompt(ctx context.Context, id int64, systemPrompt string) error
}

type ApplyRequest struct {
	Type            string `json:"type"`
	StepTitle       string `json:"stepTitle"`
	StepCategory    string `json:"stepCategory"`
	QuestionTitle   string `json:"questionTitle"`
	QuestionValue   string `json:"questionValue"`
	PromptVersionID *int64 `json:"promptVersionId,omitempty"`
}

// Missing lists the names of required fields that are blank.
func (r ApplyRequest) Missing() []string {
	var missing []string
	if strings.TrimSpace(r.StepCategory) == "" {
		missing = append(missing, "stepCategory")
	}
	if strings.TrimSpace(r.QuestionTitle) == "" {
		missing = append(missing, "questionTitle")
	}
	if strings.TrimSpace(r.QuestionValue) == "" {
		missing = append(missing, "questionValue")
	}
	return missing
}

type ApplyResult struct {
	Entry         *models.KnowledgeEntry `json:"entry"`
	Message       string                 `json:"message"`
	PromptUpdated bool                   `json:"promptUpdated"`
	StepCreated   bool                   `json:"stepCreated"`
}

type Mutator struct {
	store  Store
	events events.Publisher
	logger *slog.Logger
}

func New(s Store, pub events.Publisher, logger *slog.Logger) *Mutator {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Mutator{store: s, events: pub, logger: logger}
}

// Apply upserts the knowledge entry, then best-effort creates the wizard step
// (new_step only) and appends the improvement to the prompt version. Only the
// knowledge write can fail the call.
func (m *Mutator) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	sortOrder, err := m.store.NextKnowledgeSortOrder(ctx, req.StepCategory)
	if err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}

	title := req.QuestionTitle
	entry, err := m.store.UpsertKnowledge(ctx, models.KnowledgeEntry{
		Category:     req.StepCategory,
		Key:          req.QuestionTitle,
		Value:        req.QuestionValue,
		DisplayTitle: &title,
		SortOrder:    sortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert knowledge: %w", err)
	}

	res := &ApplyResult{Entry: entry}

	if req.Type == models.SuggestionNewStep {
		created, err := m.store.CreateWizardStep(ctx, req.StepTitle, req.StepCategory)
		if err != nil {
			m.logger.Warn("wizard step creation skipped",
				"category", req.StepCategory,
				"error", err,
			)
		}
		res.StepCreated = created
	}

	if req.PromptVersionID != nil && *req.PromptVersionID != 0 {
		res.PromptUpdated = m.appendToPrompt(ctx, *req.PromptVersionID, req.QuestionTitle, req.QuestionValue)
	}

	res.Message = message(req, res.PromptUpdated)

	m.logger.Info("suggestion applied",
		"type", req.Type,
		"category", req.StepCategory,
		"key", req.QuestionTitle,
		"entry_id", entry.ID,
		"prompt_updated", res.PromptUpdated,
	)

	if err := m.events.Publish(events.SubjectKnowledgeApplied, map[string]any{
		"entry_id":       entry.ID,
		"category":       entry.Category,
		"key":            entry.Key,
		"type":           req.Type,
		"prompt_updated": res.PromptUpdated,
	}); err != nil {
		m.logger.Warn("failed to publish knowledge event", "error", err)
	}

	return res, nil
}

// ImprovementText is the block appended to a prompt's system prompt.
func ImprovementText(title, value string) string {
	return "\n\n## Improvement: " + title + "\n" + value
}

func (m *Mutator) appendToPrompt(ctx context.Context, id int64, title, value string) bool {
	pv, err := m.store.GetPromptVersion(ctx, id)
	if err != nil {
		m.logger.Error("failed to load prompt for improvement", "prompt_version_id", id, "error", err)
		return false
	}

	if err := m.store.SetSystemPrompt(ctx, id, pv.SystemPrompt+ImprovementText(title, value)); err != nil {
		m.logger.Error("failed to update prompt", "prompt_version_id", id, "error", err)
		return false
	}
	return true
}

func message(req ApplyRequest, promptUpdated bool) string {
	var msg string
	if req.Type == models.SuggestionNewStep {
		msg = fmt.Sprintf(`Created new step "%s" with entry "%s"`, req.StepTitle, req.QuestionTitle)
	} else {
		msg = fmt.Sprintf(`Added "%s" to "%s"`, req.QuestionTitle, req.StepTitle)
	}
	if promptUpdated {
		msg += " and updated current prompt"
	}
	return msg
}
