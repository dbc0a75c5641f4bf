// Package wizard derives training-wizard completion from wizard steps and
// knowledge-base entries.
package wizard

import (
	"math"
	"strings"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

type Status struct {
	IsComplete        bool `json:"isComplete"`
	TotalSteps        int  `json:"totalSteps"`
	CompletedSteps    int  `json:"completedSteps"`
	TotalQuestions    int  `json:"totalQuestions"`
	AnsweredQuestions int  `json:"answeredQuestions"`
	PercentComplete   int  `json:"percentComplete"`
}

// Calculate computes completion for the given step categories. A step with no
// entries counts as complete. Entries whose category has no step are ignored.
func Calculate(stepCategories []string, entries []models.KnowledgeEntry) Status {
	type tally struct{ total, answered int }
	byCategory := make(map[string]*tally, len(stepCategories))
	for _, c := range stepCategories {
		byCategory[c] = &tally{}
	}
	for _, e := range entries {
		t, ok := byCategory[e.Category]
		if !ok {
			continue
		}
		t.total++
		if strings.TrimSpace(e.Value) != "" {
			t.answered++
		}
	}

	var s Status
	seen := make(map[string]bool, len(stepCategories))
	for _, c := range stepCategories {
		if seen[c] {
			continue
		}
		seen[c] = true
		t := byCategory[c]
		s.TotalSteps++
		s.TotalQuestions += t.total
		s.AnsweredQuestions += t.answered
		if t.total == 0 || t.answered == t.total {
			s.CompletedSteps++
		}
	}

	s.IsComplete = s.TotalSteps > 0 && s.CompletedSteps == s.TotalSteps
	switch {
	case s.TotalSteps == 0:
		s.PercentComplete = 0
	case s.TotalQuestions == 0:
		s.PercentComplete = 100
	default:
		s.PercentComplete = int(math.Round(100 * float64(s.AnsweredQuestions) / float64(s.TotalQuestions)))
	}
	return s
}

// Categories returns the categories of steps in order.
func Categories(steps []models.WizardStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Category
	}
	return out
}
