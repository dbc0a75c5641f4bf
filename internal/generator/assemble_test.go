package generator

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

func entry(category, key, value string) models.KnowledgeEntry {
	return models.KnowledgeEntry{Category: category, Key: key, Value: value}
}

func TestAssemble_WithKnowledge(t *testing.T) {
	kb := []models.KnowledgeEntry{
		entry("company_basics", "name", "Acme"),
		entry("company_basics", "tone", "Warm"),
		entry("refund_handling", "window", "30 days"),
	}

	got := Assemble("You are a support agent.", "Reply to the customer.", "Hi, where is my order?", kb)

	wantSystem := "You are a support agent." +
		"\n\n## CRITICAL TRAINING RULES (You MUST follow these)\n\n" +
		"### Company Basics\n- **name**: Acme\n- **tone**: Warm\n\n" +
		"### Refund Handling\n- **window**: 30 days\n\n" +
		outputInstructions
	if got.System != wantSystem {
		t.Errorf("unexpected system prompt:\n%s\nwant:\n%s", got.System, wantSystem)
	}

	wantUser := "Reply to the customer.\n\nEmail Thread:\nHi, where is my order?"
	if got.User != wantUser {
		t.Errorf("unexpected user message %q", got.User)
	}
}

func TestAssemble_NoKnowledgeOmitsSection(t *testing.T) {
	got := Assemble("base", "tmpl", "thread", nil)

	if strings.Contains(got.System, "CRITICAL TRAINING RULES") {
		t.Error("expected knowledge section to be omitted")
	}
	if got.System != "base"+outputInstructions {
		t.Errorf("unexpected system prompt %q", got.System)
	}
	if !strings.Contains(got.System, "Start directly with the email greeting") {
		t.Error("expected output instructions")
	}
}

func TestGroupByCategory_FirstSeenOrderOncePerCategory(t *testing.T) {
	kb := []models.KnowledgeEntry{
		entry("shipping", "a", "1"),
		entry("basics", "b", "2"),
		entry("shipping", "c", "3"),
		entry("tone", "d", "4"),
		entry("basics", "e", "5"),
	}

	groups := GroupByCategory(kb)

	var order []string
	for _, g := range groups {
		order = append(order, g.Category)
	}
	if strings.Join(order, ",") != "shipping,basics,tone" {
		t.Fatalf("unexpected category order %v", order)
	}
	if len(groups[0].Entries) != 2 || groups[0].Entries[1].Key != "c" {
		t.Errorf("unexpected shipping entries %+v", groups[0].Entries)
	}

	section := KnowledgeSection(kb)
	for _, heading := range []string{"### Shipping\n", "### Basics\n", "### Tone\n"} {
		if n := strings.Count(section, heading); n != 1 {
			t.Errorf("expected heading %q exactly once, got %d", heading, n)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	tests := map[string]string{
		"refund_handling":     "Refund Handling",
		"escalation_triggers": "Escalation Triggers",
		"faq":                 "Faq",
		"tone-of_voice":       "Tone-Of Voice",
		"step_2_policy":       "Step 2 Policy",
		"":                    "",
	}
	for in, want := range tests {
		if got := CategoryTitle(in); got != want {
			t.Errorf("CategoryTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
