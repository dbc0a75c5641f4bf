package generator

import (
	"strings"
	"unicode"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const knowledgeHeader = "\n\n## CRITICAL TRAINING RULES (You MUST follow these)\n\n"

const outputInstructions = `

## OUTPUT FORMAT REQUIREMENTS
- Output ONLY the email response body - no preamble, no thinking, no explanations
- Do NOT include any tool invocations, XML tags, or function calls in your output
- Do NOT include phrases like "I need to look up" or "Let me check" or any internal reasoning
- Start directly with the email greeting (e.g., "Dear [Name]," or "Hello,")
- End with the signature
- Your entire response should be ready to send to the customer as-is`

// Assembled is the final prompt pair sent to the model.
type Assembled struct {
	System string
	User   string
}

// Assemble builds the system prompt (base + knowledge section + output rules)
// and the user message (template + email thread). The knowledge section is
// omitted entirely when kb is empty.
func Assemble(base, userTemplate, thread string, kb []models.KnowledgeEntry) Assembled {
	return Assembled{
		System: base + KnowledgeSection(kb) + outputInstructions,
		User:   userTemplate + "\n\nEmail Thread:\n" + thread,
	}
}

// KnowledgeSection renders kb grouped by category in first-seen order.
func KnowledgeSection(kb []models.KnowledgeEntry) string {
	if len(kb) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(knowledgeHeader)
	for _, group := range GroupByCategory(kb) {
		b.WriteString("### ")
		b.WriteString(CategoryTitle(group.Category))
		b.WriteString("\n")
		for _, e := range group.Entries {
			b.WriteString("- **")
			b.WriteString(e.Key)
			b.WriteString("**: ")
			b.WriteString(e.Value)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CategoryGroup is one category and its entries, in input order.
type CategoryGroup struct {
	Category string
	Entries  []models.KnowledgeEntry
}

// GroupByCategory groups entries by category, each category exactly once, in
// the order the category first appears.
func GroupByCategory(kb []models.KnowledgeEntry) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, e := range kb {
		i, ok := index[e.Category]
		if !ok {
			i = len(groups)
			index[e.Category] = i
			groups = append(groups, CategoryGroup{Category: e.Category})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// CategoryTitle turns "refund_handling" into "Refund Handling".
func CategoryTitle(category string) string {
	s := strings.ReplaceAll(category, "_", " ")
	out := []rune(s)
	prevWord := false
	for i, r := range out {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		if isWord && !prevWord {
			out[i] = unicode.ToUpper(r)
		}
		prevWord = isWord
	}
	return string(out)
}
