package pipeline

import (
	"errors"
	"fmt"
	"regexp"
)

// PromptVersion identifies the wording of the templates below. Bump it when
// any template text changes so audit rows can be compared across versions.
const PromptVersion = "v1"

// InsightPersona is the system prompt used for conversational replies.
const InsightPersona = "You are an expert financial Analyst."

// Kind names a prompt template.
type Kind string

const (
	KindInsight  Kind = "insight"
	KindIncome   Kind = "income"
	KindExpenses Kind = "expenses"
	KindConcerns Kind = "concerns"
	KindAdvice   Kind = "advice"
	KindSummary  Kind = "summary"
	KindFormat   Kind = "format"
)

var (
	// ErrUnknownPrompt is returned when a template kind is not registered.
	ErrUnknownPrompt = errors.New("unknown prompt kind")

	// ErrMissingVariable is returned when a template placeholder has no value.
	ErrMissingVariable = errors.New("missing prompt variable")
)

var templates = map[Kind]string{
	KindInsight: "Give financial insight into the following financial notes:\n\n{note}\n\n" +
		"Extract financial income from the insight. " +
		"List financial expenses from the insight. " +
		"List financial concerns about the financial insight.",

	KindIncome: "Extract every source of income mentioned in the financial journal note below.\n" +
		"Start with a one-line heading, then write one line per source in the form \"Source: amount\".\n" +
		"Use plain numbers for amounts. If no income is mentioned, write only the heading.\n\n" +
		"Note:\n{note}",

	KindExpenses: "Extract every expense mentioned in the financial journal note below.\n" +
		"Start with a one-line heading, then write one line per expense in the form \"Category: amount\".\n" +
		"Use plain numbers for amounts. If no expense is mentioned, write only the heading.\n\n" +
		"Note:\n{note}",

	KindConcerns: "List the financial concerns, worries and goals expressed in the financial journal note below.\n" +
		"Write one concern per line.\n\n" +
		"Note:\n{note}",

	KindAdvice: "Provide financial advice for the following concerns: {concerns}.",

	KindSummary: "Generate a budget breakdown for income: {income} and expenses: {expenses}.",

	KindFormat: "Rewrite the following text so it reads clearly for the person who wrote the journal.\n" +
		"Keep every figure, do not add new information and answer with plain text only.\n\n" +
		"{input}",
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render fills the named placeholders of the kind's template from vars.
// Substituted values are never re-scanned for placeholders.
func Render(kind Kind, vars map[string]string) (string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("Render: %w: %q", ErrUnknownPrompt, kind)
	}

	for _, match := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if _, ok := vars[match[1]]; !ok {
			return "", fmt.Errorf("Render %s: %w: %q", kind, ErrMissingVariable, match[1])
		}
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(placeholder string) string {
		return vars[placeholder[1:len(placeholder)-1]]
	}), nil
}

// Kinds returns every registered template kind.
func Kinds() []Kind {
	return []Kind{KindInsight, KindIncome, KindExpenses, KindConcerns, KindAdvice, KindSummary, KindFormat}
}
