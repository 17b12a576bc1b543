package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		vars    map[string]string
		want    []string
		wantErr error
	}{
		{
			name: "income note",
			kind: KindIncome,
			vars: map[string]string{"note": "I earn 4000 from salary"},
			want: []string{"I earn 4000 from salary", "Source: amount"},
		},
		{
			name: "summary uses both variables",
			kind: KindSummary,
			vars: map[string]string{"income": "Salary: 4000", "expenses": "Rent: 1000"},
			want: []string{"income: Salary: 4000", "expenses: Rent: 1000"},
		},
		{
			name: "extra variables are ignored",
			kind: KindAdvice,
			vars: map[string]string{"concerns": "savings", "note": "unused"},
			want: []string{"following concerns: savings."},
		},
		{
			name:    "unknown kind",
			kind:    Kind("poem"),
			vars:    map[string]string{},
			wantErr: ErrUnknownPrompt,
		},
		{
			name:    "missing variable",
			kind:    KindSummary,
			vars:    map[string]string{"income": "Salary: 4000"},
			wantErr: ErrMissingVariable,
		},
		{
			name:    "nil vars",
			kind:    KindFormat,
			wantErr: ErrMissingVariable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.kind, tt.vars)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render returned error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("expected %q in rendered prompt:\n%s", w, got)
				}
			}
		})
	}
}

func TestRenderDoesNotExpandPlaceholdersInValues(t *testing.T) {
	got, err := Render(KindFormat, map[string]string{"input": "keep {note} literally"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(got, "keep {note} literally") {
		t.Errorf("value was altered: %s", got)
	}
}

func TestEveryKindRenders(t *testing.T) {
	vars := map[string]string{
		"note": "n", "concerns": "c", "income": "i", "expenses": "e", "input": "x",
	}
	for _, kind := range Kinds() {
		got, err := Render(kind, vars)
		if err != nil {
			t.Errorf("%s: %v", kind, err)
			continue
		}
		if strings.Contains(got, "{") {
			t.Errorf("%s: unreplaced placeholder in %q", kind, got)
		}
	}
}

func TestCleanModelText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain answer \n", "plain answer"},
		{"```\nfenced\n```", "fenced"},
		{"```text\nSalary: 4000\nRent: 1000\n```\n", "Salary: 4000\nRent: 1000"},
		{"```", "```"},
	}
	for _, tt := range tests {
		if got := cleanModelText(tt.in); got != tt.want {
			t.Errorf("cleanModelText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
