package categorize

import (
	"errors"
	"testing"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare array",
			input: `[{"id":1,"category":"Groceries","confidence":0.9}]`,
			want:  `[{"id":1,"category":"Groceries","confidence":0.9}]`,
		},
		{
			name:  "json fence",
			input: "```json\n[{\"id\":1}]\n```",
			want:  `[{"id":1}]`,
		},
		{
			name:  "plain fence",
			input: "```\n[{\"id\":1}]\n```",
			want:  `[{"id":1}]`,
		},
		{
			name:  "surrounding prose",
			input: "Here are the results:\n[{\"id\":1}]\nLet me know if this helps.",
			want:  `[{"id":1}]`,
		},
		{
			name:  "leading and trailing whitespace",
			input: "\n\n  [{\"id\":1}]  \n",
			want:  `[{"id":1}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.input); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments("```json\n[{\"id\":1,\"category\":\"Salary\",\"confidence\":0.97},{\"id\":2,\"category\":\"Gas\",\"confidence\":0.8}]\n```")
	if err != nil {
		t.Fatalf("parseAssignments() error = %v", err)
	}
	if len(got) != 2 || got[0].Category != "Salary" || got[1].ID != 2 {
		t.Errorf("parseAssignments() = %+v", got)
	}
}

func TestParseAssignmentsMalformed(t *testing.T) {
	tests := []string{
		"I could not categorize these transactions.",
		`{"id":1,"category":"Salary"}`,
		`[{"id":"one"}]`,
		"",
	}

	for _, input := range tests {
		if _, err := parseAssignments(input); !errors.Is(err, ErrBadOracleResponse) {
			t.Errorf("parseAssignments(%q) error = %v, want ErrBadOracleResponse", input, err)
		}
	}
}
