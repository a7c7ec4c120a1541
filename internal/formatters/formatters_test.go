package formatters

import (
	"strings"
	"testing"

	"hirescope/internal/interview"
	"hirescope/internal/types"
)

func TestRegistryDispatch(t *testing.T) {
	questions := []interview.Question{{
		Question:  "How do you design an idempotent API?",
		Type:      "Technical",
		Evaluates: "API design",
		FollowUps: []string{"What about retries?"},
	}}
	match := types.MatchOutput{Success: true, JobMatches: []types.JobMatch{{
		Success:    true,
		JobDetails: types.JobDetails{ID: "resume-1", Title: "Backend Engineer", Company: "Initech"},
		Results: []types.MatchResult{{
			FileName:      "ada.pdf",
			CandidateName: "Ada Lovelace",
			Status:        "Matched",
			MatchScore:    72.5,
			MatchedSkills: []string{"Go"},
			Feedback:      "Solid Go background.",
		}},
	}}}
	parsed := types.ParsedResume{Success: true, FileName: "cv.pdf", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"questions text", questions, "text", []string{"1. How do you design", "Evaluates: API design", "- What about retries?"}},
		{"questions markdown", questions, "markdown", []string{"## 1. How do you design", "### Follow-ups"}},
		{"match text", match, "text", []string{"Backend Engineer at Initech", "Score: 72.50", "Matched skills: Go"}},
		{"match markdown", match, "markdown", []string{"| Ada Lovelace | ada.pdf | 72.50 | Matched | Go |"}},
		{"parsed text", parsed, "text", []string{"Name: Ada Lovelace", "Skills: none"}},
		{"parsed markdown", parsed, "markdown", []string{"- **Email:** ada@example.com"}},
		{"json fallback", map[string]int{"a": 1}, "json", []string{`"a": 1`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GlobalRegistry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	if _, err := GlobalRegistry.Format(types.ParsedResume{}, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := GlobalRegistry.Format(map[string]int{}, "text"); err == nil {
		t.Fatal("expected error for text output of an unregistered type")
	}
}
