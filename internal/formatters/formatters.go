package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"hirescope/internal/interview"
	"hirescope/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry holds the built-in formatters.
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", typeQuestions, &QuestionsTextFormatter{})
	registry.RegisterFormatter("markdown", typeQuestions, &QuestionsMarkdownFormatter{})
	registry.RegisterFormatter("text", typeMatch, &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", typeMatch, &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", typeParsed, &ParsedResumeTextFormatter{})
	registry.RegisterFormatter("markdown", typeParsed, &ParsedResumeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

const (
	typeQuestions = "Questions"
	typeMatch     = "MatchOutput"
	typeParsed    = "ParsedResume"
)

func getDataType(data any) string {
	switch data.(type) {
	case []interview.Question:
		return typeQuestions
	case types.MatchOutput:
		return typeMatch
	case types.ParsedResume:
		return typeParsed
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// QuestionsTextFormatter renders generated interview questions as plain text.
type QuestionsTextFormatter struct{}

func (f *QuestionsTextFormatter) Format(data any) (string, error) {
	questions, ok := data.([]interview.Question)
	if !ok {
		return "", fmt.Errorf("expected []interview.Question, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== INTERVIEW QUESTIONS ===\n")
	for i, q := range questions {
		fmt.Fprintf(&output, "\n%d. %s\n", i+1, q.Question)
		fmt.Fprintf(&output, "   Type: %s\n", q.Type)
		fmt.Fprintf(&output, "   Evaluates: %s\n", q.Evaluates)
		if q.StrongAnswerExample != "" {
			fmt.Fprintf(&output, "   Strong answer: %s\n", q.StrongAnswerExample)
		}
		for _, fu := range q.FollowUps {
			fmt.Fprintf(&output, "   - %s\n", fu)
		}
	}
	return output.String(), nil
}

func (f *QuestionsTextFormatter) SupportedType() string {
	return typeQuestions
}

// QuestionsMarkdownFormatter renders generated interview questions as markdown.
type QuestionsMarkdownFormatter struct{}

func (f *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	questions, ok := data.([]interview.Question)
	if !ok {
		return "", fmt.Errorf("expected []interview.Question, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Interview Questions\n")
	for i, q := range questions {
		fmt.Fprintf(&output, "\n## %d. %s\n\n", i+1, q.Question)
		fmt.Fprintf(&output, "**Type:** %s  \n**Evaluates:** %s\n", q.Type, q.Evaluates)
		if q.StrongAnswerExample != "" {
			fmt.Fprintf(&output, "\n> %s\n", q.StrongAnswerExample)
		}
		if len(q.FollowUps) > 0 {
			output.WriteString("\n### Follow-ups\n\n")
			for _, fu := range q.FollowUps {
				fmt.Fprintf(&output, "- %s\n", fu)
			}
		}
	}
	return output.String(), nil
}

func (f *QuestionsMarkdownFormatter) SupportedType() string {
	return typeQuestions
}

// MatchTextFormatter renders match results as plain text.
type MatchTextFormatter struct{}

func (f *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchOutput)
	if !ok {
		return "", fmt.Errorf("expected MatchOutput, got %T", data)
	}

	var output strings.Builder
	for _, job := range result.JobMatches {
		fmt.Fprintf(&output, "=== %s at %s (%s) ===\n", job.JobDetails.Title, job.JobDetails.Company, job.JobDetails.ID)
		for _, r := range job.Results {
			output.WriteString("\n")
			if r.ProcessingError {
				fmt.Fprintf(&output, "%s: %s\n", r.FileName, r.Feedback)
				continue
			}
			fmt.Fprintf(&output, "%s (%s)\n", displayName(r), r.FileName)
			fmt.Fprintf(&output, "Score: %.2f  Status: %s\n", r.MatchScore, r.Status)
			fmt.Fprintf(&output, "Matched skills: %s\n", joinOrNone(r.MatchedSkills))
			fmt.Fprintf(&output, "Feedback: %s\n", r.Feedback)
		}
	}
	return output.String(), nil
}

func (f *MatchTextFormatter) SupportedType() string {
	return typeMatch
}

// MatchMarkdownFormatter renders match results as a markdown table per job.
type MatchMarkdownFormatter struct{}

func (f *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchOutput)
	if !ok {
		return "", fmt.Errorf("expected MatchOutput, got %T", data)
	}

	var output strings.Builder
	for _, job := range result.JobMatches {
		fmt.Fprintf(&output, "# %s at %s\n\n", job.JobDetails.Title, job.JobDetails.Company)
		output.WriteString("| Candidate | File | Score | Status | Matched skills |\n")
		output.WriteString("|---|---|---|---|---|\n")
		for _, r := range job.Results {
			fmt.Fprintf(&output, "| %s | %s | %.2f | %s | %s |\n",
				displayName(r), r.FileName, r.MatchScore, r.Status, joinOrNone(r.MatchedSkills))
		}
		output.WriteString("\n## Feedback\n\n")
		for _, r := range job.Results {
			fmt.Fprintf(&output, "- **%s**: %s\n", displayName(r), r.Feedback)
		}
	}
	return output.String(), nil
}

func (f *MatchMarkdownFormatter) SupportedType() string {
	return typeMatch
}

// ParsedResumeTextFormatter renders parsed contact details as plain text.
type ParsedResumeTextFormatter struct{}

func (f *ParsedResumeTextFormatter) Format(data any) (string, error) {
	p, ok := data.(types.ParsedResume)
	if !ok {
		return "", fmt.Errorf("expected ParsedResume, got %T", data)
	}
	var output strings.Builder
	fmt.Fprintf(&output, "=== %s ===\n", p.FileName)
	fmt.Fprintf(&output, "Name: %s\n", strings.TrimSpace(p.FirstName+" "+p.LastName))
	fmt.Fprintf(&output, "Email: %s\n", p.Email)
	fmt.Fprintf(&output, "Skills: %s\n", joinOrNone(p.Skills))
	return output.String(), nil
}

func (f *ParsedResumeTextFormatter) SupportedType() string {
	return typeParsed
}

// ParsedResumeMarkdownFormatter renders parsed contact details as markdown.
type ParsedResumeMarkdownFormatter struct{}

func (f *ParsedResumeMarkdownFormatter) Format(data any) (string, error) {
	p, ok := data.(types.ParsedResume)
	if !ok {
		return "", fmt.Errorf("expected ParsedResume, got %T", data)
	}
	var output strings.Builder
	fmt.Fprintf(&output, "# %s\n\n", p.FileName)
	fmt.Fprintf(&output, "- **Name:** %s\n", strings.TrimSpace(p.FirstName+" "+p.LastName))
	fmt.Fprintf(&output, "- **Email:** %s\n", p.Email)
	fmt.Fprintf(&output, "- **Skills:** %s\n", joinOrNone(p.Skills))
	return output.String(), nil
}

func (f *ParsedResumeMarkdownFormatter) SupportedType() string {
	return typeParsed
}

func displayName(r types.MatchResult) string {
	if r.CandidateName != "" {
		return r.CandidateName
	}
	return r.FileName
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
