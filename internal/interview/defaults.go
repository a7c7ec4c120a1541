package interview

import "hirescope/internal/extract"

// Defaults returned when the model output cannot be used. Each call builds a
// new value so handlers never share maps.

const (
	unparsedQuestion   = "The AI generated content in a format that couldn't be parsed. Please try again."
	noQuestions        = "No questions could be generated. Please try different parameters."
	heuristicAnswer    = "Please provide a comprehensive answer based on your experience."
	questionMarker     = "Question"
	defaultStage       = "middle"
	defaultFollowUps   = 3
	defaultQuestions   = 10
	maxQuestionCount   = 50
	maxFollowUpCount   = 10
	minComparedPeople  = 2
	evaluationFailed   = "Failed to parse evaluation"
	toneFailed         = "Failed to parse tone analysis"
	comparisonFailed   = "Failed to generate comparison report"
	neutralImpression  = "The response shows a neutral tone with basic communication skills."
	regenerateFollowUp = "Please try regenerating with different parameters."
)

var (
	defaultCriteria = []string{
		"Technical Competence",
		"Communication Skills",
		"Problem-Solving Ability",
		"Cultural Fit",
		"Leadership Potential",
	}
	defaultMetrics = []string{
		"Technical Skills",
		"Communication",
		"Problem Solving",
		"Cultural Fit",
		"Experience",
		"Leadership",
	}
)

func questionsDefault(raw string, excerpt int) []any {
	return []any{map[string]any{
		"question":              unparsedQuestion,
		"type":                  "General",
		"evaluates":             "N/A",
		"strong_answer_example": extract.Excerpt(raw, excerpt, "..."),
		"follow_ups":            []any{regenerateFollowUp},
	}}
}

func noQuestionsDefault() []any {
	return []any{map[string]any{
		"question":              noQuestions,
		"type":                  "General",
		"evaluates":             "N/A",
		"strong_answer_example": "N/A",
		"follow_ups":            []any{"N/A"},
	}}
}

// questionFromLine is the MarkerSplit template for prose answers that number
// their questions.
func questionFromLine(line string) map[string]any {
	return map[string]any{
		"question":              line,
		"type":                  "General",
		"evaluates":             "General skills",
		"strong_answer_example": heuristicAnswer,
		"follow_ups": []any{
			"Could you elaborate more on that?",
			"What specific example can you share?",
		},
	}
}

func followUpsDefault() []any {
	return []any{
		map[string]any{"follow_up_question": "Could you elaborate more on your experience?", "purpose": "Get more detailed information"},
		map[string]any{"follow_up_question": "What specific challenges did you face during this?", "purpose": "Assess problem-solving skills"},
		map[string]any{"follow_up_question": "How did this experience change your approach?", "purpose": "Evaluate self-reflection and growth"},
	}
}

func suggestionsDefault() map[string]any {
	return map[string]any{
		"next_questions": []any{
			"Ask about specific challenges they've faced in this role",
			"Inquire about their experience with relevant technologies/tools",
			"Ask about their teamwork and collaboration style",
		},
		"uncovered_areas": []any{
			"Leadership experience",
			"Problem-solving approach",
		},
		"probe_deeper": []any{
			"Get more specific examples",
			"Ask about measurable results",
		},
	}
}

func evaluationDefault(raw string, excerpt int) map[string]any {
	return map[string]any{
		"error":        evaluationFailed,
		"raw_response": extract.Excerpt(raw, excerpt, ""),
	}
}

func toneDefault() map[string]any {
	return map[string]any{
		"error":              toneFailed,
		"overall_impression": neutralImpression,
	}
}

func comparisonDefault(raw string, excerpt int) map[string]any {
	return map[string]any{
		"error":        comparisonFailed,
		"raw_response": extract.Excerpt(raw, excerpt, ""),
	}
}
