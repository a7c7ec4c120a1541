package interview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"hirescope/internal/ai"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/extract"
	"hirescope/internal/feedback"
	"hirescope/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text string
	err  error
	reqs []ai.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req ai.Request) (ai.Completion, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return ai.Completion{}, f.err
	}
	return ai.Completion{Text: f.text}, nil
}

type recordedExtraction struct {
	operation string
	outcome   extract.Outcome
}

type fakeRecorder struct{ got []recordedExtraction }

func (r *fakeRecorder) RecordExtraction(_ context.Context, op string, result extract.Result) {
	r.got = append(r.got, recordedExtraction{op, result.Outcome})
}

func testConfig() *config.Config {
	maxTokens := int32(2500)
	return &config.Config{
		AI: config.AIConfig{
			MaxTokens: 2000,
			Operations: map[string]config.OperationAIConfig{
				config.OpEvaluation: {MaxTokens: &maxTokens},
			},
		},
		Extraction: config.ExtractionConfig{QuestionExcerpt: 500, ReportExcerpt: 1000},
	}
}

func newTestService(gen Generator, opts ...Option) *Service {
	return NewService(gen, testConfig(), errors.Discard(), opts...)
}

var (
	questionsInput   = types.QuestionsInput{JobRole: "Software Engineer", Industry: "Finance", ExperienceLevel: "Senior"}
	followUpInput    = types.FollowUpInput{Question: "Why Go?", Answer: "Simplicity."}
	suggestionsInput = types.SuggestionsInput{JobRole: "Data Scientist", DiscussionContext: "We talked about pandas."}
	evaluationInput  = types.EvaluationInput{JobRole: "Product Manager", CandidateResponses: []types.CandidateResponse{{Question: "Q", Answer: "A"}}}
	toneInput        = types.ToneInput{CandidateResponse: "I led the migration."}
	comparisonInput  = types.ComparisonInput{Candidates: []types.CandidateSummary{{Name: "Ada"}, {Name: "Linus"}}}
)

func runAll(t *testing.T, svc *Service) map[string]extract.Result {
	t.Helper()
	ctx := context.Background()
	results := make(map[string]extract.Result)
	var err error

	results[config.OpQuestions], err = svc.GenerateQuestions(ctx, questionsInput)
	require.NoError(t, err)
	results[config.OpFollowUps], err = svc.GenerateFollowUps(ctx, followUpInput)
	require.NoError(t, err)
	results[config.OpSuggestions], err = svc.RealtimeSuggestions(ctx, suggestionsInput)
	require.NoError(t, err)
	results[config.OpEvaluation], err = svc.EvaluateCandidate(ctx, evaluationInput)
	require.NoError(t, err)
	results[config.OpTone], err = svc.AnalyzeTone(ctx, toneInput)
	require.NoError(t, err)
	results[config.OpComparison], err = svc.CompareCandidates(ctx, comparisonInput)
	require.NoError(t, err)
	return results
}

func TestOperationsFallBackWhenGeneratorFails(t *testing.T) {
	svc := newTestService(&fakeGenerator{err: stderrors.New("quota exceeded")})
	results := runAll(t, svc)

	want := map[string]any{
		config.OpQuestions:   questionsDefault("", 500),
		config.OpFollowUps:   followUpsDefault(),
		config.OpSuggestions: suggestionsDefault(),
		config.OpEvaluation:  evaluationDefault("", 1000),
		config.OpTone:        toneDefault(),
		config.OpComparison:  comparisonDefault("", 1000),
	}
	for op, result := range results {
		t.Run(op, func(t *testing.T) {
			assert.Equal(t, extract.Fallback, result.Outcome)
			assert.Equal(t, extract.StrategyDefault, result.Strategy)
			assert.Equal(t, want[op], result.Value)
		})
	}
}

func TestOperationsFallBackOnProse(t *testing.T) {
	prose := "I'm sorry, I can't help with that request right now."
	svc := newTestService(&fakeGenerator{text: prose})
	results := runAll(t, svc)

	for op, result := range results {
		assert.False(t, result.IsParsed(), op)
	}

	questions := results[config.OpQuestions].Value.([]any)
	require.Len(t, questions, 1)
	first := questions[0].(map[string]any)
	assert.Equal(t, unparsedQuestion, first["question"])
	assert.Equal(t, prose, first["strong_answer_example"])

	evaluation := results[config.OpEvaluation].Value.(map[string]any)
	assert.Equal(t, evaluationFailed, evaluation["error"])
	assert.Equal(t, prose, evaluation["raw_response"])
}

func TestGenerateQuestionsParsesArrayInProse(t *testing.T) {
	gen := &fakeGenerator{text: `Here are your questions:
[
  {"question": "What is a goroutine?", "type": "Technical", "evaluates": "Go", "strong_answer_example": "...", "follow_ups": []},
  {"question": "Tell me about a conflict.", "type": "Behavioral", "evaluates": "Teamwork", "strong_answer_example": "...", "follow_ups": []}
]
Good luck!`}
	recorder := &fakeRecorder{}
	svc := newTestService(gen, WithRecorder(recorder))

	result, err := svc.GenerateQuestions(context.Background(), questionsInput)
	require.NoError(t, err)

	assert.True(t, result.IsParsed())
	assert.Equal(t, extract.StrategyGreedyPattern, result.Strategy)
	assert.Len(t, result.Value, 2)
	assert.Equal(t, []recordedExtraction{{config.OpQuestions, extract.Parsed}}, recorder.got)
}

func TestGenerateQuestionsMarkerHeuristic(t *testing.T) {
	gen := &fakeGenerator{text: "Sure.\nQuestion 1: What is polymorphism?\nQuestion 2: Explain REST.\r\n"}
	svc := newTestService(gen)

	result, err := svc.GenerateQuestions(context.Background(), questionsInput)
	require.NoError(t, err)

	assert.Equal(t, extract.StrategyMarkerSplit, result.Strategy)
	items := result.Value.([]any)
	require.Len(t, items, 2)
	assert.Equal(t, questionFromLine("Question 1: What is polymorphism?"), items[0])
	assert.Equal(t, "Question 2: Explain REST.", items[1].(map[string]any)["question"])
}

func TestGenerateQuestionsEmptyArray(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "[]"})

	result, err := svc.GenerateQuestions(context.Background(), questionsInput)
	require.NoError(t, err)

	assert.Equal(t, extract.Fallback, result.Outcome)
	assert.Equal(t, noQuestionsDefault(), result.Value)
}

func TestGenerateQuestionsPrompt(t *testing.T) {
	gen := &fakeGenerator{text: "[]"}
	svc := newTestService(gen)

	in := questionsInput
	in.QuestionCount = 4
	_, err := svc.GenerateQuestions(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, gen.reqs, 1)
	req := gen.reqs[0]
	assert.Equal(t, config.OpQuestions, req.Operation)
	assert.Equal(t, int32(2000), req.MaxTokens)
	assert.Contains(t, req.Prompt, "Generate 4 interview questions for a Senior Software Engineer position in the Finance industry.")
	assert.Contains(t, req.Prompt, "Not provided")
	assert.Contains(t, req.Prompt, "Key skills for this role: Programming languages")
	assert.Contains(t, req.Prompt, "Industry concerns: Security")
	assert.Contains(t, req.Prompt, "Expected at this level (6+ years)")
	assert.NotContains(t, req.Prompt, "%!")
}

func TestPromptOverride(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Prompts = map[string]string{config.OpTone: "Tone please: %[1]s"}
	gen := &fakeGenerator{text: `{"overall_impression":"confident"}`}
	svc := NewService(gen, cfg, errors.Discard())

	result, err := svc.AnalyzeTone(context.Background(), toneInput)
	require.NoError(t, err)

	assert.Equal(t, "Tone please: I led the migration.", gen.reqs[0].Prompt)
	assert.Equal(t, map[string]any{"overall_impression": "confident"}, result.Value)
}

func TestEvaluationUsesOperationTokens(t *testing.T) {
	gen := &fakeGenerator{text: `{"scores": []}`}
	svc := newTestService(gen)

	in := evaluationInput
	in.CandidateResponses = append(in.CandidateResponses, types.CandidateResponse{Question: "Q2", Answer: "A2"})
	_, err := svc.EvaluateCandidate(context.Background(), in)
	require.NoError(t, err)

	req := gen.reqs[0]
	assert.Equal(t, int32(2500), req.MaxTokens)
	assert.Contains(t, req.Prompt, "Q1: Q\nA1: A\n\nQ2: Q2\nA2: A2\n")
	assert.Contains(t, req.Prompt, strings.Join(defaultCriteria, ", "))
}

func TestEvaluationDefaultTruncatesRawResponse(t *testing.T) {
	raw := "not json " + strings.Repeat("é", 2000)
	svc := newTestService(&fakeGenerator{text: raw})

	result, err := svc.EvaluateCandidate(context.Background(), evaluationInput)
	require.NoError(t, err)

	excerpt := result.Value.(map[string]any)["raw_response"].(string)
	assert.Equal(t, 1000, len([]rune(excerpt)))
	assert.True(t, strings.HasPrefix(raw, excerpt))
}

func TestComparisonPromptFormatsCandidates(t *testing.T) {
	gen := &fakeGenerator{text: `{"summary":"Ada"}`}
	svc := newTestService(gen)

	in := types.ComparisonInput{
		Candidates: []types.CandidateSummary{
			{Name: "Ada", Position: "Engineer", Scores: []types.CriterionScore{{Criterion: "Go", Score: 5}}, Strengths: []string{"focus", "rigor"}},
			{},
		},
		Metrics: []string{"Depth"},
	}
	_, err := svc.CompareCandidates(context.Background(), in)
	require.NoError(t, err)

	prompt := gen.reqs[0].Prompt
	assert.Contains(t, prompt, "Candidate 1: Ada\nPosition: Engineer\nFeedback Summary: No feedback provided\nScores:\n- Go: 5/5\nStrengths: focus, rigor\n")
	assert.Contains(t, prompt, "Candidate 2: Candidate 2\nPosition: Not specified\n")
	assert.Contains(t, prompt, "these key metrics:\nDepth")
}

func TestValidation(t *testing.T) {
	svc := newTestService(&fakeGenerator{text: "{}"})
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		message string
	}{
		{"questions without role", func() error {
			_, err := svc.GenerateQuestions(ctx, types.QuestionsInput{Industry: "x", ExperienceLevel: "y"})
			return err
		}, "job_role is required"},
		{"questions count too high", func() error {
			in := questionsInput
			in.QuestionCount = 51
			_, err := svc.GenerateQuestions(ctx, in)
			return err
		}, "question_count must be between 1 and 50"},
		{"follow-up without answer", func() error {
			_, err := svc.GenerateFollowUps(ctx, types.FollowUpInput{Question: "q", Answer: "  "})
			return err
		}, "answer is required"},
		{"suggestions without context", func() error {
			_, err := svc.RealtimeSuggestions(ctx, types.SuggestionsInput{JobRole: "x"})
			return err
		}, "discussion_context is required"},
		{"evaluation without responses", func() error {
			_, err := svc.EvaluateCandidate(ctx, types.EvaluationInput{JobRole: "x"})
			return err
		}, "at least one response"},
		{"tone without response", func() error {
			_, err := svc.AnalyzeTone(ctx, types.ToneInput{})
			return err
		}, "candidate_response is required"},
		{"comparison with one candidate", func() error {
			_, err := svc.CompareCandidates(ctx, types.ComparisonInput{Candidates: []types.CandidateSummary{{Name: "a"}}})
			return err
		}, "At least two candidates are required for comparison"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, errors.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Message, tt.message)
		})
	}
}

type failingStore struct{ feedback.MemoryStore }

func (*failingStore) Save(context.Context, feedback.Record) error {
	return stderrors.New("disk full")
}

func TestSaveFeedback(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	store := feedback.NewMemoryStore()
	svc := newTestService(&fakeGenerator{}, WithFeedbackStore(store), WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	saved, err := svc.SaveInterviewerFeedback(ctx, json.RawMessage(`{"rating":5}`))
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackSaved{Success: true, FeedbackID: "feedback_1700000000", Message: "Feedback saved successfully"}, saved)

	saved, err = svc.SaveCandidateFeedback(ctx, json.RawMessage(`{"experience":"good"}`))
	require.NoError(t, err)
	assert.Equal(t, "candidate_1700000000", saved.FeedbackID)
	assert.Equal(t, "Candidate feedback saved successfully", saved.Message)

	records, err := svc.ListFeedback(ctx, feedback.KindInterviewer, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"rating":5}`, string(records[0].Payload))

	_, err = svc.SaveInterviewerFeedback(ctx, json.RawMessage(`{broken`))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindValidation, appErr.Kind)
}

func TestSaveFeedbackStoreFailure(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, WithFeedbackStore(&failingStore{}))

	saved, err := svc.SaveCandidateFeedback(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPStatus())
	assert.False(t, saved.Success)
	assert.Equal(t, "disk full", saved.Error)
	assert.Equal(t, "Failed to save candidate feedback", saved.Message)
}

func TestTemplatesLookupIsCaseInsensitive(t *testing.T) {
	catalogue := Templates()
	assert.Len(t, catalogue.Roles, 3)
	assert.Contains(t, catalogue.roleContext("software engineer", "", ""), "Key skills for this role")
	assert.Empty(t, catalogue.roleContext("Astronaut", "Space", "Legend"))
}
