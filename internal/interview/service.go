// Package interview implements the interview assistant operations. Every
// operation builds a prompt, asks the Generator for free text and recovers
// the expected JSON from it, falling back to a fixed default.
package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hirescope/internal/ai"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/extract"
	"hirescope/internal/feedback"
	"hirescope/internal/types"
)

// Generator produces raw model text. *ai.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (ai.Completion, error)
}

// Recorder is told how each extraction ended.
type Recorder interface {
	RecordExtraction(ctx context.Context, operation string, result extract.Result)
}

// Service runs the interview operations.
type Service struct {
	gen       Generator
	store     feedback.Store
	recorder  Recorder
	logger    *errors.Logger
	catalogue Catalogue
	now       func() time.Time

	prompts         map[string]string
	maxTokens       map[string]int32
	questionExcerpt int
	reportExcerpt   int

	questions *extract.Extractor
	arrays    *extract.Extractor
	objects   *extract.Extractor
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder reports extraction outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithFeedbackStore replaces the in-memory feedback store.
func WithFeedbackStore(store feedback.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithClock is used by tests to fix feedback IDs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the operations to gen using the prompt overrides, token
// limits and extraction settings in cfg.
func NewService(gen Generator, cfg *config.Config, logger *errors.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = errors.Discard()
	}

	repair := extract.WithRepair(cfg.Extraction.RepairJSON)
	s := &Service{
		gen:             gen,
		store:           feedback.NewMemoryStore(),
		logger:          logger,
		catalogue:       Templates(),
		now:             time.Now,
		prompts:         make(map[string]string),
		maxTokens:       make(map[string]int32),
		questionExcerpt: cfg.Extraction.QuestionExcerpt,
		reportExcerpt:   cfg.Extraction.ReportExcerpt,
		questions: extract.New(extract.ArrayOfObjectsShape, repair,
			extract.WithHeuristic(extract.MarkerSplit{Marker: questionMarker, Build: questionFromLine})),
		arrays:  extract.New(extract.ArrayOfObjectsShape, repair),
		objects: extract.New(extract.ObjectShape, repair),
	}
	if s.questionExcerpt <= 0 {
		s.questionExcerpt = 500
	}
	if s.reportExcerpt <= 0 {
		s.reportExcerpt = 1000
	}

	defaults := map[string]string{
		config.OpQuestions:   questionsPrompt,
		config.OpFollowUps:   followUpsPrompt,
		config.OpSuggestions: suggestionsPrompt,
		config.OpEvaluation:  evaluationPrompt,
		config.OpTone:        tonePrompt,
		config.OpComparison:  comparisonPrompt,
	}
	for op, prompt := range defaults {
		if override := cfg.Prompt(op); override != "" {
			prompt = override
		}
		s.prompts[op] = prompt
		if mt := cfg.ForOperation(op).MaxTokens; mt != nil {
			s.maxTokens[op] = *mt
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Templates returns the role, industry and level catalogue.
func (s *Service) Templates() Catalogue {
	return s.catalogue
}

// generate asks the model and extracts the answer. A generator error is
// logged and treated as an empty answer, so the caller's default is returned.
func (s *Service) generate(ctx context.Context, op string, prompt string, ex *extract.Extractor, def func(raw string) any) extract.Result {
	raw := ""
	completion, err := s.gen.Generate(ctx, ai.Request{
		Operation: op,
		Prompt:    prompt,
		MaxTokens: s.maxTokens[op],
	})
	if err != nil {
		s.logger.LogError(err, "Generation failed, returning default", "operation", op)
	} else {
		raw = completion.Text
	}

	result := ex.Extract(raw, def(raw))
	if !result.IsParsed() {
		s.logger.Warn("Model output could not be parsed",
			"operation", op,
			"output_length", len(raw))
	} else {
		s.logger.Debug("Model output parsed", "operation", op, "strategy", result.Strategy)
	}
	if s.recorder != nil {
		s.recorder.RecordExtraction(ctx, op, result)
	}
	return result
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(errors.CodeMissingField, field+" is required", nil).
			WithField("field", field)
	}
	return nil
}

// GenerateQuestions returns an array of question objects.
func (s *Service) GenerateQuestions(ctx context.Context, in types.QuestionsInput) (extract.Result, error) {
	for _, f := range []struct{ name, value string }{
		{"job_role", in.JobRole},
		{"industry", in.Industry},
		{"experience_level", in.ExperienceLevel},
	} {
		if err := required(f.name, f.value); err != nil {
			return extract.Result{}, err
		}
	}
	count := in.QuestionCount
	if count == 0 {
		count = defaultQuestions
	}
	if count < 1 || count > maxQuestionCount {
		return extract.Result{}, errors.NewValidationError(errors.CodeInvalidRequest,
			fmt.Sprintf("question_count must be between 1 and %d", maxQuestionCount), nil)
	}

	background := strings.TrimSpace(in.CandidateBackground)
	if background == "" {
		background = "Not provided"
	}
	prompt := fmt.Sprintf(s.prompts[config.OpQuestions],
		count, in.ExperienceLevel, in.JobRole, in.Industry, background,
		s.catalogue.roleContext(in.JobRole, in.Industry, in.ExperienceLevel))

	result := s.generate(ctx, config.OpQuestions, prompt, s.questions, func(raw string) any {
		return questionsDefault(raw, s.questionExcerpt)
	})
	if items, ok := result.Value.([]any); ok && len(items) == 0 {
		result = extract.Result{Value: noQuestionsDefault(), Outcome: extract.Fallback, Strategy: extract.StrategyDefault}
	}
	return result, nil
}

// GenerateFollowUps suggests follow-up questions for one answer.
func (s *Service) GenerateFollowUps(ctx context.Context, in types.FollowUpInput) (extract.Result, error) {
	if err := required("question", in.Question); err != nil {
		return extract.Result{}, err
	}
	if err := required("answer", in.Answer); err != nil {
		return extract.Result{}, err
	}
	count := in.Count
	if count == 0 {
		count = defaultFollowUps
	}
	if count < 1 || count > maxFollowUpCount {
		return extract.Result{}, errors.NewValidationError(errors.CodeInvalidRequest,
			fmt.Sprintf("count must be between 1 and %d", maxFollowUpCount), nil)
	}

	prompt := fmt.Sprintf(s.prompts[config.OpFollowUps], in.Question, in.Answer, count)
	return s.generate(ctx, config.OpFollowUps, prompt, s.arrays, func(string) any {
		return followUpsDefault()
	}), nil
}

// RealtimeSuggestions advises the interviewer on what to ask next.
func (s *Service) RealtimeSuggestions(ctx context.Context, in types.SuggestionsInput) (extract.Result, error) {
	if err := required("job_role", in.JobRole); err != nil {
		return extract.Result{}, err
	}
	if err := required("discussion_context", in.DiscussionContext); err != nil {
		return extract.Result{}, err
	}
	stage := strings.TrimSpace(in.InterviewStage)
	if stage == "" {
		stage = defaultStage
	}

	prompt := fmt.Sprintf(s.prompts[config.OpSuggestions], in.JobRole, stage, in.DiscussionContext)
	return s.generate(ctx, config.OpSuggestions, prompt, s.objects, func(string) any {
		return suggestionsDefault()
	}), nil
}

// EvaluateCandidate scores a candidate's answers against criteria.
func (s *Service) EvaluateCandidate(ctx context.Context, in types.EvaluationInput) (extract.Result, error) {
	if err := required("job_role", in.JobRole); err != nil {
		return extract.Result{}, err
	}
	if len(in.CandidateResponses) == 0 {
		return extract.Result{}, errors.NewValidationError(errors.CodeMissingField,
			"candidate_responses must contain at least one response", nil)
	}
	criteria := in.EvaluationCriteria
	if len(criteria) == 0 {
		criteria = defaultCriteria
	}

	var responses strings.Builder
	for i, r := range in.CandidateResponses {
		fmt.Fprintf(&responses, "Q%d: %s\nA%d: %s\n\n", i+1, r.Question, i+1, r.Answer)
	}

	prompt := fmt.Sprintf(s.prompts[config.OpEvaluation], in.JobRole, responses.String(), strings.Join(criteria, ", "))
	return s.generate(ctx, config.OpEvaluation, prompt, s.objects, func(raw string) any {
		return evaluationDefault(raw, s.reportExcerpt)
	}), nil
}

// AnalyzeTone rates the tone and language of one answer.
func (s *Service) AnalyzeTone(ctx context.Context, in types.ToneInput) (extract.Result, error) {
	if err := required("candidate_response", in.CandidateResponse); err != nil {
		return extract.Result{}, err
	}

	prompt := fmt.Sprintf(s.prompts[config.OpTone], in.CandidateResponse)
	return s.generate(ctx, config.OpTone, prompt, s.objects, func(string) any {
		return toneDefault()
	}), nil
}

// CompareCandidates ranks two or more candidates.
func (s *Service) CompareCandidates(ctx context.Context, in types.ComparisonInput) (extract.Result, error) {
	if len(in.Candidates) < minComparedPeople {
		return extract.Result{}, errors.NewValidationError(errors.CodeInvalidRequest,
			"At least two candidates are required for comparison", nil)
	}
	metrics := in.Metrics
	if len(metrics) == 0 {
		metrics = defaultMetrics
	}

	prompt := fmt.Sprintf(s.prompts[config.OpComparison], formatCandidates(in.Candidates), strings.Join(metrics, ", "))
	return s.generate(ctx, config.OpComparison, prompt, s.objects, func(raw string) any {
		return comparisonDefault(raw, s.reportExcerpt)
	}), nil
}

func formatCandidates(candidates []types.CandidateSummary) string {
	var b strings.Builder
	for i, c := range candidates {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("Candidate %d", i+1)
		}
		position := c.Position
		if position == "" {
			position = "Not specified"
		}
		summary := c.Feedback
		if summary == "" {
			summary = "No feedback provided"
		}

		fmt.Fprintf(&b, "Candidate %d: %s\n", i+1, name)
		fmt.Fprintf(&b, "Position: %s\n", position)
		fmt.Fprintf(&b, "Feedback Summary: %s\n", summary)
		if len(c.Scores) > 0 {
			b.WriteString("Scores:\n")
			for _, score := range c.Scores {
				criterion := score.Criterion
				if criterion == "" {
					criterion = "Criterion"
				}
				value := score.Score
				if value == nil {
					value = "N/A"
				}
				fmt.Fprintf(&b, "- %s: %v/5\n", criterion, value)
			}
		}
		if len(c.Strengths) > 0 {
			fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(c.Strengths, ", "))
		}
		if len(c.Weaknesses) > 0 {
			fmt.Fprintf(&b, "Areas for Improvement: %s\n", strings.Join(c.Weaknesses, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
