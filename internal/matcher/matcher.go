// Package matcher scores resumes against a job description by skill overlap
// and semantic similarity, and writes candidate feedback with the model.
package matcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hirescope/internal/ai"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/extract"
	"hirescope/internal/types"
)

// Generator produces raw model text. *ai.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (ai.Completion, error)
}

// Embedder turns texts into vectors. *ai.Service satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Recorder is told about every scored resume.
type Recorder interface {
	RecordMatch(ctx context.Context, status string, score float64)
}

// Matcher runs resume matching. It is safe for concurrent use.
type Matcher struct {
	gen      Generator
	embedder Embedder
	catalog  *Catalog
	recorder Recorder
	logger   *errors.Logger
	now      func() time.Time

	weights        Weights
	concurrency    int
	defaultTitle   string
	defaultCompany string

	feedbackPrompt string
	followUpPrompt string
	maxTokens      map[string]int32

	followUps *extract.Extractor
	jdVectors singleflight.Group
}

// Option customises a Matcher.
type Option func(*Matcher)

// WithEmbedder enables embedding similarity. Without it a term-frequency
// cosine is used.
func WithEmbedder(e Embedder) Option {
	return func(m *Matcher) { m.embedder = e }
}

// WithRecorder reports scored resumes to r.
func WithRecorder(r Recorder) Option {
	return func(m *Matcher) { m.recorder = r }
}

// WithClock fixes the time used for IDs.
func WithClock(now func() time.Time) Option {
	return func(m *Matcher) { m.now = now }
}

// New builds a Matcher from the matcher and AI sections of cfg. A nil
// catalog means the default skills.
func New(gen Generator, catalog *Catalog, cfg *config.Config, logger *errors.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = errors.Discard()
	}
	if catalog == nil {
		catalog = NewCatalog(DefaultSkills)
	}

	m := &Matcher{
		gen:            gen,
		catalog:        catalog,
		logger:         logger,
		now:            time.Now,
		weights:        Weights{Skill: cfg.Matcher.SkillWeight, Semantic: cfg.Matcher.SemanticWeight},
		concurrency:    max(cfg.Matcher.Concurrency, 1),
		defaultTitle:   cfg.Matcher.DefaultTitle,
		defaultCompany: cfg.Matcher.DefaultCompany,
		feedbackPrompt: feedbackPrompt,
		followUpPrompt: followUpPrompt,
		maxTokens:      make(map[string]int32),
		followUps: extract.New(extract.ArrayOfObjectsShape,
			extract.WithHeuristic(numberedLines{}),
			extract.WithRepair(cfg.Extraction.RepairJSON)),
	}
	if p := cfg.Prompt(config.OpResumeFeedback); p != "" {
		m.feedbackPrompt = p
	}
	if p := cfg.Prompt(config.OpResumeFollowUp); p != "" {
		m.followUpPrompt = p
	}
	for _, op := range []string{config.OpResumeFeedback, config.OpResumeFollowUp} {
		if mt := cfg.ForOperation(op).MaxTokens; mt != nil {
			m.maxTokens[op] = *mt
		}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the skills catalogue in use.
func (m *Matcher) Catalog() *Catalog {
	return m.catalog
}

// Match scores every distinct, readable resume against jd. Results keep the
// order of resumes; a resume that cannot be processed yields an error item
// instead of failing the request.
func (m *Matcher) Match(ctx context.Context, jd Document, resumes []Document) (types.MatchOutput, error) {
	if len(resumes) == 0 {
		return types.MatchOutput{}, errors.NewValidationError(errors.CodeMissingField,
			"At least one resume is required.", nil)
	}
	if len(jd.Data) == 0 {
		return types.MatchOutput{}, errors.NewValidationError(errors.CodeMissingField,
			"A job description file is required.", nil)
	}

	valid := distinctSupported(resumes)
	if len(valid) == 0 {
		return types.MatchOutput{}, errors.NewValidationError(errors.CodeUnsupportedFile,
			"No valid resume files provided.", nil)
	}

	jdText, err := documentText(jd)
	if err != nil {
		return types.MatchOutput{}, err
	}
	info := ExtractJobInfo(jdText, m.defaultTitle, m.defaultCompany)
	jobSkills := m.catalog.ExtractSkills(jdText)

	m.logger.Info("Matching resumes",
		"job_title", info.Title,
		"resumes", len(valid),
		"job_skills", len(jobSkills))

	results := make([]types.MatchResult, len(valid))
	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, doc := range valid {
		g.Go(func() error {
			results[i] = m.scoreResume(ctx, doc, jdText, jobSkills)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return types.MatchOutput{}, errors.NewAIError(errors.CodeAITimeout, "matching was cancelled", err)
	}

	return types.MatchOutput{
		Success: true,
		JobMatches: []types.JobMatch{{
			Success: true,
			JobDetails: types.JobDetails{
				ID:      newID("resume", m.now()),
				Title:   info.Title,
				Company: info.Company,
			},
			Results: results,
		}},
	}, nil
}

// distinctSupported drops repeated file names and unreadable types.
func distinctSupported(docs []Document) []Document {
	seen := make(map[string]struct{}, len(docs))
	var out []Document
	for _, d := range docs {
		if !Supported(d.FileName) {
			continue
		}
		if _, dup := seen[d.FileName]; dup {
			continue
		}
		seen[d.FileName] = struct{}{}
		out = append(out, d)
	}
	return out
}

func documentText(doc Document) (string, error) {
	text, err := Text(doc.FileName, doc.Data)
	if err != nil {
		if stderrors.Is(err, ErrUnsupportedDocument) {
			return "", errors.NewDocumentError(errors.CodeUnsupportedFile,
				fmt.Sprintf("unsupported file type: %s", doc.FileName), err)
		}
		return "", errors.NewDocumentError(errors.CodeDocumentUnreadable,
			fmt.Sprintf("could not read %s", doc.FileName), err)
	}
	return strings.TrimSpace(text), nil
}

func (m *Matcher) scoreResume(ctx context.Context, doc Document, jdText string, jobSkills []string) types.MatchResult {
	id := newID("resume", m.now())
	text, err := documentText(doc)
	if err == nil && text == "" {
		err = fmt.Errorf("no text found in %s", doc.FileName)
	}
	if err != nil {
		m.logger.LogError(err, "Resume could not be processed", "file", doc.FileName)
		if m.recorder != nil {
			m.recorder.RecordMatch(ctx, StatusProcessingError, 0)
		}
		return types.MatchResult{
			ID:              id,
			FileName:        doc.FileName,
			CandidateName:   filepath.Base(doc.FileName),
			Skills:          []string{},
			MatchedSkills:   []string{},
			Status:          StatusProcessingError,
			Feedback:        unreadableResume,
			ProcessingError: true,
		}
	}

	contact := ExtractContact(text)
	name := contact.FullName()
	if name == "" {
		name = filepath.Base(doc.FileName)
	}

	skills := m.catalog.ExtractSkills(text)
	matched := intersect(skills, jobSkills)
	sort.Strings(matched)
	if matched == nil {
		matched = []string{}
	}

	score := m.weights.Combine(SkillScore(skills, jobSkills), m.semantic(ctx, text, jdText))
	status := Status(score)
	if m.recorder != nil {
		m.recorder.RecordMatch(ctx, status, score)
	}

	return types.MatchResult{
		ID:            id,
		FileName:      doc.FileName,
		CandidateName: name,
		Email:         contact.Email,
		Skills:        skills,
		Status:        status,
		MatchScore:    score,
		MatchedSkills: matched,
		Feedback:      m.Feedback(ctx, score, jobSkills, skills),
	}
}

// semantic compares the resume and job description with embeddings when an
// embedder is set, and by term frequencies otherwise or on failure.
func (m *Matcher) semantic(ctx context.Context, resumeText, jdText string) float64 {
	if m.embedder != nil {
		jdVec, err := m.jdVector(ctx, jdText)
		if err == nil {
			var vecs [][]float32
			vecs, err = m.embedder.Embed(ctx, []string{resumeText})
			if err == nil && len(vecs) == 1 {
				return cosine32(vecs[0], jdVec)
			}
			if err == nil {
				err = fmt.Errorf("expected 1 embedding, got %d", len(vecs))
			}
		}
		m.logger.Warn("Embedding failed, using term similarity", "error", err)
	}
	return termCosine(resumeText, jdText)
}

// jdVector embeds the job description once for all resumes scored in
// parallel against it.
func (m *Matcher) jdVector(ctx context.Context, jdText string) ([]float32, error) {
	sum := sha256.Sum256([]byte(jdText))
	v, err, _ := m.jdVectors.Do(hex.EncodeToString(sum[:]), func() (any, error) {
		vecs, err := m.embedder.Embed(ctx, []string{jdText})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
		}
		return vecs[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// Feedback asks the model for a short third-person assessment. When the
// model fails it returns a summary built from the skills.
func (m *Matcher) Feedback(ctx context.Context, score float64, jobSkills, resumeSkills []string) string {
	has := noListedSkills
	if len(resumeSkills) > 0 {
		has = strings.Join(resumeSkills, ", ")
	}
	prompt := fmt.Sprintf(m.feedbackPrompt, formatScore(score), strings.Join(jobSkills, ", "), has)

	completion, err := m.gen.Generate(ctx, ai.Request{
		Operation: config.OpResumeFeedback,
		Prompt:    prompt,
		MaxTokens: m.maxTokens[config.OpResumeFeedback],
	})
	if err == nil {
		if text := strings.TrimSpace(completion.Text); text != "" {
			return text
		}
		err = fmt.Errorf("empty completion")
	}
	m.logger.LogError(err, "Feedback generation failed, using summary")
	return summaryFeedback(score, jobSkills, resumeSkills)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// summaryFeedback is the deterministic feedback used without a model.
func summaryFeedback(score float64, jobSkills, resumeSkills []string) string {
	matched := intersect(resumeSkills, jobSkills)
	var b strings.Builder
	fmt.Fprintf(&b, "The candidate has a %s%% match and covers %d of %d required skills.",
		formatScore(score), len(matched), len(jobSkills))

	have := make(map[string]struct{}, len(matched))
	for _, s := range matched {
		have[strings.ToLower(s)] = struct{}{}
	}
	var missing []string
	for _, s := range jobSkills {
		if _, ok := have[strings.ToLower(s)]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, " Areas to develop: %s.", strings.Join(missing, ", "))
	}
	return b.String()
}

// FollowUp writes feedback for a match and three interview questions about
// the candidate's skill gaps.
func (m *Matcher) FollowUp(ctx context.Context, in types.ResumeFollowUpInput) (types.ResumeFollowUpOutput, error) {
	if in.Score < 0 || in.Score > 100 {
		return types.ResumeFollowUpOutput{}, errors.NewValidationError(errors.CodeInvalidRequest,
			"score must be between 0 and 100", nil)
	}
	if len(in.JobSkills) == 0 {
		return types.ResumeFollowUpOutput{}, errors.NewValidationError(errors.CodeMissingField,
			"jobSkills is required", nil).WithField("field", "jobSkills")
	}

	fb := m.Feedback(ctx, in.Score, in.JobSkills, in.ResumeSkills)

	raw := ""
	completion, err := m.gen.Generate(ctx, ai.Request{
		Operation: config.OpResumeFollowUp,
		Prompt:    fmt.Sprintf(m.followUpPrompt, fb),
		MaxTokens: m.maxTokens[config.OpResumeFollowUp],
	})
	if err != nil {
		m.logger.LogError(err, "Follow-up generation failed, using defaults")
	} else {
		raw = completion.Text
	}

	result := m.followUps.Extract(raw, []any{})
	questions := questionTexts(result.Value)
	if len(questions) == 0 {
		questions = defaultFollowUpQuestions()
	}
	if len(questions) > followUpCount {
		questions = questions[:followUpCount]
	}
	return types.ResumeFollowUpOutput{Feedback: fb, FollowUpQuestions: questions}, nil
}

func questionTexts(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if q, ok := obj["question"].(string); ok && strings.TrimSpace(q) != "" {
			out = append(out, strings.TrimSpace(q))
		}
	}
	return out
}

// Parse reads contact details and skills from one resume.
func (m *Matcher) Parse(ctx context.Context, doc Document) (types.ParsedResume, error) {
	if len(doc.Data) == 0 {
		return types.ParsedResume{}, errors.NewValidationError(errors.CodeMissingField,
			"resume file is required", nil)
	}
	text, err := documentText(doc)
	if err != nil {
		return types.ParsedResume{}, err
	}

	contact := ExtractContact(text)
	m.logger.Debug("Resume parsed", "file", doc.FileName, "has_email", contact.Email != "")
	return types.ParsedResume{
		Success:   true,
		FileName:  doc.FileName,
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Skills:    m.catalog.ExtractSkills(text),
	}, nil
}
