// Package server exposes the interview and matching services over HTTP.
package server

import (
	"context"
	"encoding/json"

	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/extract"
	"hirescope/internal/feedback"
	"hirescope/internal/interview"
	"hirescope/internal/matcher"
	"hirescope/internal/observability"
	"hirescope/internal/types"
)

// Interviewer is the interview-side surface the handlers call.
type Interviewer interface {
	GenerateQuestions(ctx context.Context, in types.QuestionsInput) (extract.Result, error)
	GenerateFollowUps(ctx context.Context, in types.FollowUpInput) (extract.Result, error)
	RealtimeSuggestions(ctx context.Context, in types.SuggestionsInput) (extract.Result, error)
	EvaluateCandidate(ctx context.Context, in types.EvaluationInput) (extract.Result, error)
	AnalyzeTone(ctx context.Context, in types.ToneInput) (extract.Result, error)
	CompareCandidates(ctx context.Context, in types.ComparisonInput) (extract.Result, error)
	SaveInterviewerFeedback(ctx context.Context, payload json.RawMessage) (types.FeedbackSaved, error)
	SaveCandidateFeedback(ctx context.Context, payload json.RawMessage) (types.FeedbackSaved, error)
	ListFeedback(ctx context.Context, kind feedback.Kind, limit int) ([]feedback.Record, error)
	Templates() interview.Catalogue
}

// ResumeMatcher is the matching surface the handlers call.
type ResumeMatcher interface {
	Match(ctx context.Context, jd matcher.Document, resumes []matcher.Document) (types.MatchOutput, error)
	Parse(ctx context.Context, doc matcher.Document) (types.ParsedResume, error)
	FollowUp(ctx context.Context, in types.ResumeFollowUpInput) (types.ResumeFollowUpOutput, error)
}

// StatsProvider reports circuit breaker state per AI operation.
type StatsProvider interface {
	Stats() map[string]any
}

// Deps are the services a Server routes requests to. AI and Observability
// may be nil.
type Deps struct {
	Interview     Interviewer
	Matcher       ResumeMatcher
	AI            StatsProvider
	Observability *observability.Manager
}

// Server holds the HTTP server configuration and its services.
type Server struct {
	cfg       *config.Config
	version   string
	interview Interviewer
	matcher   ResumeMatcher
	ai        StatsProvider
	om        *observability.Manager
	limiter   *LimiterManager
	apiKeys   map[string]struct{}
	logger    *errors.Logger
}

// New creates a Server. Close releases the rate limiter.
func New(cfg *config.Config, version string, deps Deps, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Discard()
	}
	om := deps.Observability
	if om == nil {
		om, _ = observability.NewManager(context.Background(), config.ObservabilityConfig{}, version, logger)
	}

	s := &Server{
		cfg:       cfg,
		version:   version,
		interview: deps.Interview,
		matcher:   deps.Matcher,
		ai:        deps.AI,
		om:        om,
		apiKeys:   make(map[string]struct{}, len(cfg.Server.APIKeys)),
		logger:    logger.With("component", "server"),
	}
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			s.apiKeys[key] = struct{}{}
		}
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		s.limiter = NewRateLimiter(rl.RequestsPerMin, rl.BurstCapacity, rl.Window, s.logger)
	}
	return s
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// logServerInfo logs how the server is exposed and protected.
func (s *Server) logServerInfo() {
	rl := s.cfg.Server.RateLimit
	s.logger.Info("Server configuration",
		"auth_keys", len(s.apiKeys),
		"max_upload_bytes", s.cfg.App.MaxUploadSize,
		"max_file_bytes", s.cfg.App.MaxFileSize,
		"rate_limit", rl.Enabled,
		"requests_per_min", rl.RequestsPerMin,
		"burst", rl.BurstCapacity,
		"tls_mode", s.cfg.Server.TLS.Mode)
	if len(s.apiKeys) == 0 {
		s.logger.Warn("API authentication disabled; endpoints are publicly accessible")
	}
	if !rl.Enabled {
		s.logger.Warn("Rate limiting disabled")
	}
	for _, rt := range routes {
		s.logger.Debug("Route registered", "pattern", rt.pattern, "protected", rt.protected)
	}
}
