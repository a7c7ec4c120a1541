package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hirescope/internal/ai"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/interview"
	"hirescope/internal/matcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu   sync.Mutex
	text map[string]string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, req ai.Request) (ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return ai.Completion{}, f.err
	}
	return ai.Completion{Text: f.text[req.Operation]}, nil
}

type fakeStats map[string]any

func (f fakeStats) Stats() map[string]any { return f }

func testConfig() *config.Config {
	return &config.Config{
		AI:  config.AIConfig{MaxTokens: 1000},
		App: config.AppConfig{MaxUploadSize: 1 << 20, MaxFileSize: 1 << 16},
		Matcher: config.MatcherConfig{
			Concurrency:    2,
			SkillWeight:    0.4,
			SemanticWeight: 0.6,
			DefaultTitle:   "Engineer",
			DefaultCompany: "Acme",
		},
		Extraction: config.ExtractionConfig{QuestionExcerpt: 500, ReportExcerpt: 1000},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, gen *fakeGenerator, stats StatsProvider) http.Handler {
	t.Helper()
	if gen == nil {
		gen = &fakeGenerator{}
	}
	logger := errors.Discard()
	catalog := matcher.NewCatalog([]string{"Go", "Docker", "Kubernetes", "Python"})
	s := New(cfg, "test", Deps{
		Interview: interview.NewService(gen, cfg, logger),
		Matcher:   matcher.New(gen, catalog, cfg, logger),
		AI:        stats,
	}, logger)
	t.Cleanup(s.Close)
	return s.Handler()
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type part struct {
	field, name, content string
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExtractionEndpointWritesValueAndHeaders(t *testing.T) {
	gen := &fakeGenerator{text: map[string]string{
		config.OpTone: `Sure! {"confidence": 8, "overall_impression": "calm"}`,
	}}
	h := newTestServer(t, testConfig(), gen, nil)

	rec := serve(h, postJSON("/analyze-tone", `{"candidate_response":"I led the migration."}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "parsed", rec.Header().Get(headerOutcome))
	assert.NotEmpty(t, rec.Header().Get(headerStrategy))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(8), body["confidence"])
	assert.Equal(t, "calm", body["overall_impression"])
}

func TestExtractionFallbackIsStillOK(t *testing.T) {
	h := newTestServer(t, testConfig(), &fakeGenerator{err: stderrors.New("provider down")}, nil)

	rec := serve(h, postJSON("/generate",
		`{"job_role":"Software Engineer","industry":"Finance","experience_level":"Senior"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get(headerOutcome))
	assert.Equal(t, "default", rec.Header().Get(headerStrategy))

	var body []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body)
}

func TestRequestValidation(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing field",
			req:      postJSON("/generate", `{"job_role":"Software Engineer"}`),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.CodeMissingField,
		},
		{
			name:     "invalid json",
			req:      postJSON("/analyze-tone", `{"candidate_response":`),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.CodeInvalidFormat,
		},
		{
			name: "wrong content type",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/follow-up", strings.NewReader(`{}`))
				r.Header.Set("Content-Type", "text/plain")
				return r
			}(),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.CodeInvalidFormat,
		},
		{
			name:     "follow-up score out of range",
			req:      postJSON("/api/resume-followup", `{"score":150,"jobSkills":["Go"]}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid feedback kind",
			req:      httptest.NewRequest(http.MethodGet, "/feedback?kind=manager", nil),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.CodeInvalidRequest,
		},
		{
			name:     "invalid feedback limit",
			req:      httptest.NewRequest(http.MethodGet, "/feedback?limit=-2", nil),
			wantCode: http.StatusBadRequest,
			wantErr:  errors.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.NotEmpty(t, body.Message)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body.Error)
			}
		})
	}
}

func TestCharsetContentTypeIsAccepted(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze-tone", strings.NewReader(`{"candidate_response":"ok"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/generate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthentication(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"secret-key-123"}
	h := newTestServer(t, cfg, nil, nil)
	body := `{"candidate_response":"I enjoy pairing."}`

	tests := []struct {
		name     string
		header   string
		value    string
		wantCode int
	}{
		{"no key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"api key header", "X-API-Key", "secret-key-123", http.StatusOK},
		{"bearer token", "Authorization", "Bearer secret-key-123", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postJSON("/analyze-tone", body)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.wantCode, serve(h, req).Code)
		})
	}

	t.Run("health is public", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimitByIP(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	h := newTestServer(t, cfg, nil, nil)

	first := serve(h, postJSON("/analyze-tone", `{"candidate_response":"one"}`))
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(h, postJSON("/analyze-tone", `{"candidate_response":"two"}`))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	other := postJSON("/analyze-tone", `{"candidate_response":"three"}`)
	other.Header.Set("X-Forwarded-For", "198.51.100.7")
	assert.Equal(t, http.StatusOK, serve(h, other).Code)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.Server.CORS.AllowedOrigins = []string{"https://app.example.com"}
	cfg.Server.APIKeys = []string{"secret-key-123"}
	h := newTestServer(t, cfg, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	assert.Empty(t, serve(h, other).Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthReportsOpenBreakers(t *testing.T) {
	stats := fakeStats{
		config.OpQuestions: map[string]any{"overall_healthy": true},
		config.OpTone:      map[string]any{"overall_healthy": false},
	}
	h := newTestServer(t, testConfig(), nil, stats)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestStatsAndTemplates(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 5, ByIP: true}
	h := newTestServer(t, cfg, nil, fakeStats{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "rate_limiting")
	assert.Contains(t, stats, "ai")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var catalogue interview.Catalogue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalogue))
	assert.Contains(t, catalogue.Roles, "Software Engineer")
}

func TestFeedbackRoundTrip(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)

	rec := serve(h, postJSON("/save-interviewer-feedback", `{"candidate":"Ada","rating":5}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, true, saved["success"])
	assert.True(t, strings.HasPrefix(saved["feedback_id"].(string), "feedback_"))

	rec = serve(h, postJSON("/save-candidate-feedback", `{"experience":"smooth"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/feedback?kind=interviewer", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Count    int `json:"count"`
		Feedback []struct {
			Kind    string          `json:"kind"`
			Payload json.RawMessage `json:"payload"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, "interviewer", listed.Feedback[0].Kind)
	assert.JSONEq(t, `{"candidate":"Ada","rating":5}`, string(listed.Feedback[0].Payload))
}

func TestMatchEndpoint(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)
	jd := part{"job_description_pdf", "job.txt", "Job Title: Backend Engineer\nCompany: Initech\nWe use Go, Docker and Kubernetes."}

	t.Run("scores resumes", func(t *testing.T) {
		rec := serve(h, multipartRequest(t, "/api/match", jd,
			part{"resumes", "ada.txt", "Ada Lovelace\nada@example.com\nGo, Docker and Kubernetes in production."},
			part{"resumes", "bob.md", "Bob Stone\nbob@example.com\nPython scripting."},
		))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out struct {
			Success    bool `json:"success"`
			JobMatches []struct {
				JobDetails struct {
					Title   string `json:"title"`
					Company string `json:"company"`
				} `json:"jobDetails"`
				Results []struct {
					FileName   string  `json:"fileName"`
					Email      string  `json:"email"`
					MatchScore float64 `json:"matchScore"`
				} `json:"results"`
			} `json:"jobMatches"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.True(t, out.Success)
		require.Len(t, out.JobMatches, 1)
		assert.Equal(t, "Backend Engineer", out.JobMatches[0].JobDetails.Title)
		require.Len(t, out.JobMatches[0].Results, 2)
		assert.Equal(t, "ada.txt", out.JobMatches[0].Results[0].FileName)
		assert.Equal(t, "ada@example.com", out.JobMatches[0].Results[0].Email)
		assert.Greater(t, out.JobMatches[0].Results[0].MatchScore, out.JobMatches[0].Results[1].MatchScore)
	})

	t.Run("no resumes", func(t *testing.T) {
		rec := serve(h, multipartRequest(t, "/api/match", jd))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "At least one resume is required.", decodeError(t, rec).Message)
	})

	t.Run("no supported resumes", func(t *testing.T) {
		rec := serve(h, multipartRequest(t, "/api/match", jd, part{"resumes", "photo.png", "png"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No valid resume files provided.", decodeError(t, rec).Message)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := serve(h, postJSON("/api/match", `{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMatchRejectsOversizedFile(t *testing.T) {
	cfg := testConfig()
	cfg.App.MaxFileSize = 16
	h := newTestServer(t, cfg, nil, nil)

	rec := serve(h, multipartRequest(t, "/api/match",
		part{"job_description_pdf", "job.txt", "Go developer wanted for a long time"},
		part{"resumes", "a.txt", "Go"},
	))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, errors.CodeFileTooLarge, decodeError(t, rec).Error)
}

func TestParseResumeRequiresPDF(t *testing.T) {
	h := newTestServer(t, testConfig(), nil, nil)

	rec := serve(h, multipartRequest(t, "/api/parse-resume", part{"resume", "cv.docx", "not a pdf"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Resume must be a PDF.", decodeError(t, rec).Message)

	rec = serve(h, multipartRequest(t, "/api/parse-resume"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeFollowUpEndpoint(t *testing.T) {
	gen := &fakeGenerator{text: map[string]string{
		config.OpResumeFollowUp: `[{"question":"How have you used Docker?"},{"question":"Describe a Go service you built."}]`,
	}}
	h := newTestServer(t, testConfig(), gen, nil)

	rec := serve(h, postJSON("/api/resume-followup",
		`{"score":72,"jobSkills":["Go","Docker"],"resumeSkills":["Go"]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Feedback          string   `json:"feedback"`
		FollowUpQuestions []string `json:"followUpQuestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Feedback)
	assert.Contains(t, out.FollowUpQuestions, "How have you used Docker?")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		want   string
	}{
		{"forwarded first valid", "bogus, 203.0.113.9, 10.0.0.1", "", "203.0.113.9"},
		{"real ip", "", "198.51.100.2", "198.51.100.2"},
		{"remote addr", "", "", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
