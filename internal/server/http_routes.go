package server

import (
	"net/http"
	"slices"
	"strings"
)

type route struct {
	pattern   string
	protected bool
	handler   func(*Server, http.ResponseWriter, *http.Request)
}

// routes is the full API surface. Protected routes pass through rate
// limiting, authentication and the body size limit.
var routes = []route{
	{"GET /health", false, (*Server).healthHandler},
	{"GET /stats", false, (*Server).statsHandler},
	{"GET /templates", false, (*Server).templatesHandler},

	{"POST /generate", true, (*Server).questionsHandler},
	{"POST /follow-up", true, (*Server).followUpsHandler},
	{"POST /realtime-suggestions", true, (*Server).suggestionsHandler},
	{"POST /evaluate-candidate", true, (*Server).evaluationHandler},
	{"POST /analyze-tone", true, (*Server).toneHandler},
	{"POST /generate-comparison-report", true, (*Server).comparisonHandler},

	{"POST /save-interviewer-feedback", true, (*Server).saveInterviewerFeedbackHandler},
	{"POST /save-candidate-feedback", true, (*Server).saveCandidateFeedbackHandler},
	{"GET /feedback", true, (*Server).listFeedbackHandler},

	{"POST /api/match", true, (*Server).matchHandler},
	{"POST /api/parse-resume", true, (*Server).parseResumeHandler},
	{"POST /api/resume-followup", true, (*Server).resumeFollowUpHandler},
}

// Handler returns the routed API wrapped in its middleware chain:
// otelhttp, CORS, then per route rate limit, auth and size limit.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}
	for _, rt := range routes {
		h := func(w http.ResponseWriter, r *http.Request) { rt.handler(s, w, r) }
		if rt.protected {
			h = protect(h)
		}
		mux.HandleFunc(rt.pattern, h)
	}

	prom := s.cfg.Observability.Prometheus
	if metrics := s.om.MetricsHandler(); metrics != nil && prom.Port == "" {
		endpoint := prom.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		mux.Handle("GET "+endpoint, metrics)
	}

	return s.om.HTTPMiddleware()(s.corsMiddleware(mux))
}

// corsMiddleware answers preflight requests and tags responses for the
// configured origins. No origins means no CORS headers at all.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := s.cfg.Server.CORS.AllowedOrigins
	if len(allowed) == 0 {
		return next
	}
	anyOrigin := slices.Contains(allowed, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !(anyOrigin || slices.Contains(allowed, origin)) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		if anyOrigin {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Expose-Headers", headerOutcome+", "+headerStrategy)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// no keys configured: open API
		if len(s.apiKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if _, ok := s.apiKeys[apiKey]; !ok {
			s.logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))
		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	limit := s.cfg.App.MaxUploadSize
	if limit <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next(w, r)
	}
}

// requestAPIKey reads X-API-Key, falling back to a Bearer token.
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
