package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"hirescope/internal/errors"
	"hirescope/internal/extract"
	"hirescope/internal/matcher"
	"hirescope/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// Extraction side-channel headers.
const (
	headerOutcome  = "X-Extraction-Outcome"
	headerStrategy = "X-Extraction-Strategy"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// serveExtraction decodes a T, runs it and writes the extracted value with
// no envelope. A fallback value is still a 200.
func serveExtraction[T any](s *Server, w http.ResponseWriter, r *http.Request, op string,
	run func(context.Context, T) (extract.Result, error)) {
	ctx, span := s.startSpan(r, op)
	defer span.End()

	var in T
	if err := parseJSONRequest(r, &in); err != nil {
		s.writeError(w, span, err)
		return
	}

	result, err := run(ctx, in)
	if err != nil {
		s.writeError(w, span, err)
		return
	}

	span.SetAttributes(
		attribute.String("extraction.outcome", result.Outcome.String()),
		attribute.String("extraction.strategy", result.Strategy),
	)
	w.Header().Set(headerOutcome, result.Outcome.String())
	w.Header().Set(headerStrategy, result.Strategy)
	writeJSON(w, http.StatusOK, result.Value)
}

func (s *Server) questionsHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "questions", s.interview.GenerateQuestions)
}

func (s *Server) followUpsHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "followups", s.interview.GenerateFollowUps)
}

func (s *Server) suggestionsHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "suggestions", s.interview.RealtimeSuggestions)
}

func (s *Server) evaluationHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "evaluation", s.interview.EvaluateCandidate)
}

func (s *Server) toneHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "tone", s.interview.AnalyzeTone)
}

func (s *Server) comparisonHandler(w http.ResponseWriter, r *http.Request) {
	serveExtraction(s, w, r, "comparison", s.interview.CompareCandidates)
}

// matchHandler scores the uploaded resumes against one job description.
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "match")
	defer span.End()

	form, err := s.parseMultipart(r)
	if err != nil {
		s.writeError(w, span, err)
		return
	}

	var jd matcher.Document
	if files := form.File["job_description_pdf"]; len(files) > 0 {
		if jd, err = s.readUpload(files[0]); err != nil {
			s.writeError(w, span, err)
			return
		}
	}

	resumes := make([]matcher.Document, 0, len(form.File["resumes"]))
	for _, fh := range form.File["resumes"] {
		doc, err := s.readUpload(fh)
		if err != nil {
			s.writeError(w, span, err)
			return
		}
		resumes = append(resumes, doc)
	}
	span.SetAttributes(attribute.Int("match.resumes", len(resumes)))

	out, err := s.matcher.Match(ctx, jd, resumes)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// parseResumeHandler reads contact details and skills from one PDF.
func (s *Server) parseResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "parse_resume")
	defer span.End()

	form, err := s.parseMultipart(r)
	if err != nil {
		s.writeError(w, span, err)
		return
	}

	files := form.File["resume"]
	if len(files) == 0 {
		s.writeError(w, span, errors.NewValidationError(errors.CodeMissingField,
			"resume file is required", nil))
		return
	}
	if !matcher.IsPDF(files[0].Filename) {
		s.writeError(w, span, errors.NewValidationError(errors.CodeUnsupportedFile,
			"Resume must be a PDF.", nil))
		return
	}

	doc, err := s.readUpload(files[0])
	if err != nil {
		s.writeError(w, span, err)
		return
	}

	parsed, err := s.matcher.Parse(ctx, doc)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (s *Server) resumeFollowUpHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "resume_followup")
	defer span.End()

	var in types.ResumeFollowUpInput
	if err := parseJSONRequest(r, &in); err != nil {
		s.writeError(w, span, err)
		return
	}

	out, err := s.matcher.FollowUp(ctx, in)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// parseMultipart parses the request's multipart form. Temporary files are
// removed once the request finishes.
func (s *Server) parseMultipart(r *http.Request) (*multipart.Form, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if stderrors.Is(err, http.ErrNotMultipart) || stderrors.Is(err, http.ErrMissingBoundary) {
			return nil, errors.NewValidationError(errors.CodeInvalidFormat,
				"request must be multipart/form-data", err)
		}
		return nil, bodyReadError(err)
	}
	context.AfterFunc(r.Context(), func() { _ = r.MultipartForm.RemoveAll() })
	return r.MultipartForm, nil
}

// readUpload loads one uploaded file, enforcing the per-file size limit.
func (s *Server) readUpload(fh *multipart.FileHeader) (matcher.Document, error) {
	if limit := s.cfg.App.MaxFileSize; limit > 0 && fh.Size > limit {
		return matcher.Document{}, errors.NewValidationError(errors.CodeFileTooLarge,
			fmt.Sprintf("%s exceeds the %d byte file limit", fh.Filename, limit), nil)
	}

	f, err := fh.Open()
	if err != nil {
		return matcher.Document{}, errors.NewIOError(errors.CodeFileNotReadable,
			"could not open "+fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return matcher.Document{}, errors.NewIOError(errors.CodeFileNotReadable,
			"could not read "+fh.Filename, err)
	}
	return matcher.Document{FileName: fh.Filename, Data: data}, nil
}
