package interview

import (
	"context"
	"encoding/json"
	"fmt"

	"hirescope/internal/errors"
	"hirescope/internal/feedback"
	"hirescope/internal/types"
)

// SaveInterviewerFeedback stores payload as interviewer feedback.
func (s *Service) SaveInterviewerFeedback(ctx context.Context, payload json.RawMessage) (types.FeedbackSaved, error) {
	return s.saveFeedback(ctx, feedback.KindInterviewer, payload,
		"feedback", "Feedback saved successfully", "Failed to save feedback")
}

// SaveCandidateFeedback stores payload as candidate feedback.
func (s *Service) SaveCandidateFeedback(ctx context.Context, payload json.RawMessage) (types.FeedbackSaved, error) {
	return s.saveFeedback(ctx, feedback.KindCandidate, payload,
		"candidate", "Candidate feedback saved successfully", "Failed to save candidate feedback")
}

// saveFeedback returns a response body in every case; on a store failure it
// is the failure body and err carries the storage error.
func (s *Service) saveFeedback(ctx context.Context, kind feedback.Kind, payload json.RawMessage, idPrefix, okMessage, failMessage string) (types.FeedbackSaved, error) {
	if len(payload) == 0 || !json.Valid(payload) {
		return types.FeedbackSaved{}, errors.NewValidationError(errors.CodeInvalidFormat,
			"feedback body must be valid JSON", nil)
	}

	now := s.now().UTC()
	rec := feedback.Record{
		ID:        fmt.Sprintf("%s_%d", idPrefix, now.Unix()),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now,
	}

	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.LogError(err, "Failed to store feedback", "kind", string(kind))
		return types.FeedbackSaved{Success: false, Error: err.Error(), Message: failMessage},
			errors.NewStorageError(errors.CodeStorageFailed, failMessage, err)
	}

	s.logger.Info("Feedback stored", "kind", string(kind), "feedback_id", rec.ID)
	return types.FeedbackSaved{Success: true, FeedbackID: rec.ID, Message: okMessage}, nil
}

// ListFeedback returns stored feedback, newest first. An empty kind lists all.
func (s *Service) ListFeedback(ctx context.Context, kind feedback.Kind, limit int) ([]feedback.Record, error) {
	records, err := s.store.List(ctx, kind, limit)
	if err != nil {
		return nil, errors.NewStorageError(errors.CodeStorageFailed, "failed to list feedback", err)
	}
	return records, nil
}

// Close releases the feedback store.
func (s *Service) Close() error {
	return s.store.Close()
}
