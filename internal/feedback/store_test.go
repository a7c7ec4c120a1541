package feedback

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hirescope/internal/config"
	"hirescope/internal/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"interviewer", KindInterviewer, false},
		{" Candidate ", KindCandidate, false},
		{"", "", true},
		{"recruiter", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMemoryStoreListsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	records := []Record{
		{ID: "feedback_1", Kind: KindInterviewer, Payload: json.RawMessage(`{"n":1}`), CreatedAt: base},
		{ID: "candidate_2", Kind: KindCandidate, Payload: json.RawMessage(`{"n":2}`), CreatedAt: base.Add(time.Second)},
		{ID: "feedback_3", Kind: KindInterviewer, Payload: json.RawMessage(`{"n":3}`), CreatedAt: base.Add(2 * time.Second)},
	}
	for _, rec := range records {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := store.List(ctx, KindInterviewer, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "feedback_3" || got[1].ID != "feedback_1" {
		t.Errorf("List(interviewer) = %+v", got)
	}

	got, _ = store.List(ctx, "", 2)
	if len(got) != 2 || got[0].ID != "feedback_3" || got[1].ID != "candidate_2" {
		t.Errorf("List(all, 2) = %+v", got)
	}
}

func TestMemoryStoreCopiesPayload(t *testing.T) {
	store := NewMemoryStore()
	payload := json.RawMessage(`{"rating":5}`)
	_ = store.Save(context.Background(), Record{ID: "feedback_1", Kind: KindInterviewer, Payload: payload})

	payload[2] = 'X'

	got, _ := store.List(context.Background(), KindInterviewer, 1)
	if string(got[0].Payload) != `{"rating":5}` {
		t.Errorf("stored payload changed with caller buffer: %s", got[0].Payload)
	}
}

func TestOpenMemoryAndUnknownDriver(t *testing.T) {
	store, err := Open(context.Background(), config.FeedbackConfig{Driver: "memory"}, errors.Discard())
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open(memory) returned %T", store)
	}

	if _, err := Open(context.Background(), config.FeedbackConfig{Driver: "mongo"}, errors.Discard()); err == nil {
		t.Error("Open(mongo) should fail")
	}
}

func TestRedisListKey(t *testing.T) {
	if got := listKey("hirescope:feedback", KindCandidate); got != "hirescope:feedback:candidate" {
		t.Errorf("listKey = %q", got)
	}
	if got := listKey("", KindInterviewer); got != "interviewer" {
		t.Errorf("listKey without prefix = %q", got)
	}
}

func TestDecodeRecordsReversesOrder(t *testing.T) {
	raw := []string{
		`{"feedback_id":"feedback_1","kind":"interviewer","payload":{"a":1},"created_at":"2024-01-01T00:00:00Z"}`,
		`{"feedback_id":"feedback_2","kind":"interviewer","payload":{"a":2},"created_at":"2024-01-01T00:00:01Z"}`,
	}
	got, err := decodeRecords(raw)
	if err != nil {
		t.Fatalf("decodeRecords: %v", err)
	}
	if got[0].ID != "feedback_2" || got[1].ID != "feedback_1" {
		t.Errorf("decodeRecords order = %s, %s", got[0].ID, got[1].ID)
	}

	if _, err := decodeRecords([]string{"not json"}); err == nil {
		t.Error("decodeRecords should reject invalid JSON")
	}
}
