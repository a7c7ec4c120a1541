package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionsFrom(t *testing.T) {
	value := []any{
		map[string]any{
			"question":   "Tell me about a migration you led.",
			"type":       "Behavioral",
			"evaluates":  "Ownership",
			"follow_ups": []any{"What went wrong?", 2},
		},
		"stray line",
		map[string]any{"question": 42},
	}

	got := QuestionsFrom(value)
	assert.Len(t, got, 2)
	assert.Equal(t, "Behavioral", got[0].Type)
	assert.Equal(t, []string{"What went wrong?", "2"}, got[0].FollowUps)
	assert.Equal(t, "42", got[1].Question)

	assert.Empty(t, QuestionsFrom(map[string]any{"question": "not a list"}))
	assert.Len(t, QuestionsFrom(noQuestionsDefault()), 1)
}
