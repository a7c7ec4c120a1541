package interview

import "fmt"

// Question is the element shape the questions prompt asks for. Handlers pass
// the extracted JSON through untouched; these types document it and are used
// by the CLI renderers.
type Question struct {
	Question            string   `json:"question"`
	Type                string   `json:"type"`
	Evaluates           string   `json:"evaluates"`
	StrongAnswerExample string   `json:"strong_answer_example"`
	FollowUps           []string `json:"follow_ups"`
}

// FollowUp is the element shape of the follow-ups prompt.
type FollowUp struct {
	FollowUpQuestion string `json:"follow_up_question"`
	Purpose          string `json:"purpose"`
}

// QuestionsFrom converts an extracted questions value into Questions.
// Elements that are not objects are skipped; non-string fields are printed
// with fmt.
func QuestionsFrom(v any) []Question {
	items, _ := v.([]any)
	out := make([]Question, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q := Question{
			Question:            fieldText(obj["question"]),
			Type:                fieldText(obj["type"]),
			Evaluates:           fieldText(obj["evaluates"]),
			StrongAnswerExample: fieldText(obj["strong_answer_example"]),
		}
		if followUps, ok := obj["follow_ups"].([]any); ok {
			for _, fu := range followUps {
				q.FollowUps = append(q.FollowUps, fieldText(fu))
			}
		}
		out = append(out, q)
	}
	return out
}

func fieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
