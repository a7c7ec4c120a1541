package matcher

import (
	"regexp"
	"strings"
)

// feedbackPrompt args: score, job skills, candidate skills.
const feedbackPrompt = `Generate constructive feedback for a candidate who scored %[1]s%% match (in 3rd person).
Job requires: %[2]s
Candidate has: %[3]s`

// followUpPrompt args: feedback text.
const followUpPrompt = `Based on the following resume feedback, generate 3 thoughtful follow-up interview questions to ask the candidate. Focus on their awareness of skill gaps and their plan for upskilling.

Feedback:
"""%[1]s"""

Return only a JSON array of objects of the form [{"question": "..."}].`

const (
	noListedSkills   = "No listed skills"
	unreadableResume = "We couldn't analyze this file. Please check the format or try a different one."
	followUpCount    = 3
)

func defaultFollowUpQuestions() []string {
	return []string{
		"Which of the required skills do you feel least confident in, and why?",
		"What steps are you currently taking to close any gaps in your skill set?",
		"Can you describe a time you picked up a new technology quickly to deliver a project?",
	}
}

// numberedLine matches "1. text", "2) text" and "- text" list items.
var numberedLine = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+?)\s*$`)

// numberedLines rebuilds the question array from a plain numbered list.
type numberedLines struct{}

const strategyNumberedLines = "numbered_lines"

func (numberedLines) Name() string { return strategyNumberedLines }

func (numberedLines) TryExtract(text string) (any, bool) {
	var items []any
	for _, line := range strings.Split(text, "\n") {
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		question := strings.Trim(m[1], `"*`)
		if question == "" {
			continue
		}
		items = append(items, map[string]any{"question": question})
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}
