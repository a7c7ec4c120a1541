package interview

// Default user prompts. Each is a fmt format string; overrides set through
// ai.prompts.<operation> or ai.promptFiles.<operation> receive the same
// arguments and may use explicit indexes (%[2]s) to reorder them.
//
//	questions:   1 count (%d), 2 experience level, 3 job role, 4 industry,
//	             5 candidate background, 6 role context
//	followups:   1 question, 2 answer, 3 count (%d)
//	suggestions: 1 job role, 2 interview stage, 3 discussion context
//	evaluation:  1 job role, 2 formatted responses, 3 criteria
//	tone:        1 candidate response
//	comparison:  1 formatted candidates, 2 metrics
const (
	questionsPrompt = `Generate %[1]d interview questions for a %[2]s %[3]s position in the %[4]s industry.

The candidate has the following background:
%[5]s
%[6]s
Create a mix of:
- Role-specific technical questions that test their knowledge and skills
- Behavioral questions relevant to this position
- Problem-solving scenarios they might face in this role

For each question, include:
1. The question itself
2. What type of question it is (technical, behavioral, problem-solving)
3. What skill or trait you're evaluating
4. A good example of what constitutes a strong answer
5. 2-3 potential follow-up questions based on different possible responses

The output MUST be a valid JSON array with no additional text before or after. Format exactly as follows:
[
  {
    "question": "Question text here",
    "type": "Technical",
    "evaluates": "Skill being evaluated",
    "strong_answer_example": "Example of a good answer",
    "follow_ups": ["Follow-up question 1", "Follow-up question 2"]
  }
]`

	followUpsPrompt = `In an interview, the candidate was asked:
"%[1]s"

Their answer was:
"%[2]s"

Please generate %[3]d insightful follow-up questions that would help evaluate the candidate more deeply based on their response.
For each follow-up question, explain what additional information you're trying to uncover.

Return the results as a JSON array with no additional text before or after, exactly in this format:
[
  {
    "follow_up_question": "First follow-up question here",
    "purpose": "What this question helps evaluate"
  }
]`

	suggestionsPrompt = `You are an expert interview coach giving real-time suggestions to an interviewer.

Job Role: %[1]s
Current Interview Stage: %[2]s

Recent Interview Conversation:
"%[3]s"

Based on this conversation, provide:
1. Three tactical suggestions for what the interviewer should ask or probe into next
2. Key skills or experiences that haven't been covered yet
3. Areas where the candidate's answers could be probed more deeply

Return your suggestions as a JSON object with no additional text before or after:
{
  "next_questions": ["suggestion 1", "suggestion 2", "suggestion 3"],
  "uncovered_areas": ["area 1", "area 2"],
  "probe_deeper": ["topic 1", "topic 2"]
}`

	evaluationPrompt = `You are an expert interviewer evaluating a candidate for a %[1]s position.

Please evaluate the candidate based on the following interview responses:

%[2]s
Evaluate the candidate on the following criteria (score 1-5, where 1 is poor and 5 is excellent):
%[3]s

For each criterion, provide:
1. A numerical score (1-5)
2. Specific evidence from their responses
3. Suggestions for improvement

Then provide an overall assessment including:
1. The candidate's key strengths
2. Areas for improvement
3. Overall fit for the role (Not Suitable, Potential Fit, Good Fit, Excellent Fit)

Return your evaluation as a JSON object with no additional text before or after:
{
  "scores": [
    {
      "criterion": "criterion name",
      "score": 3,
      "evidence": "evidence from responses",
      "improvement": "suggestion for improvement"
    }
  ],
  "overall_assessment": {
    "strengths": ["strength 1", "strength 2"],
    "areas_for_improvement": ["area 1", "area 2"],
    "overall_fit": "category"
  }
}`

	tonePrompt = `As an expert in communication and emotional intelligence, analyze the tone and language
patterns in this candidate's interview response:

"%[1]s"

Provide a comprehensive analysis covering:
1. Overall tone (confidence, uncertainty, enthusiasm, etc.)
2. Language patterns (concrete vs. abstract, passive vs. active, etc.)
3. Emotional intelligence indicators
4. Communication effectiveness
5. Authenticity assessment

For each area, provide:
- A rating on a scale of 1-5
- Specific evidence from the text
- Implications for workplace communication

Return your analysis as a JSON object with no additional text before or after:
{
  "tone": {"primary_tones": ["tone1", "tone2"], "confidence_level": 3, "enthusiasm": 3, "evidence": "specific language indicating tone"},
  "language_patterns": {"concreteness": 3, "specificity": 3, "active_voice": 3, "evidence": "examples from text"},
  "emotional_intelligence": {"self_awareness": 3, "empathy": 3, "evidence": "indicators from response"},
  "communication_effectiveness": {"clarity": 3, "organization": 3, "persuasiveness": 3, "evidence": "examples from text"},
  "authenticity": {"score": 3, "evidence": "indicators of authenticity or lack thereof"},
  "overall_impression": "summary statement"
}`

	comparisonPrompt = `You are an expert hiring manager creating a comparative analysis report between multiple candidates.

Please compare the following candidates:

%[1]s
Focus your comparison on these key metrics:
%[2]s

For each metric, indicate which candidate ranks highest and why. Then provide:
1. A side-by-side comparison table of all candidates across all metrics
2. Key differentiators between candidates
3. A ranked recommendation of which candidate(s) should move forward

Return your analysis as a JSON object with no additional text before or after:
{
  "metrics_comparison": [
    {
      "metric": "metric name",
      "rankings": [
        {"rank": 1, "candidate": "Candidate Name", "score": 4, "notes": "why they ranked here"}
      ]
    }
  ],
  "key_differentiators": [
    {"candidate": "Candidate Name", "differentiators": ["point 1", "point 2"]}
  ],
  "recommendations": [
    {"rank": 1, "candidate": "Candidate Name", "rationale": "why they're recommended"}
  ],
  "summary": "overall summary of the comparison"
}`
)
