package types

// QuestionsInput represents the input for generating interview questions
type QuestionsInput struct {
	JobRole             string `json:"job_role"`
	Industry            string `json:"industry"`
	ExperienceLevel     string `json:"experience_level"`
	CandidateBackground string `json:"candidate_background"`
	QuestionCount       int    `json:"question_count,omitempty"`
}

// FollowUpInput represents a question/answer pair to follow up on
type FollowUpInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Count    int    `json:"count,omitempty"`
}

// SuggestionsInput represents an ongoing interview transcript
type SuggestionsInput struct {
	JobRole           string `json:"job_role"`
	DiscussionContext string `json:"discussion_context"`
	InterviewStage    string `json:"interview_stage,omitempty"` // "beginning", "middle" or "end"
}

// CandidateResponse is one answered interview question
type CandidateResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// EvaluationInput represents the input for evaluating a candidate
type EvaluationInput struct {
	JobRole            string              `json:"job_role"`
	CandidateResponses []CandidateResponse `json:"candidate_responses"`
	EvaluationCriteria []string            `json:"evaluation_criteria,omitempty"`
}

// ToneInput represents a single candidate answer to analyze
type ToneInput struct {
	CandidateResponse string `json:"candidate_response"`
}

// CriterionScore is a score a candidate received for one criterion
type CriterionScore struct {
	Criterion string `json:"criterion"`
	Score     any    `json:"score"` // number or "N/A"
}

// CandidateSummary represents one candidate in a comparison report
type CandidateSummary struct {
	Name       string           `json:"name,omitempty"`
	Position   string           `json:"position,omitempty"`
	Feedback   string           `json:"feedback,omitempty"`
	Scores     []CriterionScore `json:"scores,omitempty"`
	Strengths  []string         `json:"strengths,omitempty"`
	Weaknesses []string         `json:"weaknesses,omitempty"`
}

// ComparisonInput represents the input for a candidate comparison report
type ComparisonInput struct {
	Candidates []CandidateSummary `json:"candidates"`
	Metrics    []string           `json:"metrics,omitempty"`
}

// FeedbackSaved is returned after feedback is stored
type FeedbackSaved struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedback_id,omitempty"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// JobDetails describes the job a set of resumes was matched against
type JobDetails struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// MatchResult is the outcome for one resume
type MatchResult struct {
	ID              string   `json:"id"`
	FileName        string   `json:"fileName"`
	CandidateName   string   `json:"candidateName"`
	Email           string   `json:"email"`
	Skills          []string `json:"skills"`
	Status          string   `json:"status"`
	MatchScore      float64  `json:"matchScore"`
	MatchedSkills   []string `json:"matched_skills"`
	Feedback        string   `json:"feedback"`
	ProcessingError bool     `json:"processingError,omitempty"`
}

// JobMatch groups the results for one job description
type JobMatch struct {
	Success    bool          `json:"success"`
	JobDetails JobDetails    `json:"jobDetails"`
	Results    []MatchResult `json:"results"`
}

// MatchOutput is the response of a match request
type MatchOutput struct {
	Success    bool       `json:"success"`
	JobMatches []JobMatch `json:"jobMatches"`
}

// ParsedResume is the contact and skill information found in a resume
type ParsedResume struct {
	Success   bool     `json:"success"`
	FileName  string   `json:"fileName"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Skills    []string `json:"skills"`
}

// ResumeFollowUpInput asks for interview follow-ups after a match
type ResumeFollowUpInput struct {
	Score        float64  `json:"score"`
	JobSkills    []string `json:"jobSkills"`
	ResumeSkills []string `json:"resumeSkills"`
}

// ResumeFollowUpOutput holds feedback plus generated follow-up questions
type ResumeFollowUpOutput struct {
	Feedback          string   `json:"feedback"`
	FollowUpQuestions []string `json:"followUpQuestions"`
}
