package interview

import (
	"fmt"
	"strings"
)

// RoleTemplate lists what a role is usually assessed on.
type RoleTemplate struct {
	Skills           []string `json:"skills"`
	Responsibilities []string `json:"responsibilities"`
	CommonQuestions  []string `json:"common_questions"`
}

// IndustryTemplate lists concerns specific to an industry.
type IndustryTemplate struct {
	KeyConcerns          []string `json:"key_concerns"`
	SpecializedKnowledge []string `json:"specialized_knowledge"`
}

// ExperienceLevel describes what is expected at a seniority level.
type ExperienceLevel struct {
	YearsExperience string   `json:"years_experience"`
	Expectations    []string `json:"expectations"`
}

// Catalogue is the set of known roles, industries and levels.
type Catalogue struct {
	Roles            map[string]RoleTemplate     `json:"roles"`
	Industries       map[string]IndustryTemplate `json:"industries"`
	ExperienceLevels map[string]ExperienceLevel  `json:"experience_levels"`
}

// Templates returns a fresh copy of the built-in catalogue.
func Templates() Catalogue {
	return Catalogue{
		Roles: map[string]RoleTemplate{
			"Software Engineer": {
				Skills:           []string{"Programming languages", "Algorithms", "Data structures", "Software design", "Problem-solving"},
				Responsibilities: []string{"Develop applications", "Debug code", "Optimize performance", "Collaborate with team members"},
				CommonQuestions: []string{
					"Explain a complex technical project you worked on recently.",
					"How do you approach debugging a complex issue?",
					"Describe your experience with [specific technology].",
				},
			},
			"Product Manager": {
				Skills:           []string{"Strategic thinking", "User experience", "Market research", "Data analysis", "Communication"},
				Responsibilities: []string{"Define product roadmap", "Gather requirements", "Coordinate with stakeholders", "Analyze market trends"},
				CommonQuestions: []string{
					"How do you prioritize features for a product?",
					"Describe a time when you had to make a difficult product decision.",
					"How do you measure product success?",
				},
			},
			"Data Scientist": {
				Skills:           []string{"Statistical analysis", "Machine learning", "Data visualization", "Programming", "Problem-solving"},
				Responsibilities: []string{"Analyze data", "Build predictive models", "Extract insights", "Present findings"},
				CommonQuestions: []string{
					"Explain a data project where you found unexpected insights.",
					"How do you approach a new dataset?",
					"Describe your experience with [specific ML technique].",
				},
			},
		},
		Industries: map[string]IndustryTemplate{
			"Healthcare": {
				KeyConcerns:          []string{"HIPAA compliance", "Patient data security", "Clinical workflows", "Healthcare regulations"},
				SpecializedKnowledge: []string{"Medical terminology", "Health IT systems", "Care delivery models"},
			},
			"Finance": {
				KeyConcerns:          []string{"Security", "Compliance", "Risk management", "High performance systems"},
				SpecializedKnowledge: []string{"Financial regulations", "Market structures", "Trading systems"},
			},
			"E-commerce": {
				KeyConcerns:          []string{"User experience", "Conversion optimization", "Scalability", "Payment processing"},
				SpecializedKnowledge: []string{"Consumer behavior", "Marketing analytics", "Inventory management"},
			},
		},
		ExperienceLevels: map[string]ExperienceLevel{
			"Entry-level": {YearsExperience: "0-2", Expectations: []string{"Fundamental knowledge", "Willingness to learn", "Basic technical skills", "Academic projects"}},
			"Mid-level":   {YearsExperience: "3-5", Expectations: []string{"Practical experience", "Independent work", "Technical proficiency", "Some leadership"}},
			"Senior":      {YearsExperience: "6+", Expectations: []string{"Deep expertise", "Leadership", "Strategic thinking", "Mentoring", "Complex problem-solving"}},
		},
	}
}

func lookup[T any](m map[string]T, name string) (T, bool) {
	name = strings.TrimSpace(name)
	for key, value := range m {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	var zero T
	return zero, false
}

// roleContext renders the catalogue entries that match the request, one line
// each. It is empty when nothing matches.
func (c Catalogue) roleContext(role, industry, level string) string {
	var b strings.Builder
	if t, ok := lookup(c.Roles, role); ok {
		fmt.Fprintf(&b, "Key skills for this role: %s\n", strings.Join(t.Skills, ", "))
		fmt.Fprintf(&b, "Typical responsibilities: %s\n", strings.Join(t.Responsibilities, ", "))
	}
	if t, ok := lookup(c.Industries, industry); ok {
		fmt.Fprintf(&b, "Industry concerns: %s\n", strings.Join(t.KeyConcerns, ", "))
		fmt.Fprintf(&b, "Specialized knowledge: %s\n", strings.Join(t.SpecializedKnowledge, ", "))
	}
	if t, ok := lookup(c.ExperienceLevels, level); ok {
		fmt.Fprintf(&b, "Expected at this level (%s years): %s\n", t.YearsExperience, strings.Join(t.Expectations, ", "))
	}
	return b.String()
}
