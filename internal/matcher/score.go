package matcher

import (
	"math"
	"regexp"
	"strings"
)

// Match statuses, from best to worst.
const (
	StatusExcellent       = "Excellent Match"
	StatusMatched         = "Matched"
	StatusPotential       = "Potential"
	StatusNeedsReview     = "Needs Review"
	StatusNotQualified    = "Not Qualified"
	StatusProcessingError = "Processing Error"
)

// Status buckets a match score in [0,100].
func Status(score float64) string {
	switch {
	case score >= 85:
		return StatusExcellent
	case score >= 70:
		return StatusMatched
	case score >= 50:
		return StatusPotential
	case score >= 30:
		return StatusNeedsReview
	default:
		return StatusNotQualified
	}
}

// SkillScore is the share of required skills the resume covers.
func SkillScore(resumeSkills, jobSkills []string) float64 {
	return float64(len(intersect(resumeSkills, jobSkills))) / float64(max(len(jobSkills), 1))
}

// intersect returns the job skills present in resumeSkills, keeping the order
// of jobSkills. Comparison ignores case.
func intersect(resumeSkills, jobSkills []string) []string {
	have := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		have[strings.ToLower(s)] = struct{}{}
	}
	var matched []string
	seen := make(map[string]struct{}, len(jobSkills))
	for _, s := range jobSkills {
		key := strings.ToLower(s)
		if _, ok := have[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matched = append(matched, s)
	}
	return matched
}

// Weights balances the skill and semantic parts of a score.
type Weights struct {
	Skill    float64
	Semantic float64
}

// Combine returns the weighted score on a 0-100 scale rounded to two
// decimals. Weights are normalised when they do not sum to one and both
// inputs are clamped to [0,1].
func (w Weights) Combine(skill, semantic float64) float64 {
	total := w.Skill + w.Semantic
	if total <= 0 {
		return 0
	}
	v := (w.Skill*clamp01(skill) + w.Semantic*clamp01(semantic)) / total
	return round2(v * 100)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// cosine32 is the cosine similarity of two embedding vectors. Vectors of
// different length or zero norm score 0.
func cosine32(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var wordPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#.]*`)

func termFrequencies(text string) map[string]float64 {
	tf := make(map[string]float64)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		tf[strings.TrimRight(w, ".")]++
	}
	return tf
}

// termCosine compares two texts by the cosine of their word counts. It
// stands in for embeddings when none are available.
func termCosine(a, b string) float64 {
	ta, tb := termFrequencies(a), termFrequencies(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var dot, na, nb float64
	for w, x := range ta {
		na += x * x
		dot += x * tb[w]
	}
	for _, y := range tb {
		nb += y * y
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
