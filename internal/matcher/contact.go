package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	namePattern    = regexp.MustCompile(`(?:^|\n)\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*(?:\n|$)`)
	emailPattern   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	titlePattern   = regexp.MustCompile(`(?i)(?:job\s*title|position)\s*[:\-]?\s*(.+)`)
	companyPattern = regexp.MustCompile(`(?i)(?:company|organization|employer)\s*[:\-]?\s*(.+)`)
)

// maxTitleWords bounds a plausible job title; longer matches are body text.
const maxTitleWords = 8

// Contact is the candidate identity found in a resume.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
}

// FullName joins the first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ExtractContact takes the first line that looks like a capitalised name and
// the first email address.
func ExtractContact(text string) Contact {
	var c Contact
	if m := namePattern.FindStringSubmatch(text); m != nil {
		parts := strings.Fields(m[1])
		c.FirstName = parts[0]
		if len(parts) > 1 {
			c.LastName = strings.Join(parts[1:], " ")
		}
	}
	c.Email = emailPattern.FindString(text)
	return c
}

// JobInfo is the title and company read from a job description.
type JobInfo struct {
	Title   string
	Company string
}

// ExtractJobInfo reads "Job Title:" and "Company:" style lines, falling back
// to the given defaults.
func ExtractJobInfo(text, defaultTitle, defaultCompany string) JobInfo {
	info := JobInfo{Title: defaultTitle, Company: defaultCompany}

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		title := strings.TrimSpace(m[1])
		if title != "" && len(strings.Fields(title)) <= maxTitleWords &&
			!strings.HasPrefix(strings.ToLower(title), "responsibilities") {
			info.Title = title
		}
	}
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		if company := strings.TrimSpace(m[1]); company != "" {
			info.Company = company
		}
	}
	return info
}

// newID returns "<prefix>-<unix seconds>-<6 hex characters>".
func newID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%d-%s", prefix, now.Unix(), suffix)
}
