package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"hirescope/internal/errors"
)

// DefaultSkills is used when no skills file is configured.
var DefaultSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Go", "Golang", "Rust",
	"C++", "C#", "Ruby", "PHP", "Swift", "Kotlin", "Scala", "SQL", "NoSQL",
	"HTML", "CSS", "Sass", "Tailwind CSS", "React", "React.js", "Redux",
	"Next.js", "Angular", "Vue", "Vue.js", "Node.js", "Express", "Django",
	"Flask", "FastAPI", "Spring", "Spring Boot", ".NET", "Rails", "GraphQL",
	"REST", "gRPC", "Docker", "Kubernetes", "Terraform", "Ansible", "AWS",
	"Azure", "GCP", "Linux", "Git", "GitHub", "GitLab", "Jenkins", "CI/CD",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "RabbitMQ",
	"Elasticsearch", "Spark", "Hadoop", "Airflow", "Pandas", "NumPy",
	"TensorFlow", "PyTorch", "Machine Learning", "Deep Learning",
	"Data Analysis", "Data Visualization", "Tableau", "Excel", "Figma",
	"Webpack", "Jest", "Cypress", "Selenium", "Microservices", "Agile",
	"Scrum", "Jira", "Communication", "Leadership", "Problem Solving",
}

// excludedSkill is never reported even when a catalogue lists it.
const excludedSkill = "skills"

// Catalog is the set of known skills. It is safe for concurrent use and can
// be swapped in place by Watch.
type Catalog struct {
	mu        sync.RWMutex
	canonical map[string]string
	phrases   []phrase
}

// phrase is a catalogue entry the token pattern cannot match whole, so it is
// searched for directly.
type phrase struct {
	name    string
	pattern *regexp.Regexp
}

// NewCatalog builds a catalogue from skill names. The first spelling of a
// name wins as its canonical form.
func NewCatalog(skills []string) *Catalog {
	c := &Catalog{}
	c.set(skills)
	return c
}

// LoadCatalog reads a skills file, or returns the default catalogue when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(DefaultSkills), nil
	}
	skills, err := readSkillsFile(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(skills), nil
}

// readSkillsFile accepts {"skills": [...]} or a bare JSON array.
func readSkillsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skills file %q: %w", path, err)
	}

	var wrapped struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Skills != nil {
		return wrapped.Skills, nil
	}
	var bare []string
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("skills file %q must hold a JSON array or {\"skills\": [...]}: %w", path, err)
	}
	return bare, nil
}

func (c *Catalog) set(skills []string) {
	canonical := make(map[string]string, len(skills))
	var phrases []phrase
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if skill == "" || key == excludedSkill {
			continue
		}
		if _, seen := canonical[key]; seen {
			continue
		}
		canonical[key] = skill
		if tokenPattern.FindString(skill) != skill {
			phrases = append(phrases, phrase{
				name:    skill,
				pattern: regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9_])` + regexp.QuoteMeta(skill) + `(?:[^A-Za-z0-9_]|$)`),
			})
		}
	}

	c.mu.Lock()
	c.canonical = canonical
	c.phrases = phrases
	c.mu.Unlock()
}

// Len returns the number of distinct skills.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.canonical)
}

// Lookup returns the canonical spelling of name.
func (c *Catalog) Lookup(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	skill, ok := c.canonical[strings.ToLower(strings.TrimSpace(name))]
	return skill, ok
}

// tokenPattern picks capitalised words and well-known technology spellings.
var tokenPattern = regexp.MustCompile(`\b(?:[A-Z][a-z]+|\b[A-Za-z]{2,}\+\+?|Node\.js|React\.js|TypeScript|JavaScript|HTML|CSS|Git)\b`)

// ExtractSkills returns the catalogue skills mentioned in text, in canonical
// spelling, de-duplicated and sorted.
func (c *Catalog) ExtractSkills(text string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(text, -1) {
		if skill, ok := c.canonical[strings.ToLower(token)]; ok {
			found[skill] = struct{}{}
		}
	}
	for _, p := range c.phrases {
		if p.pattern.MatchString(text) {
			found[p.name] = struct{}{}
		}
	}

	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// Watch reloads the catalogue from path whenever the file changes, until ctx
// is done. The directory is watched so editors that replace the file are
// picked up. A file that fails to parse leaves the current catalogue in place.
func (c *Catalog) Watch(ctx context.Context, path string, logger *errors.Logger) error {
	if path == "" {
		return fmt.Errorf("no skills file to watch")
	}
	if logger == nil {
		logger = errors.Discard()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve skills file %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	logger.Info("Watching skills file", "file", absPath)
	go c.watchLoop(ctx, watcher, absPath, logger)
	return nil
}

const reloadDebounce = 200 * time.Millisecond

func (c *Catalog) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, logger *errors.Logger) {
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.LogError(err, "Failed to close skills watcher")
		}
	}()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce = time.After(reloadDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.LogError(err, "Skills watcher error")
		case <-debounce:
			debounce = nil
			c.reload(path, logger)
		}
	}
}

func (c *Catalog) reload(path string, logger *errors.Logger) {
	skills, err := readSkillsFile(path)
	if err != nil {
		logger.LogError(err, "Skills reload failed, keeping current catalogue", "file", path)
		return
	}
	c.set(skills)
	logger.Info("Skills catalogue reloaded", "file", path, "skills", c.Len())
}
