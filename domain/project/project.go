package project

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/store"
)

// Document is the name of the projects document.
const Document = "projects"

// DateLayout is the layout of every project date.
const DateLayout = "2006-01-02"

// Project statuses.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
)

// Milestone is a named checkpoint, pending until completed.
type Milestone struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	CompletedDate *string `json:"completed_date"`
}

// Note is a dated progress note.
type Note struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Project is one record of the projects document.
type Project struct {
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	CreatedDate  string            `json:"created_date"`
	Features     []string          `json:"features"`
	Milestones   []Milestone       `json:"milestones"`
	Notes        []Note            `json:"notes"`
	Challenges   []string          `json:"challenges"`
	Technologies []string          `json:"technologies"`
	Links        map[string]string `json:"links"`
	NextSteps    []string          `json:"next_steps"`
}

func (p *Project) normalize() {
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Milestones == nil {
		p.Milestones = []Milestone{}
	}
	if p.Notes == nil {
		p.Notes = []Note{}
	}
	if p.Challenges == nil {
		p.Challenges = []string{}
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Links == nil {
		p.Links = map[string]string{}
	}
	if p.NextSteps == nil {
		p.NextSteps = []string{}
	}
}

// Key derives the record key of a project name: upper case, spaces to underscores.
func Key(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), " ", "_")
}

// Options configures Tools.
type Options struct {
	Now    func() time.Time
	Logger logging.Logger
}

// Tools implements project tracking over the document store.
type Tools struct {
	store  *store.Store
	now    func() time.Time
	logger logging.Logger
}

// NewTools creates the project tool set backed by s.
func NewTools(s *store.Store, optFns ...func(o *Options)) *Tools {
	opts := Options{Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tools{store: s, now: opts.Now, logger: opts.Logger}
}

func (t *Tools) load() map[string]*Project {
	projects := map[string]*Project{}
	t.store.LoadInto(Document, &projects)
	for key, p := range projects {
		if p == nil {
			delete(projects, key)
			continue
		}
		p.normalize()
	}
	return projects
}

func (t *Tools) today() string { return t.now().Format(DateLayout) }

// update loads the named project and applies fn. The document is saved
// only when fn reports a change.
func (t *Tools) update(name string, fn func(key string, p *Project) (string, bool)) (string, error) {
	key := Key(name)
	projects := t.load()
	p, ok := projects[key]
	if !ok {
		return fmt.Sprintf("Project '%s' not found.", name), nil
	}

	msg, changed := fn(key, p)
	if !changed {
		return msg, nil
	}
	if err := t.store.SaveFrom(Document, projects); err != nil {
		return "", err
	}
	t.logger.Debug("project.update", "project", key)
	return msg, nil
}

// CreateProject adds a project in planning status.
func (t *Tools) CreateProject(name, description string) (string, error) {
	key := Key(name)
	projects := t.load()
	if _, ok := projects[key]; ok {
		return fmt.Sprintf("Project '%s' already exists.", name), nil
	}

	p := &Project{Description: description, Status: StatusPlanning, CreatedDate: t.today()}
	p.normalize()
	projects[key] = p
	if err := t.store.SaveFrom(Document, projects); err != nil {
		return "", err
	}
	return fmt.Sprintf("Project '%s' added successfully!", key), nil
}

// GetProjects lists projects, optionally only those with statusFilter.
func (t *Tools) GetProjects(statusFilter string) string {
	projects := t.load()
	if len(projects) == 0 {
		return "No projects found."
	}
	if statusFilter == "" {
		statusFilter = "all"
	}

	var b strings.Builder
	for _, key := range sortedKeys(projects) {
		p := projects[key]
		if statusFilter != "all" && p.Status != statusFilter {
			continue
		}
		fmt.Fprintf(&b, "\n- %s [%s]: %s", key, p.Status, p.Description)
	}
	if b.Len() == 0 {
		return fmt.Sprintf("No projects with status '%s' found.", statusFilter)
	}
	return "Projects:" + b.String()
}

// GetProjectDetails renders every section of a project.
func (t *Tools) GetProjectDetails(name string) string {
	key := Key(name)
	p, ok := t.load()[key]
	if !ok {
		return fmt.Sprintf("Project '%s' not found.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s\nDescription: %s\nStatus: %s\nCreated: %s", key, p.Description, p.Status, p.CreatedDate)

	section := func(title string, lines []string) {
		fmt.Fprintf(&b, "\n%s:", title)
		if len(lines) == 0 {
			b.WriteString(" none")
			return
		}
		for _, l := range lines {
			b.WriteString("\n- " + l)
		}
	}

	section("Technologies", p.Technologies)
	milestones := make([]string, len(p.Milestones))
	for i, m := range p.Milestones {
		if m.Status == StatusCompleted && m.CompletedDate != nil {
			milestones[i] = fmt.Sprintf("%s (completed %s)", m.Name, *m.CompletedDate)
			continue
		}
		milestones[i] = fmt.Sprintf("%s (%s)", m.Name, m.Status)
	}
	section("Milestones", milestones)
	section("Features", p.Features)
	section("Challenges", p.Challenges)
	section("Next steps", p.NextSteps)
	notes := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		notes[i] = n.Date + ": " + n.Content
	}
	section("Notes", notes)
	links := make([]string, 0, len(p.Links))
	for _, label := range sortedKeys(p.Links) {
		links = append(links, label+": "+p.Links[label])
	}
	section("Links", links)

	return b.String()
}

// UpdateProjectStatus sets a project's status.
func (t *Tools) UpdateProjectStatus(name, status string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Status = status
		return fmt.Sprintf("Status of '%s' successfully changed to '%s'.", key, status), true
	})
}

// UpdateProjectDescription replaces a project's description.
func (t *Tools) UpdateProjectDescription(name, description string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Description = description
		return fmt.Sprintf("Description of '%s' successfully changed to '%s'.", key, description), true
	})
}

// RemoveProject deletes a project.
func (t *Tools) RemoveProject(name string) (string, error) {
	key := Key(name)
	projects := t.load()
	if _, ok := projects[key]; !ok {
		return fmt.Sprintf("Project '%s' not found.", name), nil
	}
	delete(projects, key)
	if err := t.store.SaveFrom(Document, projects); err != nil {
		return "", err
	}
	return fmt.Sprintf("'%s' successfully removed from projects.", key), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
