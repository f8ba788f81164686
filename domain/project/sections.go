package project

import (
	"fmt"
	"slices"
	"strings"
)

// AddFeature appends a feature.
func (t *Tools) AddFeature(name, feature string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Features = append(p.Features, feature)
		return fmt.Sprintf("Feature '%s' added to '%s'.", feature, key), true
	})
}

// RemoveFeature removes the first feature equal to feature.
func (t *Tools) RemoveFeature(name, feature string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		var ok bool
		if p.Features, ok = removeExact(p.Features, feature); !ok {
			return fmt.Sprintf("Feature '%s' not found in project '%s'.", feature, name), false
		}
		return fmt.Sprintf("Feature '%s' removed from '%s'.", feature, key), true
	})
}

// UpdateFeature replaces the first feature equal to oldFeature.
func (t *Tools) UpdateFeature(name, oldFeature, newFeature string) (string, error) {
	return t.update(name, func(_ string, p *Project) (string, bool) {
		if !replaceExact(p.Features, oldFeature, newFeature) {
			return fmt.Sprintf("Feature '%s' not found in project '%s'.", oldFeature, name), false
		}
		return fmt.Sprintf("Feature updated: '%s' → '%s'.", oldFeature, newFeature), true
	})
}

// AddMilestone appends a milestone. A completed milestone without a date is
// stamped with today.
func (t *Tools) AddMilestone(name, milestone, status, completedDate string) (string, error) {
	if status == "" {
		status = "pending"
	}
	return t.update(name, func(key string, p *Project) (string, bool) {
		m := Milestone{Name: milestone, Status: status}
		switch {
		case completedDate != "":
			m.CompletedDate = &completedDate
		case status == StatusCompleted:
			today := t.today()
			m.CompletedDate = &today
		}
		p.Milestones = append(p.Milestones, m)
		return fmt.Sprintf("Milestone '%s' added to '%s'.", milestone, key), true
	})
}

// CompleteMilestone marks the first milestone matching milestone, ignoring case.
func (t *Tools) CompleteMilestone(name, milestone, completedDate string) (string, error) {
	if completedDate == "" {
		completedDate = t.today()
	}
	return t.update(name, func(_ string, p *Project) (string, bool) {
		for i := range p.Milestones {
			m := &p.Milestones[i]
			if !strings.EqualFold(m.Name, milestone) {
				continue
			}
			if m.Status == StatusCompleted {
				return fmt.Sprintf("Milestone '%s' is already completed.", milestone), false
			}
			m.Status = StatusCompleted
			m.CompletedDate = &completedDate
			return fmt.Sprintf("Milestone '%s' marked as completed.", milestone), true
		}
		return fmt.Sprintf("Milestone '%s' not found in project '%s'.", milestone, name), false
	})
}

// RemoveMilestone removes every milestone matching milestone, ignoring case.
func (t *Tools) RemoveMilestone(name, milestone string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		before := len(p.Milestones)
		p.Milestones = slices.DeleteFunc(p.Milestones, func(m Milestone) bool {
			return strings.EqualFold(m.Name, milestone)
		})
		if len(p.Milestones) == before {
			return fmt.Sprintf("Milestone '%s' not found in project '%s'.", milestone, name), false
		}
		return fmt.Sprintf("Milestone '%s' removed from '%s'.", milestone, key), true
	})
}

// AddNote appends a dated note, dated today when date is empty.
func (t *Tools) AddNote(name, content, date string) (string, error) {
	if date == "" {
		date = t.today()
	}
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Notes = append(p.Notes, Note{Date: date, Content: content})
		return fmt.Sprintf("Note added to '%s'.", key), true
	})
}

// RemoveNote removes every note whose content matches, ignoring case.
func (t *Tools) RemoveNote(name, content string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		before := len(p.Notes)
		p.Notes = slices.DeleteFunc(p.Notes, func(n Note) bool {
			return strings.EqualFold(n.Content, content)
		})
		if len(p.Notes) == before {
			return fmt.Sprintf("Note not found in project '%s'.", name), false
		}
		return fmt.Sprintf("Note removed from '%s'.", key), true
	})
}

// UpdateNote rewrites the first matching note and keeps its date.
func (t *Tools) UpdateNote(name, oldContent, newContent string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		for i := range p.Notes {
			if strings.EqualFold(p.Notes[i].Content, oldContent) {
				p.Notes[i].Content = newContent
				return fmt.Sprintf("Note updated in '%s'.", key), true
			}
		}
		return fmt.Sprintf("Note not found in project '%s'.", name), false
	})
}

// AddChallenge documents a challenge.
func (t *Tools) AddChallenge(name, challenge string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Challenges = append(p.Challenges, challenge)
		return fmt.Sprintf("Challenge added to '%s'.", key), true
	})
}

// RemoveChallenge removes the first challenge equal to challenge.
func (t *Tools) RemoveChallenge(name, challenge string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		var ok bool
		if p.Challenges, ok = removeExact(p.Challenges, challenge); !ok {
			return fmt.Sprintf("Challenge not found in project '%s'.", name), false
		}
		return fmt.Sprintf("Challenge removed from '%s'.", key), true
	})
}

// UpdateChallenge replaces the first challenge equal to oldChallenge.
func (t *Tools) UpdateChallenge(name, oldChallenge, newChallenge string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		if !replaceExact(p.Challenges, oldChallenge, newChallenge) {
			return fmt.Sprintf("Challenge not found in project '%s'.", name), false
		}
		return fmt.Sprintf("Challenge updated in '%s'.", key), true
	})
}

// AddTechnology adds to the tech stack.
func (t *Tools) AddTechnology(name, tech string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Technologies = append(p.Technologies, tech)
		return fmt.Sprintf("Technology '%s' added to '%s'.", tech, key), true
	})
}

// RemoveTechnology removes the first technology equal to tech.
func (t *Tools) RemoveTechnology(name, tech string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		var ok bool
		if p.Technologies, ok = removeExact(p.Technologies, tech); !ok {
			return fmt.Sprintf("Technology '%s' not found in project '%s'.", tech, name), false
		}
		return fmt.Sprintf("Technology '%s' removed from '%s'.", tech, key), true
	})
}

// AddLink stores url under label, replacing any previous link with that label.
func (t *Tools) AddLink(name, label, url string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.Links[label] = url
		return fmt.Sprintf("Link '%s' added to '%s'.", label, key), true
	})
}

// UpdateLink changes the url of an existing link.
func (t *Tools) UpdateLink(name, label, newURL string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		if _, ok := p.Links[label]; !ok {
			return fmt.Sprintf("Link '%s' not found in project '%s'.", label, name), false
		}
		p.Links[label] = newURL
		return fmt.Sprintf("Link '%s' updated in '%s'.", label, key), true
	})
}

// RemoveLink deletes a link.
func (t *Tools) RemoveLink(name, label string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		if _, ok := p.Links[label]; !ok {
			return fmt.Sprintf("Link '%s' not found in project '%s'.", label, name), false
		}
		delete(p.Links, label)
		return fmt.Sprintf("Link '%s' removed from '%s'.", label, key), true
	})
}

// AddNextStep appends a planned next step.
func (t *Tools) AddNextStep(name, step string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		p.NextSteps = append(p.NextSteps, step)
		return fmt.Sprintf("Next step added to '%s'.", key), true
	})
}

// RemoveNextStep removes the first next step equal to step.
func (t *Tools) RemoveNextStep(name, step string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		var ok bool
		if p.NextSteps, ok = removeExact(p.NextSteps, step); !ok {
			return fmt.Sprintf("Next step not found in project '%s'.", name), false
		}
		return fmt.Sprintf("Next step removed from '%s'.", key), true
	})
}

// UpdateNextStep replaces the first next step equal to oldStep.
func (t *Tools) UpdateNextStep(name, oldStep, newStep string) (string, error) {
	return t.update(name, func(key string, p *Project) (string, bool) {
		if !replaceExact(p.NextSteps, oldStep, newStep) {
			return fmt.Sprintf("Next step not found in project '%s'.", name), false
		}
		return fmt.Sprintf("Next step updated in '%s'.", key), true
	})
}

func removeExact(items []string, item string) ([]string, bool) {
	idx := slices.Index(items, item)
	if idx < 0 {
		return items, false
	}
	return slices.Delete(items, idx, idx+1), true
}

func replaceExact(items []string, old, replacement string) bool {
	idx := slices.Index(items, old)
	if idx < 0 {
		return false
	}
	items[idx] = replacement
	return true
}
