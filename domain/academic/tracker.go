package academic

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cagandemirsamli/personalassistant/store"
)

// DateLayout is the layout of deadlines and exam dates.
const DateLayout = "2006-01-02"

// urgentDays is how close a pending deadline must be to get the URGENT alert.
const urgentDays = 2

// Record is one assignment or exam, keyed by its context under a course.
type Record map[string]any

// Book is a document of records grouped by course: {COURSE: {CONTEXT: Record}}.
type Book map[string]map[string]Record

// kind describes one tracked document: assignments or exams.
type kind struct {
	document string
	noun     string // "Assignment"
	plural   string // "assignments"
	// dateField holds the due date in each record.
	dateField string
	dateLabel string // "due", "on"
	// legacyContext names the field carrying the context in legacy list records.
	legacyContext string
}

var (
	assignmentKind = kind{
		document:      AssignmentDocument,
		noun:          "Assignment",
		plural:        "assignments",
		dateField:     "deadline",
		dateLabel:     "due",
		legacyContext: "heading",
	}
	examKind = kind{
		document:      ExamDocument,
		noun:          "Exam",
		plural:        "exams",
		dateField:     "date",
		dateLabel:     "on",
		legacyContext: "context",
	}
)

func (t *Tools) load(k kind) Book {
	book := Book{}
	c := t.store.Load(k.document)
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		entry, ok := c[key].(map[string]any)
		if !ok {
			continue
		}
		if isRecord(k, entry) {
			// legacy list element, re-keyed by the store; a repeated
			// course/context pair keeps the store key as its context
			course := upperOr(entry["course"], "UNKNOWN")
			context := upperOr(entry[k.legacyContext], strings.ToUpper(key))
			if _, taken := book[course][context]; taken {
				context = strings.ToUpper(key)
			}
			book.put(course, context, Record(entry))
			continue
		}
		for context, raw := range entry {
			if rec, ok := raw.(map[string]any); ok {
				book.put(key, context, Record(rec))
			}
		}
	}
	return book
}

func (t *Tools) save(k kind, book Book) error {
	c := make(store.Collection, len(book))
	for course, contexts := range book {
		inner := make(map[string]any, len(contexts))
		for context, rec := range contexts {
			inner[context] = map[string]any(rec)
		}
		c[course] = inner
	}
	return t.store.Save(k.document, c)
}

func (b Book) put(course, context string, rec Record) {
	if b[course] == nil {
		b[course] = map[string]Record{}
	}
	b[course][context] = rec
}

// lookup resolves course and context, or returns the not-found text.
func (b Book) lookup(k kind, course, context string) (Record, string) {
	if len(b) == 0 {
		return nil, fmt.Sprintf("No %s found.", k.plural)
	}
	contexts, ok := b[strings.ToUpper(course)]
	if !ok {
		return nil, fmt.Sprintf("No %s found for course '%s'.", k.plural, course)
	}
	rec, ok := contexts[strings.ToUpper(context)]
	if !ok {
		return nil, fmt.Sprintf("%s '%s' not found in course '%s'.", k.noun, context, course)
	}
	return rec, ""
}

func (t *Tools) create(k kind, course, context, date string, rec Record) (string, error) {
	courseKey, contextKey := strings.ToUpper(course), strings.ToUpper(context)
	book := t.load(k)
	if existing, ok := book[courseKey][contextKey]; ok {
		return fmt.Sprintf("%s '%s' for %s already exists (%s %v).",
			k.noun, context, course, k.dateLabel, existing[k.dateField]), nil
	}

	book.put(courseKey, contextKey, rec)
	if err := t.save(k, book); err != nil {
		return "", err
	}
	t.logger.Debug("academic.create", "document", k.document, "course", courseKey, "context", contextKey)
	return fmt.Sprintf("%s '%s' for %s (%s %s) added successfully!", k.noun, context, course, k.dateLabel, date), nil
}

func (t *Tools) list(k kind, showCompleted bool) string {
	book := t.load(k)
	if len(book) == 0 {
		return fmt.Sprintf("No %s found.", k.plural)
	}

	status := "pending"
	if showCompleted {
		status = "completed"
	}
	today := dateOnly(t.now())

	var b strings.Builder
	for _, course := range sortedKeys(book) {
		var lines []string
		for _, context := range sortedKeys(book[course]) {
			rec := book[course][context]
			if completed(rec) != showCompleted {
				continue
			}
			lines = append(lines, t.describe(k, context, rec, today, showCompleted))
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:", course)
		for _, line := range lines {
			b.WriteString("\n- " + line)
		}
	}

	if b.Len() == 0 {
		return fmt.Sprintf("No %s %s found.", status, k.plural)
	}
	return strings.ToUpper(status[:1]) + status[1:] + " " + k.plural + ":" + b.String()
}

func (t *Tools) describe(k kind, context string, rec Record, today time.Time, completedList bool) string {
	date, _ := rec[k.dateField].(string)
	line := fmt.Sprintf("%s: %s %s", context, k.dateLabel, date)
	if grade, ok := rec["grade"]; ok && grade != nil {
		line += fmt.Sprintf(", grade %v", grade)
	}
	if completedList {
		return line
	}

	days, ok := DaysLeft(date, today)
	if !ok {
		return line + " (date unknown)"
	}
	switch {
	case days < 0:
		return line + fmt.Sprintf(" (%s overdue) OVERDUE", plural(-days, "day"))
	case days <= urgentDays:
		return line + fmt.Sprintf(" (%s left) URGENT", plural(days, "day"))
	default:
		return line + fmt.Sprintf(" (%s left)", plural(days, "day"))
	}
}

func (t *Tools) remove(k kind, course, context string) (string, error) {
	book := t.load(k)
	if _, msg := book.lookup(k, course, context); msg != "" {
		return msg, nil
	}

	courseKey := strings.ToUpper(course)
	delete(book[courseKey], strings.ToUpper(context))
	if len(book[courseKey]) == 0 {
		delete(book, courseKey)
	}
	if err := t.save(k, book); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s '%s' from course '%s' removed successfully.", k.noun, context, course), nil
}

func (t *Tools) reschedule(k kind, course, context, newDate string) (string, error) {
	book := t.load(k)
	rec, msg := book.lookup(k, course, context)
	if msg != "" {
		return msg, nil
	}

	prev := rec[k.dateField]
	rec[k.dateField] = newDate
	if err := t.save(k, book); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s '%s' from '%s' %s updated: %v → %s", k.noun, context, course, k.dateField, prev, newDate), nil
}

func (t *Tools) complete(k kind, course, context string) (string, error) {
	book := t.load(k)
	rec, msg := book.lookup(k, course, context)
	if msg != "" {
		return msg, nil
	}
	if completed(rec) {
		return fmt.Sprintf("%s '%s' from course '%s' is already marked as completed.", k.noun, context, course), nil
	}

	rec["completed"] = true
	if err := t.save(k, book); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s '%s' from course '%s' marked as completed!", k.noun, context, course), nil
}

// DaysLeft returns the whole days from today until date.
func DaysLeft(date string, today time.Time) (int, bool) {
	due, err := time.ParseInLocation(DateLayout, date, today.Location())
	if err != nil {
		return 0, false
	}
	return int(math.Round(due.Sub(dateOnly(today)).Hours() / 24)), true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isRecord(k kind, entry map[string]any) bool {
	_, hasDate := entry[k.dateField].(string)
	_, hasCompleted := entry["completed"].(bool)
	return hasDate || hasCompleted
}

func completed(rec Record) bool {
	done, _ := rec["completed"].(bool)
	return done
}

func upperOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return strings.ToUpper(s)
	}
	return fallback
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
