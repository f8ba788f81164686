package academic

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/store"
)

// Document names inside the data directory.
const (
	AssignmentDocument = "assignments"
	ExamDocument       = "exams"
)

// Options configures Tools.
type Options struct {
	// Now supplies the current date for days-left computations.
	Now    func() time.Time
	Logger logging.Logger
}

// Tools implements assignment and exam tracking over the document store.
type Tools struct {
	store  *store.Store
	now    func() time.Time
	logger logging.Logger
}

// NewTools creates the academic tool set backed by s. The store should be
// configured with LegacyKeyFuncs so that old list documents load; see
// RegisterLegacyKeys.
func NewTools(s *store.Store, optFns ...func(o *Options)) *Tools {
	opts := Options{Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tools{store: s, now: opts.Now, logger: opts.Logger}
}

// RegisterLegacyKeys installs the key functions for legacy list documents.
func RegisterLegacyKeys(o *store.Options) {
	o.LegacyKeys[AssignmentDocument] = store.AssignmentKey
	o.LegacyKeys[ExamDocument] = store.ExamKey
}

// SetAssignment adds an assignment unless one with the same course and name exists.
func (t *Tools) SetAssignment(course, context, deadline string) (string, error) {
	if deadline == "" {
		deadline = t.now().Format(DateLayout)
	}
	return t.create(assignmentKind, course, context, deadline, Record{
		"deadline":  deadline,
		"completed": false,
	})
}

// GetAssignments lists pending or completed assignments; pending ones carry
// days left and an URGENT or OVERDUE alert.
func (t *Tools) GetAssignments(showCompleted bool) string {
	return t.list(assignmentKind, showCompleted)
}

// RemoveAssignment deletes an assignment.
func (t *Tools) RemoveAssignment(course, context string) (string, error) {
	return t.remove(assignmentKind, course, context)
}

// UpdateAssignment moves an assignment's deadline.
func (t *Tools) UpdateAssignment(course, context, newDeadline string) (string, error) {
	return t.reschedule(assignmentKind, course, context, newDeadline)
}

// CompleteAssignment marks an assignment as completed.
func (t *Tools) CompleteAssignment(course, context string) (string, error) {
	return t.complete(assignmentKind, course, context)
}

// SetExam adds an exam unless one with the same course and name exists.
func (t *Tools) SetExam(course, context, date string) (string, error) {
	if date == "" {
		date = t.now().Format(DateLayout)
	}
	return t.create(examKind, course, context, date, Record{
		"date":      date,
		"completed": false,
		"grade":     nil,
	})
}

// GetExams lists pending or completed exams.
func (t *Tools) GetExams(showCompleted bool) string {
	return t.list(examKind, showCompleted)
}

// RemoveExam deletes an exam.
func (t *Tools) RemoveExam(course, context string) (string, error) {
	return t.remove(examKind, course, context)
}

// UpdateExam moves an exam's date.
func (t *Tools) UpdateExam(course, context, newDate string) (string, error) {
	return t.reschedule(examKind, course, context, newDate)
}

// CompleteExam marks an exam as taken.
func (t *Tools) CompleteExam(course, context string) (string, error) {
	return t.complete(examKind, course, context)
}

// EnterExamScore records a grade once. Completion state is left alone.
func (t *Tools) EnterExamScore(course, context string, grade float64) (string, error) {
	book := t.load(examKind)
	rec, msg := book.lookup(examKind, course, context)
	if msg != "" {
		return msg, nil
	}
	if current, ok := rec["grade"]; ok && current != nil {
		return fmt.Sprintf("A grade for exam '%s' from course '%s' is already entered. Current grade: %v", context, course, current), nil
	}

	rec["grade"] = grade
	if err := t.save(examKind, book); err != nil {
		return "", err
	}
	return fmt.Sprintf("Grade '%s' successfully added for exam '%s' of '%s'.",
		strconv.FormatFloat(grade, 'f', -1, 64), context, course), nil
}
