package academic

import (
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type setAssignmentArgs struct {
	Course   string `json:"course" description:"The course name (e.g. CS101)"`
	Context  string `json:"context" description:"The assignment name: PS3, Homework 1, Project, etc."`
	Deadline string `json:"deadline" description:"The due date (YYYY-MM-DD)"`
}

type showArgs struct {
	ShowCompleted *bool `json:"show_completed,omitempty" description:"If true, show completed items. If false (default), show only pending ones."`
}

type itemArgs struct {
	Course  string `json:"course" description:"The course name"`
	Context string `json:"context" description:"The assignment or exam name (PS3, Midterm 1, Final, etc.)"`
}

type updateAssignmentArgs struct {
	Course      string `json:"course" description:"The course name"`
	Context     string `json:"context" description:"The assignment name"`
	NewDeadline string `json:"new_deadline" description:"The new due date (YYYY-MM-DD)"`
}

type setExamArgs struct {
	Course  string `json:"course" description:"The course name (e.g. CS101)"`
	Context string `json:"context" description:"The exam type: Midterm 1, Midterm 2, Final, etc."`
	Date    string `json:"date" description:"The date of the exam (YYYY-MM-DD)"`
}

type updateExamArgs struct {
	Course  string `json:"course" description:"The course name"`
	Context string `json:"context" description:"The exam type"`
	NewDate string `json:"new_date" description:"The new date of the exam (YYYY-MM-DD)"`
}

type scoreArgs struct {
	Course  string  `json:"course" description:"The course name"`
	Context string  `json:"context" description:"The exam type"`
	Grade   float64 `json:"grade" description:"The grade or score to enter"`
}

// All returns the assignment and exam tools in catalog order.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{
		tool.NewTypedTool("set_assignment", "Sets a new assignment for a course.",
			func(_ *core.ToolContext, a setAssignmentArgs) (string, error) {
				return t.SetAssignment(a.Course, a.Context, a.Deadline)
			}),
		tool.NewTypedTool("get_assignments", "Retrieve pending (default) or completed assignments with days left and alerts.",
			func(_ *core.ToolContext, a showArgs) (string, error) {
				return t.GetAssignments(a.ShowCompleted != nil && *a.ShowCompleted), nil
			}),
		tool.NewTypedTool("remove_assignment", "Removes an assignment (use for cancelled assignments only).",
			func(_ *core.ToolContext, a itemArgs) (string, error) {
				return t.RemoveAssignment(a.Course, a.Context)
			}),
		tool.NewTypedTool("update_assignment", "Updates the deadline of an assignment.",
			func(_ *core.ToolContext, a updateAssignmentArgs) (string, error) {
				return t.UpdateAssignment(a.Course, a.Context, a.NewDeadline)
			}),
		tool.NewTypedTool("complete_assignment", "Marks an assignment as completed.",
			func(_ *core.ToolContext, a itemArgs) (string, error) {
				return t.CompleteAssignment(a.Course, a.Context)
			}),
		tool.NewTypedTool("set_exam", "Sets a new exam for a course.",
			func(_ *core.ToolContext, a setExamArgs) (string, error) {
				return t.SetExam(a.Course, a.Context, a.Date)
			}),
		tool.NewTypedTool("get_exams", "Retrieve pending (default) or completed exams with days left and alerts.",
			func(_ *core.ToolContext, a showArgs) (string, error) {
				return t.GetExams(a.ShowCompleted != nil && *a.ShowCompleted), nil
			}),
		tool.NewTypedTool("remove_exam", "Removes an exam (use for cancelled exams only).",
			func(_ *core.ToolContext, a itemArgs) (string, error) {
				return t.RemoveExam(a.Course, a.Context)
			}),
		tool.NewTypedTool("update_exam", "Updates the date of an exam.",
			func(_ *core.ToolContext, a updateExamArgs) (string, error) {
				return t.UpdateExam(a.Course, a.Context, a.NewDate)
			}),
		tool.NewTypedTool("complete_exam", "Marks an exam as completed (taken).",
			func(_ *core.ToolContext, a itemArgs) (string, error) {
				return t.CompleteExam(a.Course, a.Context)
			}),
		tool.NewTypedTool("enter_exam_score", "Enters an exam grade or score.",
			func(_ *core.ToolContext, a scoreArgs) (string, error) {
				return t.EnterExamScore(a.Course, a.Context, a.Grade)
			}),
	}
}
