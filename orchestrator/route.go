package orchestrator

import (
	"fmt"

	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

// Route names a dispatch target.
type Route string

// Known routes. RouteGeneral is answered by the router itself.
const (
	RouteExpense  Route = "expense"
	RouteAcademic Route = "academic"
	RouteProject  Route = "project"
	RouteEmail    Route = "email"
	RouteGeneral  Route = "general"
)

// DomainRoutes lists the routes served by domain agents, in dispatch order.
var DomainRoutes = []Route{RouteExpense, RouteAcademic, RouteProject, RouteEmail}

// AlreadyDecided is returned to the model when it calls a second dispatch
// tool within one request.
const AlreadyDecided = "A routing decision has already been made for this request."

// Decision is the outcome of one routing turn.
type Decision struct {
	Route Route
	// Payload is the user_request argument for domain routes and the
	// response argument for RouteGeneral.
	Payload string
}

type routeArgs struct {
	UserRequest string `json:"user_request" description:"The user's complete original request"`
}

type generalArgs struct {
	Response string `json:"response" description:"A friendly reply for the user"`
}

var dispatchTools = map[Route]struct {
	name, label, description string
}{
	RouteExpense: {"route_to_expense", "Expense Agent", `Route to the Expense Agent for money-related queries.
Use for: expenses, budgets, spending, costs, money tracking, payments.
Examples: "add expense", "create budget", "how much spent", "TL", "dollars"`},
	RouteAcademic: {"route_to_academic", "Academic Agent", `Route to the Academic Agent for school-related queries.
Use for: assignments, homework, exams, deadlines, grades, courses, classes.
Examples: "add assignment", "exam date", "deadline", "grade", "course"`},
	RouteProject: {"route_to_project", "Project Agent", `Route to the Project Agent for personal project tracking.
Use for: projects, milestones, features, tech stack, development progress.
Examples: "my projects", "add milestone", "project status", "features"`},
	RouteEmail: {"route_to_email", "Email Agent", `Route to the Email Agent for mail-related queries.
Use for: emails, inbox, unread messages, important emails, check mail.
Examples: "check emails", "unread", "important emails", "inbox"`},
}

const generalDescription = `Respond directly for general questions, greetings, or unclear requests.
Use for: greetings, general questions, clarifications, asking what you can do.
Examples: "hello", "what can you do", "help", unclear requests`

// tools builds the five dispatch tools. Each records into the router's
// decision book under the current run ID; only the first call counts.
func (r *Router) tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(DomainRoutes)+1)
	for _, route := range DomainRoutes {
		spec := dispatchTools[route]
		out = append(out, tool.NewTypedTool(spec.name, spec.description,
			func(tc *core.ToolContext, a routeArgs) (string, error) {
				if !r.record(tc.RunID(), Decision{Route: route, Payload: a.UserRequest}) {
					return AlreadyDecided, nil
				}
				tc.SkipSummarization()
				return fmt.Sprintf("Routing to %s: %s", spec.label, a.UserRequest), nil
			}))
	}
	out = append(out, tool.NewTypedTool("general_response", generalDescription,
		func(tc *core.ToolContext, a generalArgs) (string, error) {
			if !r.record(tc.RunID(), Decision{Route: RouteGeneral, Payload: a.Response}) {
				return AlreadyDecided, nil
			}
			return a.Response, nil
		}))
	return out
}
