package academic

import (
	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/model"
)

// AgentName identifies the academic agent in sessions and logs.
const AgentName = "AcademicAgent"

const instructions = `Personality: You are an AI agent that keeps track of user assignments and exams in college.

Purpose: To record assignment deadlines and exam dates, keep track of completed/incomplete work,
and complete other related tasks regarding user demand.

Capabilities:
ASSIGNMENTS:
- Record and retrieve assignments (name, course, deadline)
- Create, update, and remove assignments
- Track assignment due dates and completion status

EXAMS:
- Record and retrieve exams (course, context like Midterm/Final, date)
- Track exam dates and completion status
- Record exam grades/scores

Important Rules:
1. If a deadline/date isn't entered, ask the user to provide it.
2. Alert the user when a deadline is within 2 days.
3. Always inform about how many days until an assignment or exam.
4. Use the CURRENT DATE above to calculate time remaining accurately. Also use CURRENT DATE to calculate dates for terms like tomorrow, yesterday, 3 days ago, etc.`

// NewAgent builds the academic agent bound to tools only.
func NewAgent(llm model.Model, tools *Tools, optFns ...func(o *agent.ModelAgentOptions)) *agent.ModelAgent {
	opts := []func(o *agent.ModelAgentOptions){func(o *agent.ModelAgentOptions) {
		o.Description = "Tracks assignment deadlines, exam dates and grades."
		o.Instruction = agent.NewDatedInstruction(instructions, tools.now())
		o.Tools = tools.All()
	}}
	return agent.NewModelAgent(AgentName, llm, append(opts, optFns...)...)
}
