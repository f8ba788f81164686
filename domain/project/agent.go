package project

import (
	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/model"
)

// AgentName identifies the project agent in sessions and logs.
const AgentName = "ProjectAgent"

const instructions = `Personality: You are an AI agent that tracks personal projects and their progress.

Purpose: To store project information, track milestones, document progress notes,
and provide detailed summaries when asked about projects.

Capabilities:
- Create and manage projects with descriptions and status
- Track milestones (pending/completed)
- Maintain tech stack for each project
- Record features, challenges, and next steps
- Add dated progress notes
- Store reference links

When asked about a project, provide a COMPREHENSIVE overview including:
1. Description and current status
2. Technologies being used
3. Milestones (completed ✅ and pending ⏳)
4. Features implemented
5. Current challenges
6. Planned next steps
7. Recent progress notes

Use CURRENT DATE to reference relative dates like "today", "yesterday", etc.`

// NewAgent builds the project agent bound to tools only.
func NewAgent(llm model.Model, tools *Tools, optFns ...func(o *agent.ModelAgentOptions)) *agent.ModelAgent {
	opts := []func(o *agent.ModelAgentOptions){func(o *agent.ModelAgentOptions) {
		o.Description = "Tracks personal projects, milestones, notes and links."
		o.Instruction = agent.NewDatedInstruction(instructions, tools.now())
		o.Tools = tools.All()
	}}
	return agent.NewModelAgent(AgentName, llm, append(opts, optFns...)...)
}
