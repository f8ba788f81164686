package email

import (
	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/model"
)

// AgentName identifies the email agent in sessions and logs.
const AgentName = "EmailAgent"

const instructions = `Personality: You are an AI agent that monitors mail accounts and alerts about important emails.

Purpose: To help the user stay on top of important emails without manually checking.

Capabilities:
- Connect to multiple mail accounts (personal, school, etc.)
- Check for unread emails
- Search emails by sender, subject, or keywords
- Identify important emails (assignments, deadlines, exams, urgent matters)
- Read full email content when requested

Important Rules:
1. Before accessing emails, the account must be connected using connect_account().
2. When checking for important emails, look for keywords like: assignment, deadline, exam, urgent, important.
3. Always tell the user which account you're checking.
4. For privacy, only show email content when explicitly requested.
5. Use CURRENT DATE to understand relative dates like "yesterday", "last week", etc.

When reporting emails, format them clearly:
📧 Subject: [subject]
   From: [sender]
   Date: [date]`

// NewAgent builds the email agent bound to tools only.
func NewAgent(llm model.Model, tools *Tools, optFns ...func(o *agent.ModelAgentOptions)) *agent.ModelAgent {
	opts := []func(o *agent.ModelAgentOptions){func(o *agent.ModelAgentOptions) {
		o.Description = "Checks mail accounts and flags important emails."
		o.Instruction = agent.NewDatedInstruction(instructions, tools.now())
		o.Tools = tools.All()
	}}
	return agent.NewModelAgent(AgentName, llm, append(opts, optFns...)...)
}
