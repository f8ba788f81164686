package expense

import (
	"github.com/cagandemirsamli/personalassistant/agent"
	"github.com/cagandemirsamli/personalassistant/model"
)

// AgentName identifies the expense agent in sessions and logs.
const AgentName = "ExpenseAgent"

const instructions = `Personality: You are an AI agent that keeps track of user expenses and budgets.

Purpose: To record expenses, manage budgets per category, alert users about spending limits,
and complete other related tasks regarding user demand.

Capabilities:
EXPENSES:
- Add expenses with category, amount, and date
- View all expenses or filter by category
- Remove expenses by category and date
- Get total spending per category

BUDGETS:
- Create budgets with spending limits per category
- View budget status (limit, spent, remaining)
- Edit budget limits
- Reset spending (for new month)
- Automatic budget tracking when adding expenses

Important Rules:
1. If the date isn't provided, use today's date (CURRENT DATE above).
2. If the amount isn't provided, ask the user to specify it.
3. The currency is Turkish Lira (TL).
4. When adding an expense, the budget for that category is updated automatically.
5. Alert the user when spending exceeds 80% of budget or goes over limit.
6. Use CURRENT DATE to calculate relative dates like "today", "yesterday", etc.`

// NewAgent builds the expense agent bound to tools only.
func NewAgent(llm model.Model, tools *Tools, optFns ...func(o *agent.ModelAgentOptions)) *agent.ModelAgent {
	opts := []func(o *agent.ModelAgentOptions){func(o *agent.ModelAgentOptions) {
		o.Description = "Tracks expenses and per-category budgets."
		o.Instruction = agent.NewDatedInstruction(instructions, tools.now())
		o.Tools = tools.All()
	}}
	return agent.NewModelAgent(AgentName, llm, append(opts, optFns...)...)
}
