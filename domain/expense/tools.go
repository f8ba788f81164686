package expense

import (
	"github.com/cagandemirsamli/personalassistant/core"
	"github.com/cagandemirsamli/personalassistant/tool"
)

type categoryFilterArgs struct {
	Category *string `json:"category,omitempty" description:"Optional category to filter by. If not provided, returns all expenses."`
}

type addExpenseArgs struct {
	Category string  `json:"category" description:"The category of the expense (e.g. coffee, food, transport)"`
	Amount   float64 `json:"amount" description:"The amount spent in TL"`
	Date     *string `json:"date,omitempty" description:"The date of the expense (format: YYYY-MM-DD). Defaults to today."`
}

type removeExpenseArgs struct {
	Category string   `json:"category" description:"The category of the expense"`
	Date     string   `json:"date" description:"The date of the expense to remove (YYYY-MM-DD)"`
	Amount   *float64 `json:"amount,omitempty" description:"Optional specific amount to match, useful when several expenses share a date"`
}

type categoryArgs struct {
	Category string `json:"category" description:"The budget or expense category"`
}

type setBudgetArgs struct {
	Category string  `json:"category" description:"The category name for the budget (e.g. coffee, food, transport)"`
	Amount   float64 `json:"amount" description:"The budget limit for this category in TL"`
}

type editBudgetArgs struct {
	Category  string  `json:"category" description:"The budget category to edit"`
	NewAmount float64 `json:"new_amount" description:"The new budget limit in TL"`
}

type noArgs struct{}

// All returns the expense and budget tools in catalog order.
func (t *Tools) All() []tool.Tool {
	return []tool.Tool{
		tool.NewTypedTool("get_expenses",
			"Retrieve expenses, optionally filtered by category.",
			func(_ *core.ToolContext, a categoryFilterArgs) (string, error) {
				return t.GetExpenses(deref(a.Category)), nil
			}),
		tool.NewTypedTool("add_expense",
			"Add a new expense to a category. Reports the budget status when a budget exists for the category.",
			func(_ *core.ToolContext, a addExpenseArgs) (string, error) {
				return t.AddExpense(a.Category, a.Amount, deref(a.Date))
			}),
		tool.NewTypedTool("remove_expense",
			"Remove an expense from a category by matching date, and optionally amount.",
			func(_ *core.ToolContext, a removeExpenseArgs) (string, error) {
				var amount float64
				if a.Amount != nil {
					amount = *a.Amount
				}
				return t.RemoveExpense(a.Category, a.Date, amount)
			}),
		tool.NewTypedTool("get_category_total",
			"Get the total amount spent in a category.",
			func(_ *core.ToolContext, a categoryArgs) (string, error) {
				return t.GetCategoryTotal(a.Category), nil
			}),
		tool.NewTypedTool("get_budgets",
			"Retrieve all budgets with their limits and spending.",
			func(_ *core.ToolContext, _ noArgs) (string, error) {
				return t.GetBudgets(), nil
			}),
		tool.NewTypedTool("get_budget",
			"Get budget details for a specific category including limit, spent and remaining.",
			func(_ *core.ToolContext, a categoryArgs) (string, error) {
				return t.GetBudget(a.Category), nil
			}),
		tool.NewTypedTool("set_budget",
			"Create a new budget for a category. Use edit_budget to modify existing budgets.",
			func(_ *core.ToolContext, a setBudgetArgs) (string, error) {
				return t.SetBudget(a.Category, a.Amount)
			}),
		tool.NewTypedTool("edit_budget",
			"Change the budget limit for an existing category.",
			func(_ *core.ToolContext, a editBudgetArgs) (string, error) {
				return t.EditBudget(a.Category, a.NewAmount)
			}),
		tool.NewTypedTool("remove_budget",
			"Delete a budget category entirely.",
			func(_ *core.ToolContext, a categoryArgs) (string, error) {
				return t.RemoveBudget(a.Category)
			}),
		tool.NewTypedTool("reset_budget_spending",
			"Reset the spent amount to 0 for a budget category (e.g. at the start of a new month).",
			func(_ *core.ToolContext, a categoryArgs) (string, error) {
				return t.ResetBudgetSpending(a.Category)
			}),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
