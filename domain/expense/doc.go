// Package expense records spending per category and keeps per-category
// budgets in step with it.
//
// Expenses live in the expense_file document as {CATEGORY: [{date, amount}]}
// and budgets in budget_file as {CATEGORY: {limit, spent}}. Adding an expense
// raises the category budget's spent total; removing one lowers it, never
// below zero.
package expense
