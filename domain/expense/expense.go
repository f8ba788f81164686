package expense

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/store"
)

// Document names inside the data directory.
const (
	ExpenseDocument = "expense_file"
	BudgetDocument  = "budget_file"
)

// DateLayout is the layout of expense dates.
const DateLayout = "2006-01-02"

// Expense is one spending entry within a category.
type Expense struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Budget is a spending limit with its running total.
type Budget struct {
	Limit float64 `json:"limit"`
	Spent float64 `json:"spent"`
}

// UnmarshalJSON accepts records that keep the limit under "amount".
func (b *Budget) UnmarshalJSON(data []byte) error {
	var raw struct {
		Limit  *float64 `json:"limit"`
		Amount *float64 `json:"amount"`
		Spent  float64  `json:"spent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Limit != nil:
		b.Limit = *raw.Limit
	case raw.Amount != nil:
		b.Limit = *raw.Amount
	}
	b.Spent = raw.Spent
	return nil
}

// Remaining is the limit minus the spent total; negative when over budget.
func (b Budget) Remaining() float64 { return b.Limit - b.Spent }

// PercentUsed reports spent as a percentage of the limit, 0 for a zero limit.
func (b Budget) PercentUsed() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.Spent / b.Limit * 100
}

// Options configures Tools.
type Options struct {
	// Now supplies the current time for defaulted dates.
	Now    func() time.Time
	Logger logging.Logger
}

// Tools implements the expense and budget operations over the document store.
// Every method returns the text reported back to the model; an error is
// returned only when a document could not be written.
type Tools struct {
	store  *store.Store
	now    func() time.Time
	logger logging.Logger
}

// NewTools creates the expense tool set backed by s.
func NewTools(s *store.Store, optFns ...func(o *Options)) *Tools {
	opts := Options{Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tools{store: s, now: opts.Now, logger: opts.Logger}
}

// expenses loads the expense document. Records the store re-keyed from a
// legacy list carry their own category and are grouped under it, in list
// order, so the next save writes the keyed form without losing them.
func (t *Tools) expenses() map[string][]Expense {
	out := map[string][]Expense{}
	c := t.store.Load(ExpenseDocument)
	for _, key := range legacyOrder(c) {
		switch rec := c[key].(type) {
		case []any:
			for _, elem := range rec {
				var e Expense
				if decode(elem, &e) {
					out[key] = append(out[key], e)
				}
			}
		case map[string]any:
			var e Expense
			if !decode(rec, &e) {
				t.logger.Warn("expense.load.skipped", "document", ExpenseDocument, "key", key)
				continue
			}
			category := legacyCategory(rec, key)
			out[category] = append(out[category], e)
		default:
			t.logger.Warn("expense.load.skipped", "document", ExpenseDocument, "key", key)
		}
	}
	return out
}

// budgets loads the budget document, regrouping legacy list records by
// their category field like expenses does.
func (t *Tools) budgets() map[string]Budget {
	out := map[string]Budget{}
	c := t.store.Load(BudgetDocument)
	for _, key := range legacyOrder(c) {
		rec, ok := c[key].(map[string]any)
		var b Budget
		if !ok || !decode(rec, &b) {
			t.logger.Warn("budget.load.skipped", "document", BudgetDocument, "key", key)
			continue
		}
		out[legacyCategory(rec, key)] = b
	}
	return out
}

func decode(v any, dst any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// legacyCategory returns the upper-cased category field of a legacy record,
// or key for records already stored under their category.
func legacyCategory(rec map[string]any, key string) string {
	if category, ok := rec["category"].(string); ok && strings.TrimSpace(category) != "" {
		return strings.ToUpper(category)
	}
	return key
}

// legacyOrder sorts collection keys so re-keyed list records ("<doc>_<idx>")
// come back in their original list order.
func legacyOrder(c store.Collection) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := legacyIndex(keys[i])
		nj, jok := legacyIndex(keys[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func legacyIndex(key string) (int, bool) {
	i := strings.LastIndexByte(key, '_')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	return n, err == nil
}

// GetExpenses lists expenses, all of them or those of one category.
func (t *Tools) GetExpenses(category string) string {
	expenses := t.expenses()
	if len(expenses) == 0 {
		return "No expenses found."
	}

	keys := sortedKeys(expenses)
	if category != "" {
		key := strings.ToUpper(category)
		if _, ok := expenses[key]; !ok {
			return fmt.Sprintf("No expenses found for category '%s'.", category)
		}
		keys = []string{key}
	}

	var b strings.Builder
	b.WriteString("Expenses:")
	for _, key := range keys {
		fmt.Fprintf(&b, "\n%s:", key)
		for _, e := range expenses[key] {
			fmt.Fprintf(&b, "\n- %s: %s TL", e.Date, FormatAmount(e.Amount))
		}
	}
	return b.String()
}

// AddExpense records an expense and, when the category has a budget, adds
// it to the budget's spent total and reports the budget status. The two
// documents are written one after the other: if the budget write fails the
// expense is already saved and spent is not updated.
func (t *Tools) AddExpense(category string, amount float64, date string) (string, error) {
	if amount <= 0 {
		return "Amount must be a positive number.", nil
	}
	key := strings.ToUpper(category)
	if date == "" {
		date = t.now().Format(DateLayout)
	}

	expenses := t.expenses()
	expenses[key] = append(expenses[key], Expense{Date: date, Amount: amount})
	if err := t.store.SaveFrom(ExpenseDocument, expenses); err != nil {
		return "", err
	}
	t.logger.Debug("expense.add", "category", key, "amount", amount, "date", date)

	added := fmt.Sprintf("Expense of %s TL added to '%s' on %s.", FormatAmount(amount), category, date)

	budgets := t.budgets()
	budget, ok := budgets[key]
	if !ok {
		return added, nil
	}
	budget.Spent += amount
	budgets[key] = budget
	if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
		return "", err
	}

	remaining := budget.Remaining()
	switch {
	case remaining < 0:
		return fmt.Sprintf("%s ⚠️ OVER BUDGET! Spent %s TL of %s TL limit (%s TL over).",
			added, FormatAmount(budget.Spent), FormatAmount(budget.Limit), FormatAmount(math.Abs(remaining))), nil
	case remaining < budget.Limit*0.2:
		return fmt.Sprintf("%s ⚠️ Warning: Only %s TL remaining of %s TL budget.",
			added, FormatAmount(remaining), FormatAmount(budget.Limit)), nil
	default:
		return fmt.Sprintf("%s Budget: %s/%s TL (%s TL remaining).",
			added, FormatAmount(budget.Spent), FormatAmount(budget.Limit), FormatAmount(remaining)), nil
	}
}

// RemoveExpense removes the first entry on date with the given amount, or
// every entry on date when amount is zero. The removed total comes off the
// category budget, floored at zero.
func (t *Tools) RemoveExpense(category, date string, amount float64) (string, error) {
	key := strings.ToUpper(category)
	expenses := t.expenses()
	entries, ok := expenses[key]
	if !ok {
		return fmt.Sprintf("No expenses found for category '%s'.", category), nil
	}

	var (
		kept    = make([]Expense, 0, len(entries))
		removed float64
		matched bool
	)
	for _, e := range entries {
		hit := e.Date == date
		if amount > 0 {
			hit = hit && e.Amount == amount && !matched
		}
		if hit {
			removed += e.Amount
			matched = true
			continue
		}
		kept = append(kept, e)
	}

	if len(kept) == len(entries) {
		return fmt.Sprintf("No expense found for '%s' on %s.", category, date), nil
	}

	expenses[key] = kept
	if err := t.store.SaveFrom(ExpenseDocument, expenses); err != nil {
		return "", err
	}

	budgets := t.budgets()
	if budget, ok := budgets[key]; ok && removed > 0 {
		budget.Spent = math.Max(0, budget.Spent-removed)
		budgets[key] = budget
		if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Removed %d expense(s) totaling %s TL from '%s'.",
		len(entries)-len(kept), FormatAmount(removed), category), nil
}

// GetCategoryTotal sums a category.
func (t *Tools) GetCategoryTotal(category string) string {
	entries, ok := t.expenses()[strings.ToUpper(category)]
	if !ok {
		return fmt.Sprintf("No expenses found for category '%s'.", category)
	}
	return fmt.Sprintf("Category '%s': %d expense(s) totaling %s TL.", category, len(entries), FormatAmount(sum(entries)))
}

// GetBudgets lists every budget with its derived remaining amount.
func (t *Tools) GetBudgets() string {
	budgets := t.budgets()
	if len(budgets) == 0 {
		return "No budgets found."
	}

	var b strings.Builder
	b.WriteString("Budgets:")
	for _, key := range sortedKeys(budgets) {
		budget := budgets[key]
		fmt.Fprintf(&b, "\n- %s: %s/%s TL spent (%s TL remaining)",
			key, FormatAmount(budget.Spent), FormatAmount(budget.Limit), FormatAmount(budget.Remaining()))
	}
	return b.String()
}

// GetBudget reports one budget with remaining amount and percentage used.
func (t *Tools) GetBudget(category string) string {
	budget, ok := t.budgets()[strings.ToUpper(category)]
	if !ok {
		return fmt.Sprintf("No budget found for category '%s'.", category)
	}
	return fmt.Sprintf("Budget '%s': %s/%s TL (%.1f%% used, %s TL remaining).",
		category, FormatAmount(budget.Spent), FormatAmount(budget.Limit), budget.PercentUsed(), FormatAmount(budget.Remaining()))
}

// SetBudget creates a budget. Spending already recorded in the category
// counts toward it.
func (t *Tools) SetBudget(category string, amount float64) (string, error) {
	if amount <= 0 {
		return "Budget amount must be a positive number.", nil
	}
	key := strings.ToUpper(category)
	budgets := t.budgets()
	if existing, ok := budgets[key]; ok {
		return fmt.Sprintf("Budget for '%s' already exists with limit %s TL. Use edit_budget to modify it.",
			category, FormatAmount(existing.Limit)), nil
	}

	spent := sum(t.expenses()[key])
	budgets[key] = Budget{Limit: amount, Spent: spent}
	if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
		return "", err
	}

	if spent > 0 {
		return fmt.Sprintf("Budget for '%s' created with %s TL limit. Current spending: %s TL (%s TL remaining).",
			category, FormatAmount(amount), FormatAmount(spent), FormatAmount(amount-spent)), nil
	}
	return fmt.Sprintf("Budget for '%s' created with %s TL limit.", category, FormatAmount(amount)), nil
}

// EditBudget changes the limit of an existing budget.
func (t *Tools) EditBudget(category string, newAmount float64) (string, error) {
	if newAmount <= 0 {
		return "Budget amount must be a positive number.", nil
	}
	key := strings.ToUpper(category)
	budgets := t.budgets()
	budget, ok := budgets[key]
	if !ok {
		return fmt.Sprintf("No budget found for category '%s'. Use set_budget to create one.", category), nil
	}

	prev := budget.Limit
	budget.Limit = newAmount
	budgets[key] = budget
	if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
		return "", err
	}

	return fmt.Sprintf("Budget for '%s' updated: %s → %s TL. Currently spent: %s TL (%s TL remaining).",
		category, FormatAmount(prev), FormatAmount(newAmount), FormatAmount(budget.Spent), FormatAmount(budget.Remaining())), nil
}

// RemoveBudget deletes a budget.
func (t *Tools) RemoveBudget(category string) (string, error) {
	key := strings.ToUpper(category)
	budgets := t.budgets()
	if _, ok := budgets[key]; !ok {
		return fmt.Sprintf("No budget found for category '%s'.", category), nil
	}
	delete(budgets, key)
	if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
		return "", err
	}
	return fmt.Sprintf("Budget for '%s' removed.", category), nil
}

// ResetBudgetSpending sets a budget's spent total back to zero.
func (t *Tools) ResetBudgetSpending(category string) (string, error) {
	key := strings.ToUpper(category)
	budgets := t.budgets()
	budget, ok := budgets[key]
	if !ok {
		return fmt.Sprintf("No budget found for category '%s'.", category), nil
	}
	prev := budget.Spent
	budget.Spent = 0
	budgets[key] = budget
	if err := t.store.SaveFrom(BudgetDocument, budgets); err != nil {
		return "", err
	}
	return fmt.Sprintf("Budget '%s' spending reset: %s → 0 TL.", category, FormatAmount(prev)), nil
}

// FormatAmount renders an amount without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sum(entries []Expense) float64 {
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
