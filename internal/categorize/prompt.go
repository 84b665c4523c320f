package categorize

import (
	"fmt"
	"strings"

	"homeledger/internal/domain"
)

// buildPrompt renders the classification request: the closed category
// vocabulary, the disambiguation rules, and the batch as numbered lines of
// description plus signed amount. The 1-based index is the join key the
// model must echo back.
func buildPrompt(categories []domain.Category, txns []domain.Transaction) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	var b strings.Builder
	b.WriteString("Categorize each transaction into exactly one category from this list:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Negative = expense, positive = income/credit\n")
	b.WriteString("- Large transfers between accounts = \"Transfer\"\n")
	b.WriteString("- Payroll/direct deposit = \"Salary\"\n")
	b.WriteString("- Grocery stores = \"Groceries\"\n")
	b.WriteString("- Restaurants/food delivery = \"Dining Out\"\n")
	b.WriteString("- Gas stations = \"Gas\"\n")
	b.WriteString("- Netflix/Spotify/subscriptions = \"Subscriptions\"\n")
	b.WriteString("- If unclear = \"Uncategorized\"\n")
	b.WriteString("\nTransactions:\n")

	for i, t := range txns {
		fmt.Fprintf(&b, "%d. desc=%q amount=%s\n", i+1, t.Description, t.Amount.String())
	}

	b.WriteString("\nRespond ONLY with a JSON array, no other text:\n")
	b.WriteString(`[{"id":1,"category":"category name","confidence":0.95}]`)

	return b.String()
}
