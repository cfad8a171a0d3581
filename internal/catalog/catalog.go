// Package catalog is the static table behind the example-question picker.
package catalog

// Example is one picker entry.
type Example struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

var examples = []Example{
	{Label: "Annual leave", Query: "How many unused annual leave days can be carried over to next year?"},
	{Label: "Travel expenses", Query: "What is the nightly accommodation cap for domestic business travel?"},
	{Label: "Overtime", Query: "What is the approval procedure for overtime work?"},
	{Label: "Remote work", Query: "Who is eligible for remote work and how is it requested?"},
	{Label: "Expense claims", Query: "What are the steps to submit an expense claim?"},
	{Label: "Parental leave", Query: "How long is parental leave and is it paid?"},
}

// All returns the picker entries in display order.
func All() []Example {
	return append([]Example(nil), examples...)
}

// Lookup finds the example query for a label.
func Lookup(label string) (string, bool) {
	for _, e := range examples {
		if e.Label == label {
			return e.Query, true
		}
	}
	return "", false
}

// Labels returns the picker labels in display order.
func Labels() []string {
	labels := make([]string, len(examples))
	for i, e := range examples {
		labels[i] = e.Label
	}
	return labels
}
