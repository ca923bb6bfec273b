package tools

import "context"

// Handoff is a routing tool. Invoking it produces a transfer directive the
// conversation router recognises; it performs no banking side effect.
type Handoff struct {
	name        string
	description string
	target      string
}

func NewHandoff(name, description, target string) *Handoff {
	return &Handoff{name: name, description: description, target: target}
}

func (t *Handoff) Name() string        { return t.name }
func (t *Handoff) Description() string { return t.description }

func (t *Handoff) Execute(ctx context.Context, call Call) (any, error) {
	return map[string]string{"goto": t.target}, nil
}

// HandoffTools returns the standard transfer tool set for the specialist
// handlers.
func HandoffTools() []Tool {
	return []Tool{
		NewHandoff("transfer_to_sales",
			"Hand the conversation to the sales specialist", "sales"),
		NewHandoff("transfer_to_customer_support",
			"Hand the conversation to the customer support specialist", "customer_support"),
		NewHandoff("transfer_to_transactions",
			"Hand the conversation to the transactions specialist", "transactions"),
	}
}
