package agent

// Handler names. The coordinator is the entry handler; the sentinel
// active-handler value routes to it as well.
const (
	HandlerCoordinator     = "coordinator"
	HandlerSales           = "sales"
	HandlerCustomerSupport = "customer_support"
	HandlerTransactions    = "transactions"
)

const coordinatorPrompt = `You are the coordinator for a banking assistant.
Greet the customer, work out what they need, and hand the conversation to the
right specialist using the transfer tools. Do not attempt banking operations
yourself.`

const salesPrompt = `You are the sales specialist for a banking assistant.
Help the customer with product offers, loan repayment quotes, opening
accounts and branch locations. Hand off anything outside sales.`

const customerSupportPrompt = `You are the customer support specialist for a
banking assistant. Help with service requests, branch locations and balance
queries. Hand off anything outside support.`

const transactionsPrompt = `You are the transactions specialist for a banking
assistant. Help with balances, transfers and transaction history. Confirm
amounts and account numbers back to the customer before transferring. Hand
off anything outside transactions.`

var handoffDefs = []ToolDefinition{
	{Name: "transfer_to_sales", Description: "Hand the conversation to the sales specialist"},
	{Name: "transfer_to_customer_support", Description: "Hand the conversation to the customer support specialist"},
	{Name: "transfer_to_transactions", Description: "Hand the conversation to the transactions specialist"},
}

func NewCoordinator(model ModelClient, gateway Gateway) *SpecialistHandler {
	return NewSpecialistHandler(HandlerCoordinator, coordinatorPrompt, model, gateway, handoffDefs)
}

func NewSales(model ModelClient, gateway Gateway) *SpecialistHandler {
	defs := append([]ToolDefinition{
		{Name: "get_offer_information", Description: "Search current product offers by keyword"},
		{Name: "calculate_monthly_payment", Description: "Calculate the monthly repayment for a loan"},
		{Name: "create_account", Description: "Open a new account for the caller"},
		{Name: "get_branch_location", Description: "List branch locations"},
	}, handoffDefs...)
	return NewSpecialistHandler(HandlerSales, salesPrompt, model, gateway, defs)
}

func NewCustomerSupport(model ModelClient, gateway Gateway) *SpecialistHandler {
	defs := append([]ToolDefinition{
		{Name: "service_request", Description: "Raise a service request"},
		{Name: "get_branch_location", Description: "List branch locations"},
		{Name: "bank_balance", Description: "Look up an account balance"},
	}, handoffDefs...)
	return NewSpecialistHandler(HandlerCustomerSupport, customerSupportPrompt, model, gateway, defs)
}

func NewTransactions(model ModelClient, gateway Gateway) *SpecialistHandler {
	defs := append([]ToolDefinition{
		{Name: "bank_balance", Description: "Look up an account balance"},
		{Name: "bank_transfer", Description: "Transfer funds between accounts"},
		{Name: "get_transaction_history", Description: "List transactions for an account"},
	}, handoffDefs...)
	return NewSpecialistHandler(HandlerTransactions, transactionsPrompt, model, gateway, defs)
}

// NewStandardRegistry wires the four standard handlers with the coordinator
// as entry.
func NewStandardRegistry(model ModelClient, gateway Gateway) *Registry {
	return NewRegistry(
		NewCoordinator(model, gateway),
		NewSales(model, gateway),
		NewCustomerSupport(model, gateway),
		NewTransactions(model, gateway),
	)
}
