package tools

import "github.com/aussiebroadwan/tellerdesk/internal/teller/store"

// NewBankingRegistry assembles the full tool set over the given store.
func NewBankingRegistry(s store.Store) *Registry {
	all := []Tool{
		NewBankBalance(s),
		NewBankTransfer(s),
		NewTransactionHistory(s),
		NewCreateAccount(s),
		NewOfferInformation(s),
		NewServiceRequest(s),
		NewBranchLocation(s),
		NewMonthlyPayment(),
	}
	all = append(all, HandoffTools()...)
	return NewRegistry(all...)
}
