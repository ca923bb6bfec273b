package domain

import "time"

// Account is a customer bank account. Balances are held in cents to keep the
// arithmetic exact.
type Account struct {
	ID           string
	TenantID     string
	UserID       string
	Number       string // "Acc" prefix or 10-20 digit number
	Name         string
	BalanceCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Transaction directions.
const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

// Transaction is one ledger entry against an account. A transfer produces a
// debit on the source account and a matching credit on the destination.
type Transaction struct {
	ID          string
	AccountID   string
	Type        string // debit or credit
	AmountCents int64
	Description string
	CreatedAt   time.Time
}

// Offer is a marketable product (term deposit, credit card, loan product).
type Offer struct {
	ID          string
	TenantID    string
	Name        string
	Category    string
	Description string
	CreatedAt   time.Time
}

// Service request statuses.
const (
	ServiceRequestOpen   = "open"
	ServiceRequestClosed = "closed"
)

// ServiceRequest is a customer support ticket raised through the assistant.
type ServiceRequest struct {
	ID        string
	TenantID  string
	UserID    string
	Kind      string
	Details   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch is a physical branch location.
type Branch struct {
	ID      string
	Name    string
	Address string
	City    string
}
