package tools

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
)

var (
	ErrAccountNotFound   = errors.New("tools: account not found")
	ErrNotAccountOwner   = errors.New("tools: account not owned by caller")
	ErrInsufficientFunds = errors.New("tools: insufficient funds")
)

// BankBalance returns the balance of one of the caller's accounts.
type BankBalance struct {
	store store.Store
}

func NewBankBalance(s store.Store) *BankBalance { return &BankBalance{store: s} }

func (t *BankBalance) Name() string { return "bank_balance" }
func (t *BankBalance) Description() string {
	return "Look up the current balance of one of the caller's accounts"
}

type bankBalanceArgs struct {
	AccountNumber string `json:"account_number"`
}

func (t *BankBalance) Execute(ctx context.Context, call Call) (any, error) {
	var args bankBalanceArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	acc, err := t.store.Accounts().GetAccountByNumber(ctx, call.TenantID, args.AccountNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if acc.UserID != call.UserID {
		return nil, ErrNotAccountOwner
	}

	return map[string]any{
		"account_number": acc.Number,
		"name":           acc.Name,
		"balance":        formatCents(acc.BalanceCents),
	}, nil
}

// BankTransfer moves funds between two accounts in the caller's tenant. The
// debit and credit, plus both ledger rows, commit in a single transaction.
type BankTransfer struct {
	store store.Store
}

func NewBankTransfer(s store.Store) *BankTransfer { return &BankTransfer{store: s} }

func (t *BankTransfer) Name() string { return "bank_transfer" }
func (t *BankTransfer) Description() string {
	return "Transfer funds from one of the caller's accounts to another account"
}

type bankTransferArgs struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (t *BankTransfer) Execute(ctx context.Context, call Call) (any, error) {
	var args bankTransferArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	amountCents, err := parseAmountCents(args.Amount)
	if err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	var reference string
	err = t.store.WithTx(ctx, func(tx store.Tx) error {
		from, err := tx.Accounts().GetAccountByNumber(ctx, call.TenantID, args.FromAccount)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		if from.UserID != call.UserID {
			return ErrNotAccountOwner
		}
		if from.BalanceCents < amountCents {
			return ErrInsufficientFunds
		}

		to, err := tx.Accounts().GetAccountByNumber(ctx, call.TenantID, args.ToAccount)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Accounts().AdjustBalance(ctx, from.ID, -amountCents); err != nil {
			return err
		}
		if err := tx.Accounts().AdjustBalance(ctx, to.ID, amountCents); err != nil {
			return err
		}

		now := time.Now().UTC()
		reference = idx.New().String()
		debit := domain.Transaction{
			ID:          reference,
			AccountID:   from.ID,
			Type:        domain.TransactionDebit,
			AmountCents: amountCents,
			Description: args.Description,
			CreatedAt:   now,
		}
		credit := domain.Transaction{
			ID:          idx.New().String(),
			AccountID:   to.ID,
			Type:        domain.TransactionCredit,
			AmountCents: amountCents,
			Description: args.Description,
			CreatedAt:   now,
		}
		if err := tx.Transactions().CreateTransaction(ctx, debit); err != nil {
			return err
		}
		return tx.Transactions().CreateTransaction(ctx, credit)
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"reference":    reference,
		"from_account": args.FromAccount,
		"to_account":   args.ToAccount,
		"amount":       args.Amount,
	}, nil
}

// TransactionHistory lists ledger entries for one of the caller's accounts.
type TransactionHistory struct {
	store store.Store
}

func NewTransactionHistory(s store.Store) *TransactionHistory {
	return &TransactionHistory{store: s}
}

func (t *TransactionHistory) Name() string { return "get_transaction_history" }
func (t *TransactionHistory) Description() string {
	return "List transactions for one of the caller's accounts within a date range"
}

type transactionHistoryArgs struct {
	AccountNumber string `json:"account_number"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
}

func (t *TransactionHistory) Execute(ctx context.Context, call Call) (any, error) {
	var args transactionHistoryArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	from := time.Time{}
	if args.FromDate != "" {
		parsed, err := time.Parse(time.DateOnly, args.FromDate)
		if err != nil {
			return nil, fmt.Errorf("invalid from_date: %w", err)
		}
		from = parsed
	}

	to := time.Now().UTC()
	if args.ToDate != "" {
		parsed, err := time.Parse(time.DateOnly, args.ToDate)
		if err != nil {
			return nil, fmt.Errorf("invalid to_date: %w", err)
		}
		// Inclusive of the whole end day
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	acc, err := t.store.Accounts().GetAccountByNumber(ctx, call.TenantID, args.AccountNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if acc.UserID != call.UserID {
		return nil, ErrNotAccountOwner
	}

	txns, err := t.store.Transactions().ListTransactions(ctx, acc.ID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(txns))
	for _, txn := range txns {
		entries = append(entries, map[string]any{
			"reference":   txn.ID,
			"type":        txn.Type,
			"amount":      formatCents(txn.AmountCents),
			"description": txn.Description,
			"date":        txn.CreatedAt.Format(time.DateOnly),
		})
	}
	return map[string]any{
		"account_number": acc.Number,
		"transactions":   entries,
	}, nil
}

// CreateAccount opens a new account for the caller.
type CreateAccount struct {
	store store.Store
}

func NewCreateAccount(s store.Store) *CreateAccount { return &CreateAccount{store: s} }

func (t *CreateAccount) Name() string { return "create_account" }
func (t *CreateAccount) Description() string {
	return "Open a new account for the caller"
}

type createAccountArgs struct {
	Name string `json:"name"`
}

func (t *CreateAccount) Execute(ctx context.Context, call Call) (any, error) {
	var args createAccountArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	number, err := newAccountNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acc := domain.Account{
		ID:        idx.New().String(),
		TenantID:  call.TenantID,
		UserID:    call.UserID,
		Number:    number,
		Name:      args.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Accounts().CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return map[string]any{
		"account_number": acc.Number,
		"name":           acc.Name,
		"balance":        formatCents(0),
	}, nil
}

// newAccountNumber generates a 12 digit account number.
func newAccountNumber() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	digits := make([]byte, len(buf))
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	// Avoid a leading zero so the number survives naive numeric handling
	if digits[0] == '0' {
		digits[0] = '1'
	}
	return string(digits), nil
}
