package tools

import (
	"context"
	"fmt"
	"math"
)

// loanAPR is the advertised annual percentage rate for loan quotes.
const loanAPR = 0.035

// MonthlyPayment quotes the monthly repayment for a loan at the advertised
// rate using standard amortization.
type MonthlyPayment struct{}

func NewMonthlyPayment() *MonthlyPayment { return &MonthlyPayment{} }

func (t *MonthlyPayment) Name() string { return "calculate_monthly_payment" }
func (t *MonthlyPayment) Description() string {
	return "Calculate the monthly repayment for a loan amount over a term in months"
}

type monthlyPaymentArgs struct {
	Amount     string `json:"amount"`
	TermMonths int    `json:"term_months"`
}

func (t *MonthlyPayment) Execute(ctx context.Context, call Call) (any, error) {
	var args monthlyPaymentArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	principalCents, err := parseAmountCents(args.Amount)
	if err != nil {
		return nil, err
	}
	if principalCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if args.TermMonths <= 0 {
		return nil, fmt.Errorf("term_months must be positive")
	}

	principal := float64(principalCents) / 100
	monthlyRate := loanAPR / 12
	factor := math.Pow(1+monthlyRate, float64(args.TermMonths))
	payment := principal * monthlyRate * factor / (factor - 1)

	paymentCents := int64(math.Round(payment * 100))
	totalCents := paymentCents * int64(args.TermMonths)

	return map[string]any{
		"amount":          args.Amount,
		"term_months":     args.TermMonths,
		"annual_rate":     loanAPR,
		"monthly_payment": formatCents(paymentCents),
		"total_repayable": formatCents(totalCents),
	}, nil
}
