package tools_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store/drivers/sqlite"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/tools"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedAccount(t *testing.T, s store.Store, tenantID, userID, number string, balanceCents int64) domain.Account {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, s.Users().CreateUser(context.Background(), domain.User{
		ID: userID, TenantID: tenantID, Username: "user-" + userID,
		PasswordHash: "x", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now,
	}))

	acc := domain.Account{
		ID: idx.New().String(), TenantID: tenantID, UserID: userID,
		Number: number, Name: "Everyday", BalanceCents: balanceCents,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Accounts().CreateAccount(context.Background(), acc))
	return acc
}

func TestPermissionsFailClosed(t *testing.T) {
	allRoles := []domain.Role{domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent, domain.RoleReadOnly}

	t.Run("unknown tool denied for everyone", func(t *testing.T) {
		require.False(t, tools.Permitted("drop_all_tables", allRoles))
		require.False(t, tools.Permitted("drop_all_tables", []domain.Role{domain.RoleAdmin}))
	})

	t.Run("role subsets enforced", func(t *testing.T) {
		require.True(t, tools.Permitted("bank_transfer", []domain.Role{domain.RoleCustomer}))
		require.False(t, tools.Permitted("bank_transfer", []domain.Role{domain.RoleReadOnly}))
		require.False(t, tools.Permitted("create_account", []domain.Role{domain.RoleCustomer}))
	})

	t.Run("no roles means no access", func(t *testing.T) {
		require.False(t, tools.Permitted("bank_balance", nil))
	})
}

func TestBankBalance(t *testing.T) {
	s := newTestStore(t)
	seedAccount(t, s, "tenant-a", "user-1", "Acc1001", 12_345)

	tool := tools.NewBankBalance(s)

	t.Run("owner can read", func(t *testing.T) {
		res, err := tool.Execute(context.Background(), tools.Call{
			TenantID: "tenant-a", UserID: "user-1",
			Args: map[string]any{"account_number": "Acc1001"},
		})
		require.NoError(t, err)
		require.Equal(t, "123.45", res.(map[string]any)["balance"])
	})

	t.Run("other user rejected", func(t *testing.T) {
		_, err := tool.Execute(context.Background(), tools.Call{
			TenantID: "tenant-a", UserID: "user-2",
			Args: map[string]any{"account_number": "Acc1001"},
		})
		require.ErrorIs(t, err, tools.ErrNotAccountOwner)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := tool.Execute(context.Background(), tools.Call{
			TenantID: "tenant-a", UserID: "user-1",
			Args: map[string]any{"account_number": "Acc9999"},
		})
		require.ErrorIs(t, err, tools.ErrAccountNotFound)
	})
}

func TestBankTransfer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	from := seedAccount(t, s, "tenant-a", "user-1", "Acc1001", 50_000)
	to := seedAccount(t, s, "tenant-a", "user-2", "Acc2002", 0)

	tool := tools.NewBankTransfer(s)

	t.Run("transfer moves funds and records both legs", func(t *testing.T) {
		res, err := tool.Execute(ctx, tools.Call{
			TenantID: "tenant-a", UserID: "user-1",
			Args: map[string]any{
				"from_account": "Acc1001",
				"to_account":   "Acc2002",
				"amount":       "125.50",
				"description":  "rent",
			},
		})
		require.NoError(t, err)
		require.NotEmpty(t, res.(map[string]any)["reference"])

		gotFrom, err := s.Accounts().GetAccountByID(ctx, from.ID)
		require.NoError(t, err)
		require.Equal(t, int64(50_000-12_550), gotFrom.BalanceCents)

		gotTo, err := s.Accounts().GetAccountByID(ctx, to.ID)
		require.NoError(t, err)
		require.Equal(t, int64(12_550), gotTo.BalanceCents)
	})

	t.Run("insufficient funds leaves balances untouched", func(t *testing.T) {
		before, err := s.Accounts().GetAccountByID(ctx, from.ID)
		require.NoError(t, err)

		_, err = tool.Execute(ctx, tools.Call{
			TenantID: "tenant-a", UserID: "user-1",
			Args: map[string]any{
				"from_account": "Acc1001",
				"to_account":   "Acc2002",
				"amount":       "99999.00",
			},
		})
		require.ErrorIs(t, err, tools.ErrInsufficientFunds)

		after, err := s.Accounts().GetAccountByID(ctx, from.ID)
		require.NoError(t, err)
		require.Equal(t, before.BalanceCents, after.BalanceCents)
	})

	t.Run("cannot transfer from someone else's account", func(t *testing.T) {
		_, err := tool.Execute(ctx, tools.Call{
			TenantID: "tenant-a", UserID: "user-2",
			Args: map[string]any{
				"from_account": "Acc1001",
				"to_account":   "Acc2002",
				"amount":       "1.00",
			},
		})
		require.ErrorIs(t, err, tools.ErrNotAccountOwner)
	})
}

func TestMonthlyPayment(t *testing.T) {
	tool := tools.NewMonthlyPayment()

	res, err := tool.Execute(context.Background(), tools.Call{
		Args: map[string]any{"amount": "10000.00", "term_months": 12},
	})
	require.NoError(t, err)

	out := res.(map[string]any)
	// 10k over 12 months at 3.5% APR amortizes to about 849.22 per month
	require.Equal(t, "849.22", out["monthly_payment"])
	require.Equal(t, 12, out["term_months"])

	t.Run("rejects zero term", func(t *testing.T) {
		_, err := tool.Execute(context.Background(), tools.Call{
			Args: map[string]any{"amount": "10000.00", "term_months": 0},
		})
		require.Error(t, err)
	})
}

func TestHandoffTools(t *testing.T) {
	reg := tools.NewRegistry(tools.HandoffTools()...)

	for name, target := range map[string]string{
		"transfer_to_sales":            "sales",
		"transfer_to_customer_support": "customer_support",
		"transfer_to_transactions":     "transactions",
	} {
		tool, ok := reg.Get(name)
		require.True(t, ok, name)

		res, err := tool.Execute(context.Background(), tools.Call{})
		require.NoError(t, err)
		require.Equal(t, map[string]string{"goto": target}, res)
	}
}

func TestRegistryListSorted(t *testing.T) {
	s := newTestStore(t)
	reg := tools.NewBankingRegistry(s)

	list := reg.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		require.Less(t, list[i-1].Name, list[i].Name)
	}

	_, ok := reg.Get("bank_balance")
	require.True(t, ok)
	_, ok = reg.Get("unknown_tool")
	require.False(t, ok)
}
