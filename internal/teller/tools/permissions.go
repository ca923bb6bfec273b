package tools

import "github.com/aussiebroadwan/tellerdesk/internal/teller/domain"

// toolPermissions maps each tool name to the roles allowed to invoke it.
// A tool absent from this table is callable by nobody, admin included;
// entries must be explicit.
var toolPermissions = map[string][]domain.Role{
	"bank_balance":              {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
	"bank_transfer":             {domain.RoleAdmin, domain.RoleCustomer},
	"get_transaction_history":   {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
	"get_offer_information":     {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent, domain.RoleReadOnly},
	"create_account":            {domain.RoleAdmin, domain.RoleAgent},
	"service_request":           {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
	"get_branch_location":       {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent, domain.RoleReadOnly},
	"calculate_monthly_payment": {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent, domain.RoleReadOnly},

	"transfer_to_sales":            {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
	"transfer_to_customer_support": {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
	"transfer_to_transactions":     {domain.RoleAdmin, domain.RoleCustomer, domain.RoleAgent},
}

// Permitted reports whether any of the caller's roles may invoke the tool.
// Fail-closed: unknown tools are never permitted.
func Permitted(tool string, roles []domain.Role) bool {
	allowed, ok := toolPermissions[tool]
	if !ok {
		return false
	}
	for _, have := range roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// PermittedTools returns the tool names the caller's roles may invoke.
func PermittedTools(roles []domain.Role) []string {
	var out []string
	for name := range toolPermissions {
		if Permitted(name, roles) {
			out = append(out, name)
		}
	}
	return out
}
