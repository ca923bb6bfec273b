package domain

// Role is the coarse permission level a user holds within a tenant. Tool
// access is derived from roles via the permission table, never granted
// directly.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleReadOnly Role = "read_only"
)

// KnownRoles lists every role the service recognises.
var KnownRoles = []Role{RoleAdmin, RoleCustomer, RoleAgent, RoleReadOnly}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range KnownRoles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleStrings converts roles for claim embedding.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings parses claim role strings, dropping anything unknown.
func RolesFromStrings(ss []string) []Role {
	out := make([]Role, 0, len(ss))
	for _, s := range ss {
		if r := Role(s); r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
