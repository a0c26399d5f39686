package model

// Role is the privilege level asserted by a session token.
// Admin is a superset of Contractor: read access plus exclusive write access.
type Role string

const (
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

var roleRank = map[Role]int{
	RoleContractor: 1,
	RoleAdmin:      2,
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := roleRank[r]
	return r, ok
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r grants at least the privileges of required.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[required]
}

// CredentialKey is the credential store key holding this role's password hash.
func (r Role) CredentialKey() string {
	return string(r) + "_password_hash"
}

func (r Role) String() string {
	return string(r)
}
