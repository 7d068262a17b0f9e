package entity

const (
	RoleNameAdmin = "ROLE_ADMIN"
	RoleNameUser  = "ROLE_USER"

	RoleIDAdmin int64 = 1
	// DefaultRoleID is the second seeded role, granted when no role was chosen.
	DefaultRoleID int64 = 2
)

// Role is a named authority. Users own the association.
type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Authority returns the label consumed by access control.
func (r Role) Authority() string {
	return r.Name
}

// DefaultRoles are the rows that must exist after initialization.
func DefaultRoles() []*Role {
	return []*Role{
		{ID: RoleIDAdmin, Name: RoleNameAdmin},
		{ID: DefaultRoleID, Name: RoleNameUser},
	}
}

// RoleNames returns the names of roles in order.
func RoleNames(roles []*Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}
