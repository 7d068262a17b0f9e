package entity

// User is the account aggregate. FirstName doubles as the login identifier.
type User struct {
	Base
	FirstName string  `db:"first_name"`
	LastName  string  `db:"last_name"`
	Email     string  `db:"email"`
	Password  string  `db:"password"` // bcrypt hash once persisted
	Gender    Gender  `db:"gender"`
	Roles     []*Role `db:"-"`
}

// LoginID returns the identifier used for authentication lookups.
func (u *User) LoginID() string {
	return u.FirstName
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleIDs returns the ids of the assigned roles in order.
func (u *User) RoleIDs() []int64 {
	ids := make([]int64, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}
