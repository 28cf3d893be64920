package entity

// Role is a closed set of authorization roles.
// There is no open extensibility; the set is fixed at compile time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleUser}
}

// IsValid reports whether r is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	default:
		return false
	}
}

// Label returns a human-readable name for dropdowns.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleEditor:
		return "Editor"
	case RoleUser:
		return "User"
	default:
		return string(r)
	}
}

func (r Role) String() string { return string(r) }
