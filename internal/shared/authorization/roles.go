package authorization

// UserRole is derived from the user's staff and superuser flags.
type UserRole string

const (
	RoleSuperuser UserRole = "superuser"
	RoleStaff     UserRole = "staff"
	RoleUser      UserRole = "user"
)

func (r UserRole) String() string {
	return string(r)
}

// IsStaff is true for staff and superusers.
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleSuperuser
}

func (r UserRole) IsSuperuser() bool {
	return r == RoleSuperuser
}

func RoleFor(isStaff, isSuperuser bool) UserRole {
	switch {
	case isSuperuser:
		return RoleSuperuser
	case isStaff:
		return RoleStaff
	default:
		return RoleUser
	}
}

func ParseUserRole(s string) UserRole {
	switch UserRole(s) {
	case RoleSuperuser, RoleStaff:
		return UserRole(s)
	default:
		return RoleUser
	}
}
