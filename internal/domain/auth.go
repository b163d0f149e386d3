package domain

// Identity is the verified caller attached to each authenticated request.
type Identity struct {
	ID   string
	Role UserRole
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleAdmin
}
