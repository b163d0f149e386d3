package domain

import "time"

// UserRole separates administrators from ordinary trading parties.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleParticipant UserRole = "participant"
)

// User is the account behind a caller identity and every record party.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user bypasses party checks.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Party is the read projection of a user referenced from an invoice or purchase order.
type Party struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Role  UserRole `json:"role,omitempty"`
}

// PartyOf projects a user onto a Party.
func PartyOf(u *User) Party {
	if u == nil {
		return Party{}
	}
	return Party{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
