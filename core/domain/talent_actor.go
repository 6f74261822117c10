package domain

import "strings"

// Actor is the authenticated user performing a request, loaded from the
// profiles table.
type Actor struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Email    string  `json:"email" db:"email"`
	Role     string  `json:"role" db:"role"`
	Active   bool    `json:"active" db:"active"`
	Username *string `json:"username,omitempty" db:"username"`
	Phone    *string `json:"phone,omitempty" db:"phone"`
	ClientID *string `json:"client_id,omitempty" db:"client_id"`
}

const RoleCommercial = "commercial"

// Normalize lower-cases the role as stored roles are mixed case.
func (a *Actor) Normalize() {
	a.Role = strings.ToLower(strings.TrimSpace(a.Role))
}
