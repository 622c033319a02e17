package user

import "fmt"

// LoginRequest is the profile the client sends after every sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

func (r LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// UpsertResult reports whether a login created the account.
type UpsertResult struct {
	Inserted bool   `json:"inserted"`
	ID       string `json:"id,omitempty"`
}

// RoleResponse answers role lookups and role changes.
type RoleResponse struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}
