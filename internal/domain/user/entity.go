// internal/domain/user/entity.go
package user

import "strings"

// User is the signed-in shopper. Accounts are mocked, so nothing is stored.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"lastName,omitempty"`
	IsGuest  bool   `json:"isGuest,omitempty"`
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

// GetDisplayName returns display name (full name or email)
func (u *User) GetDisplayName() string {
	fullName := u.GetFullName()
	if fullName != "" {
		return fullName
	}
	return u.Email
}
