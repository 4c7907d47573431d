package users

import (
	"fmt"
	"time"
	"unicode"
)

// RoleType represents a role label attached to a user
type RoleType string

const (
	RoleAdmin RoleType = "admin"
	RoleUser  RoleType = "user"
)

type User struct {
	ID           string     `json:"id,omitempty"`          // Unique identifier for the user
	Email        string     `json:"email,omitempty"`       // User's email address
	Username     string     `json:"username,omitempty"`    // Unique username
	PasswordHash string     `json:"-"`                     // Hashed version of the user's password - never serialize
	Roles        []RoleType `json:"roles,omitempty"`       // Role labels consumed by the authorization layer
	DateJoined   time.Time  `json:"date_joined,omitempty"` // Date and time when the user registered
}

// HasAnyRole checks if the user holds at least one of the given roles
func (u *User) HasAnyRole(roles ...RoleType) bool {
	for _, required := range roles {
		for _, r := range u.Roles {
			if r == required {
				return true
			}
		}
	}
	return false
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
