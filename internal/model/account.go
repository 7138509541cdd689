// Package model defines domain entities for the application.
package model

import "time"

// Role represents an account's tier.
type Role string

const (
	RoleFree  Role = "free"
	RolePaid  Role = "paid"
	RoleSuper Role = "super"
)

// Account represents a user account with a token balance.
type Account struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Tokens        int        `json:"tokens"`
	Role          Role       `json:"role"`
	Suspended     bool       `json:"suspended"`
	ComplaintFlag bool       `json:"complaint_flag"`
	LastFreeUse   *time.Time `json:"last_free_use,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AuthContext holds authentication information extracted from a session
// token, injected into the request context by the auth middleware.
type AuthContext struct {
	AccountID string
	Email     string
	Role      Role
}
