package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	// ErrPasswordTooLong is returned for passwords over MaxPasswordBytes,
	// which bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

const MaxPasswordBytes = 72

// NormalizeEmail returns the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User models an authenticated volunteer, coordinator or administrator.
//
// Permissions is a materialized snapshot of the role's default permissions.
// Change the role through SetRole only, so the two never drift apart.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         Role         `json:"role"`
	Permissions  []Permission `json:"permissions"`
	PasswordHash string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewUser builds a user whose permissions are derived from role.
func NewUser(email, name string, role Role, now time.Time) *User {
	return &User{
		Email:       NormalizeEmail(email),
		Name:        name,
		Role:        role,
		Permissions: DefaultPermissionsForRole(role),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetRole changes the user's role and recomputes the permission snapshot.
func (u *User) SetRole(role Role, now time.Time) {
	u.Role = role
	u.Permissions = DefaultPermissionsForRole(role)
	u.UpdatedAt = now
}

// HasPermission reports whether user holds permission. A nil user holds
// nothing. The check runs against the stored snapshot, not the role table.
func HasPermission(user *User, permission Permission) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Permissions, permission)
}

// HasAnyPermission reports whether user holds at least one of permissions.
// An empty request is never satisfied.
func HasAnyPermission(user *User, permissions []Permission) bool {
	if user == nil {
		return false
	}
	for _, p := range permissions {
		if slices.Contains(user.Permissions, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether user holds every one of permissions.
//
// An empty request is vacuously satisfied for any non-nil user. Callers that
// gate on a computed list must make sure the list cannot be empty; changing
// this convention needs its test updated on purpose.
func HasAllPermissions(user *User, permissions []Permission) bool {
	if user == nil {
		return false
	}
	for _, p := range permissions {
		if !slices.Contains(user.Permissions, p) {
			return false
		}
	}
	return true
}
