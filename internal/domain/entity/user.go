// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the single identity record of the system. A user is created either
// through password registration (name/email/phone/password) or through a
// social-provider callback (provider/provider id). Both credential paths may
// coexist on one record, but exactly one of them establishes the account.
type User struct {
	ID             uuid.UUID  // Stable opaque identifier for the user.
	Name           string     // Display name.
	Email          string     // Unique when present. Empty only for provider accounts that withheld it.
	Phone          string     // Unique when present, "62"-prefixed with an allow-listed carrier. Empty for social-only accounts.
	PasswordHash   string     // bcrypt hash. Empty for social-only accounts.
	Provider       string     // External identity provider name, e.g. "google". Empty for password accounts.
	ProviderID     string     // The user's unique ID at the provider. Unique per provider.
	AvatarURL      string     // Profile picture URL supplied by the provider.
	LastLoggedInAt *time.Time // Set on every successful login, nil until the first one.
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsSocial reports whether the account is linked to an external provider.
func (u *User) IsSocial() bool {
	return u.Provider != ""
}
