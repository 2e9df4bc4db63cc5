// Package service defines the contracts for domain services whose concrete
// implementations live under internal/infra.
package service

// PasswordHasher abstracts slow, salted one-way password hashing.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash in constant
	// time. Returns true on match.
	Check(password, hash string) bool
}
