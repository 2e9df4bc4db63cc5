package postgres

import (
	"strings"

	"gate/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isUniqueConstraintViolation reports whether err is a uniqueness violation.
// GORM translates PostgreSQL's 23505 into ErrDuplicatedKey; the message scan
// covers drivers that bypass the translation.
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// duplicateUserError maps a uniqueness violation on the users table to the
// column-specific repository sentinel. The constraint name in the driver's
// message tells the columns apart; an unrecognizable message falls back to
// the generic sentinel.
func duplicateUserError(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "email"):
		return repository.ErrDuplicateEmail
	case strings.Contains(msg, "phone"):
		return repository.ErrDuplicatePhone
	case strings.Contains(msg, "provider"):
		return repository.ErrDuplicateUser
	default:
		return repository.ErrDuplicateUser
	}
}
