package postgres

import (
	"testing"

	"gate/internal/domain/repository"
	"gate/internal/errors"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintViolation(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueConstraintViolation(errors.New("connection refused")))
}

func TestDuplicateUserError_ColumnMapping(t *testing.T) {
	emailErr := errors.New(`duplicate key value violates unique constraint "users_email_key"`)
	phoneErr := errors.New(`duplicate key value violates unique constraint "users_phone_key"`)
	providerErr := errors.New(`duplicate key value violates unique constraint "idx_users_provider_identity"`)
	unknownErr := errors.New("duplicate key value violates unique constraint")

	assert.ErrorIs(t, duplicateUserError(emailErr), repository.ErrDuplicateEmail)
	assert.ErrorIs(t, duplicateUserError(phoneErr), repository.ErrDuplicatePhone)
	assert.ErrorIs(t, duplicateUserError(providerErr), repository.ErrDuplicateUser)
	assert.ErrorIs(t, duplicateUserError(unknownErr), repository.ErrDuplicateUser)
}
