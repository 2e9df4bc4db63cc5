// Package model holds the GORM persistence models. They mirror the database
// schema and are mapped to and from pure domain entities at the repository
// boundary.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// Email, phone and the credential columns are nullable: a social-only account
// has no phone or password, and a provider may withhold the email.
type UserModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name           string     `gorm:"type:varchar(255);not null"`
	Email          *string    `gorm:"type:varchar(255);unique"`
	Phone          *string    `gorm:"type:varchar(20);unique"`
	PasswordHash   *string    `gorm:"type:varchar(255)"`
	Provider       *string    `gorm:"type:varchar(32);uniqueIndex:idx_users_provider_identity"`
	ProviderID     *string    `gorm:"type:varchar(255);uniqueIndex:idx_users_provider_identity"`
	AvatarURL      *string    `gorm:"type:varchar(2048)"`
	LastLoggedInAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	AccessTokens  []AccessTokenModel  `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshTokenModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
