package postgres

import (
	"context"

	"gate/internal/domain/entity"
	"gate/internal/domain/repository"
	"gate/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain's UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByEmail retrieves a single user by their email address. NULL emails
// never match.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return toUserDomain(&userM), nil
}

// FindByPhone retrieves a single user by their phone number.
func (repo *userRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by phone")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity to the database.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return duplicateUserError(err)
		}

		return errors.Wrap(err, "failed to create user")
	}

	// Propagate the generated ID and timestamps back to the entity.
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update modifies an existing user entity in the database.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return duplicateUserError(err)
		}

		return errors.Wrap(err, "failed to update user")
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpsertByProvider creates or refreshes the user keyed by (provider,
// providerID). On a returning user the provider's current name, email and
// avatar overwrite the stored profile.
func (repo *userRepository) UpsertByProvider(ctx context.Context, provider, providerID string, profile *entity.User) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&userM).Error

	switch {
	case err == nil:
		userM.Name = profile.Name
		userM.Email = optional(profile.Email)
		userM.AvatarURL = optional(profile.AvatarURL)
		if err := repo.db.WithContext(ctx).Save(&userM).Error; err != nil {
			if isUniqueConstraintViolation(err) {
				return nil, duplicateUserError(err)
			}

			return nil, errors.Wrap(err, "failed to refresh social user")
		}

		return toUserDomain(&userM), nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		created := fromUserDomain(profile)
		created.Provider = optional(provider)
		created.ProviderID = optional(providerID)
		if err := repo.db.WithContext(ctx).Create(created).Error; err != nil {
			if isUniqueConstraintViolation(err) {
				return nil, duplicateUserError(err)
			}

			return nil, errors.Wrap(err, "failed to create social user")
		}

		return toUserDomain(created), nil

	default:
		return nil, errors.Wrap(err, "failed to look up social user")
	}
}

// --- Mappers ---

// toUserDomain maps the persistence model to a pure domain entity.
func toUserDomain(userM *model.UserModel) *entity.User {
	return &entity.User{
		ID:             userM.ID,
		Name:           userM.Name,
		Email:          deref(userM.Email),
		Phone:          deref(userM.Phone),
		PasswordHash:   deref(userM.PasswordHash),
		Provider:       deref(userM.Provider),
		ProviderID:     deref(userM.ProviderID),
		AvatarURL:      deref(userM.AvatarURL),
		LastLoggedInAt: userM.LastLoggedInAt,
		CreatedAt:      userM.CreatedAt,
		UpdatedAt:      userM.UpdatedAt,
	}
}

// fromUserDomain maps a domain entity to the persistence model. Empty
// optional fields become NULL so the partial unique indexes hold.
func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:             user.ID,
		Name:           user.Name,
		Email:          optional(user.Email),
		Phone:          optional(user.Phone),
		PasswordHash:   optional(user.PasswordHash),
		Provider:       optional(user.Provider),
		ProviderID:     optional(user.ProviderID),
		AvatarURL:      optional(user.AvatarURL),
		LastLoggedInAt: user.LastLoggedInAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
