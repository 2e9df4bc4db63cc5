package postgres

import (
	"context"
	"time"

	"gate/internal/domain/entity"
	"gate/internal/domain/repository"
	"gate/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements the domain's TokenRepository interface using GORM.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// CreateAccessToken persists the revocation record of a freshly minted access token.
func (repo *tokenRepository) CreateAccessToken(ctx context.Context, token *entity.AccessToken) error {
	tokenM := &model.AccessTokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		RevokedAt: token.RevokedAt,
		CreatedAt: token.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return errors.Wrap(err, "failed to create access token record")
	}

	return nil
}

// FindAccessTokenByID retrieves the record for the given jti.
func (repo *tokenRepository) FindAccessTokenByID(ctx context.Context, id uuid.UUID) (*entity.AccessToken, error) {
	var tokenM model.AccessTokenModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccessTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find access token")
	}

	return &entity.AccessToken{
		ID:        tokenM.ID,
		UserID:    tokenM.UserID,
		TokenHash: tokenM.TokenHash,
		ExpiresAt: tokenM.ExpiresAt,
		RevokedAt: tokenM.RevokedAt,
		CreatedAt: tokenM.CreatedAt,
	}, nil
}

// RevokeAccessToken marks the token permanently unusable. Revoking an already
// revoked token is a no-op.
func (repo *tokenRepository) RevokeAccessToken(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccessTokenModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", time.Now())
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to revoke access token")
	}

	if result.RowsAffected == 0 {
		// Distinguish an unknown token from one already revoked.
		var count int64
		if err := repo.db.WithContext(ctx).
			Model(&model.AccessTokenModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check access token existence")
		}
		if count == 0 {
			return repository.ErrAccessTokenNotFound
		}
	}

	return nil
}

// CreateRefreshToken persists a new refresh token record.
func (repo *tokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	tokenM := &model.RefreshTokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		return errors.Wrap(err, "failed to create refresh token record")
	}

	return nil
}

// FindRefreshTokenByHash retrieves an unexpired refresh token by its SHA-256 hash.
func (repo *tokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var tokenM model.RefreshTokenModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	if tokenM.ExpiresAt.Before(time.Now()) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return &entity.RefreshToken{
		ID:        tokenM.ID,
		UserID:    tokenM.UserID,
		TokenHash: tokenM.TokenHash,
		ExpiresAt: tokenM.ExpiresAt,
		CreatedAt: tokenM.CreatedAt,
	}, nil
}

// DeleteRefreshTokensByUserID removes all refresh tokens of a user.
func (repo *tokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshTokenModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete refresh tokens")
	}

	return nil
}

// DeleteExpired purges expired token records. Revoked access tokens are kept
// until expiry so revocation stays effective for the token's whole lifetime.
func (repo *tokenRepository) DeleteExpired(ctx context.Context) error {
	now := time.Now()

	if err := repo.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.AccessTokenModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete expired access tokens")
	}

	if err := repo.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.RefreshTokenModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete expired refresh tokens")
	}

	return nil
}
