package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/infrastructure/models"
)

// VerificationCodeRepository implements one-time verification code operations
type VerificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

// Create stores a new verification code
func (r *VerificationCodeRepository) Create(ctx context.Context, code *entities.VerificationCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	m := &models.VerificationCode{
		ID:        code.ID,
		UserID:    code.UserID,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	code.CreatedAt = m.CreatedAt
	return nil
}

// GetLatest returns the most recently created code for a user. Older codes
// stay in the table but are never authoritative.
func (r *VerificationCodeRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*entities.VerificationCode, error) {
	var m models.VerificationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.VerificationCode{
		ID:        m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

// CountSince counts codes issued to a user after the given instant. The
// resend rate limit is enforced against this count.
func (r *VerificationCodeRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteExpired removes codes whose expiry is before the given instant.
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.VerificationCode{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
