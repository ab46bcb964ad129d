package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"screen2doc.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// VerificationCodeRepository defines one-time verification code operations.
// GetLatest returns the most recently created code for a user; older codes
// are never consulted.
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *entities.VerificationCode) error
	GetLatest(ctx context.Context, userID uuid.UUID) (*entities.VerificationCode, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
