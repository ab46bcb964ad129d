package usecases

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/domain/repositories"
	"screen2doc.backend/internal/infrastructure/email"
	"screen2doc.backend/pkg/crypto"
	"screen2doc.backend/pkg/jwt"
	"screen2doc.backend/pkg/logger"
)

const (
	codeExpiry        = 10 * time.Minute
	resendWindow      = 15 * time.Minute
	maxResendAttempts = 3
)

// AuthUsecase handles registration, verification and login
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	codeRepo   repositories.VerificationCodeRepository
	sender     email.Sender
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	codeRepo repositories.VerificationCodeRepository,
	sender email.Sender,
	jwtService *jwt.JWTService,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		codeRepo:   codeRepo,
		sender:     sender,
		jwtService: jwtService,
	}
}

// Register creates an unverified user and dispatches a verification code
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	if err := crypto.ValidatePasswordPolicy(input.Password); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	// Check uniqueness of email and username
	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.Conflict("Email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	_, err = u.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, domainerrors.Conflict("Username already taken")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := u.issueCode(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyEmail confirms the most recently issued code for a user. Verifying
// an already verified user succeeds.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) error {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("User not found")
		}
		return err
	}

	if user.IsVerified {
		return nil
	}

	code, err := u.codeRepo.GetLatest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NewAppError(http.StatusBadRequest, "INVALID_CODE", "Invalid verification code", domainerrors.ErrInvalidCode)
		}
		return err
	}

	if code.Code != input.Code {
		return domainerrors.NewAppError(http.StatusBadRequest, "INVALID_CODE", "Invalid verification code", domainerrors.ErrInvalidCode)
	}
	if time.Now().After(code.ExpiresAt) {
		return domainerrors.NewAppError(http.StatusBadRequest, "CODE_EXPIRED", "Verification code expired", domainerrors.ErrCodeExpired)
	}

	return u.userRepo.MarkVerified(ctx, user.ID)
}

// Login authenticates a verified user and returns a bearer token. Unknown
// emails and wrong passwords produce the same error so accounts cannot be
// enumerated; an unverified account is reported distinctly.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.TokenResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password", domainerrors.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password", domainerrors.ErrInvalidCredentials)
	}

	if !user.IsVerified {
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "Email not verified", domainerrors.ErrEmailNotVerified)
	}

	token, err := u.jwtService.GenerateToken(user.Email)
	if err != nil {
		return nil, err
	}

	return &entities.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// ResendVerification issues a fresh code, limited to maxResendAttempts per
// rolling resendWindow per user.
func (u *AuthUsecase) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := u.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("User not found")
		}
		return err
	}

	if user.IsVerified {
		return domainerrors.Conflict("Email already verified")
	}

	count, err := u.codeRepo.CountSince(ctx, user.ID, time.Now().Add(-resendWindow))
	if err != nil {
		return err
	}
	if count >= maxResendAttempts {
		return domainerrors.RateLimited("Too many verification attempts. Please try again later.")
	}

	return u.issueCode(ctx, user)
}

// Authenticate resolves a bearer token to its user. Any failure is reported
// as unauthorized.
func (u *AuthUsecase) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return user, nil
}

func (u *AuthUsecase) issueCode(ctx context.Context, user *entities.User) error {
	code, err := crypto.GenerateVerificationCode()
	if err != nil {
		return err
	}

	vc := &entities.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(codeExpiry),
	}
	if err := u.codeRepo.Create(ctx, vc); err != nil {
		return err
	}

	if err := u.sender.SendVerificationCode(ctx, user.Email, code); err != nil {
		logger.Error(ctx, "failed to dispatch verification code", zap.String("email", user.Email), zap.Error(err))
		return err
	}
	return nil
}
