package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"screen2doc.backend/internal/domain/entities"
	"screen2doc.backend/internal/pipeline/ocr"
	"screen2doc.backend/internal/pipeline/sampler"
	"screen2doc.backend/pkg/redis"
)

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock VerificationCodeRepository
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Create(ctx context.Context, code *entities.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*entities.VerificationCode, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVerificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// Mock email Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendVerificationCode(ctx context.Context, to, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

// Mock VideoRepository
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *entities.Video) error {
	args := m.Called(ctx, video)
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Video), args.Error(1)
}

func (m *MockVideoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Video), args.Error(1)
}

func (m *MockVideoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.VideoStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// Mock AnalysisRepository
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, analysis *entities.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByVideoID(ctx context.Context, videoID uuid.UUID) (*entities.Analysis, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Analysis), args.Error(1)
}

// Mock FrameSampler
type MockFrameSampler struct {
	mock.Mock
}

func (m *MockFrameSampler) Sample(ctx context.Context, videoPath string) ([]sampler.Frame, error) {
	args := m.Called(ctx, videoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sampler.Frame), args.Error(1)
}

func (m *MockFrameSampler) Cleanup(videoPath string) error {
	args := m.Called(videoPath)
	return args.Error(0)
}

// Mock TextExtractor
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractAll(ctx context.Context, frames []sampler.Frame) ([]ocr.FrameText, error) {
	args := m.Called(ctx, frames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ocr.FrameText), args.Error(1)
}

// Mock DocumentGenerator
type MockDocumentGenerator struct {
	mock.Mock
}

func (m *MockDocumentGenerator) GeneratePRD(ctx context.Context, extractedTexts []string) (string, error) {
	args := m.Called(ctx, extractedTexts)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentGenerator) GenerateBusinessPlan(ctx context.Context, prdContent string) (string, error) {
	args := m.Called(ctx, prdContent)
	return args.String(0), args.Error(1)
}

// Mock DocumentCache
type MockDocumentCache struct {
	mock.Mock
}

func (m *MockDocumentCache) Put(ctx context.Context, kind redis.DocumentKind, videoID, content string) error {
	args := m.Called(ctx, kind, videoID, content)
	return args.Error(0)
}

func (m *MockDocumentCache) Get(ctx context.Context, kind redis.DocumentKind, videoID string) (string, error) {
	args := m.Called(ctx, kind, videoID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentCache) Invalidate(ctx context.Context, videoID string) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
