package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/infrastructure/models"
)

// VideoRepository implements uploaded video data operations
type VideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create creates a new video record
func (r *VideoRepository) Create(ctx context.Context, video *entities.Video) error {
	if video.ID == uuid.Nil {
		video.ID = uuid.New()
	}
	if video.Status == "" {
		video.Status = entities.VideoStatusPending
	}
	m := &models.Video{
		ID:       video.ID,
		UserID:   video.UserID,
		Filename: video.Filename,
		Status:   string(video.Status),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	video.CreatedAt = m.CreatedAt
	video.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a video by ID
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	var m models.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return videoToEntity(&m), nil
}

// ListByUser lists a user's videos, newest first
func (r *VideoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error) {
	var videoModels []models.Video
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&videoModels).Error
	if err != nil {
		return nil, err
	}
	videos := make([]*entities.Video, 0, len(videoModels))
	for i := range videoModels {
		videos = append(videos, videoToEntity(&videoModels[i]))
	}
	return videos, nil
}

// UpdateStatus moves a video from one status to another. The WHERE clause
// carries the expected current status, so a concurrent writer that already
// advanced the row makes this a no-op and the caller sees ErrNotFound.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.VideoStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func videoToEntity(m *models.Video) *entities.Video {
	return &entities.Video{
		ID:        m.ID,
		UserID:    m.UserID,
		Filename:  m.Filename,
		Status:    entities.VideoStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
