package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/infrastructure/models"
)

// AnalysisRepository implements generated document persistence
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores the generated documents for a video
func (r *AnalysisRepository) Create(ctx context.Context, analysis *entities.Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	m := &models.Analysis{
		ID:           analysis.ID,
		VideoID:      analysis.VideoID,
		PRDContent:   analysis.PRDContent.Ptr(),
		BusinessPlan: analysis.BusinessPlan.Ptr(),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	analysis.CreatedAt = m.CreatedAt
	return nil
}

// GetByVideoID gets the analysis for a video
func (r *AnalysisRepository) GetByVideoID(ctx context.Context, videoID uuid.UUID) (*entities.Analysis, error) {
	var m models.Analysis
	if err := r.db.WithContext(ctx).Where("video_id = ?", videoID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Analysis{
		ID:           m.ID,
		VideoID:      m.VideoID,
		PRDContent:   null.StringFromPtr(m.PRDContent),
		BusinessPlan: null.StringFromPtr(m.BusinessPlan),
		CreatedAt:    m.CreatedAt,
	}, nil
}
