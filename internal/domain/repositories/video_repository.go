package repositories

import (
	"context"

	"github.com/google/uuid"
	"screen2doc.backend/internal/domain/entities"
)

// VideoRepository defines uploaded video data operations. UpdateStatus is a
// guarded compare-and-set: it only succeeds when the row still holds the
// expected current status, so concurrent writers cannot move a video
// backwards.
type VideoRepository interface {
	Create(ctx context.Context, video *entities.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Video, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entities.VideoStatus) error
}

// AnalysisRepository defines generated document persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entities.Analysis) error
	GetByVideoID(ctx context.Context, videoID uuid.UUID) (*entities.Analysis, error)
}
