package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VideoStatus tracks pipeline progress. Transitions move forward only:
// pending -> processing -> completed | failed.
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// Video represents one uploaded screen recording.
type Video struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"userId"`
	Filename  string      `json:"filename"`
	Status    VideoStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Analysis holds the documents generated for a video. Both fields stay null
// until generation finishes; a video is never "completed" with a partial row.
type Analysis struct {
	ID           uuid.UUID   `json:"id"`
	VideoID      uuid.UUID   `json:"videoId"`
	PRDContent   null.String `json:"prdContent"`
	BusinessPlan null.String `json:"businessPlan"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// VideoListItem is the per-video entry returned by the list endpoint.
type VideoListItem struct {
	ID             uuid.UUID   `json:"video_id"`
	Status         VideoStatus `json:"status"`
	DocumentsReady bool        `json:"documents_ready"`
	CreatedAt      time.Time   `json:"created_at"`
}
