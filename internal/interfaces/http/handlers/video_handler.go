package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/interfaces/http/middleware"
	"screen2doc.backend/internal/interfaces/http/response"
)

// VideoService is the slice of the video usecase the handler needs.
type VideoService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename string, file io.Reader) (*entities.Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]*entities.VideoListItem, error)
	GetPRD(ctx context.Context, userID, videoID uuid.UUID) (string, error)
	GetBusinessPlan(ctx context.Context, userID, videoID uuid.UUID) (string, error)
}

// VideoHandler handles video upload and document retrieval endpoints
type VideoHandler struct {
	videos       VideoService
	maxSizeBytes int64
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videos VideoService, maxSizeBytes int64) *VideoHandler {
	return &VideoHandler{videos: videos, maxSizeBytes: maxSizeBytes}
}

// Upload accepts a multipart video and runs the analysis pipeline
// POST /api/videos/upload
func (h *VideoHandler) Upload(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	// A declared oversize body is rejected before reading it; the usecase
	// still enforces the cap on the actual bytes.
	if c.Request.ContentLength > h.maxSizeBytes {
		response.Error(c, domainerrors.PayloadTooLarge("File too large. Maximum size is 500MB"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Missing file field"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Unable to read uploaded file"))
		return
	}
	defer file.Close()

	video, err := h.videos.Upload(c.Request.Context(), user.ID, fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"video_id": video.ID,
		"status":   video.Status,
		"message":  "Video uploaded and analyzed successfully",
	})
}

// List returns the caller's videos, newest first
// GET /api/videos
func (h *VideoHandler) List(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	items, err := h.videos.ListVideos(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"videos": items})
}

// GetPRD returns the generated PRD document
// GET /api/videos/:id/prd
func (h *VideoHandler) GetPRD(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid video ID"))
		return
	}

	prd, err := h.videos.GetPRD(c.Request.Context(), user.ID, videoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"video_id":    videoID,
		"prd_content": prd,
	})
}

// GetBusinessPlan returns the generated business plan document
// GET /api/videos/:id/business-plan
func (h *VideoHandler) GetBusinessPlan(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid video ID"))
		return
	}

	plan, err := h.videos.GetBusinessPlan(c.Request.Context(), user.ID, videoID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"video_id":      videoID,
		"business_plan": plan,
	})
}
