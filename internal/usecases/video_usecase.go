package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/domain/repositories"
	"screen2doc.backend/internal/metrics"
	"screen2doc.backend/internal/pipeline/ocr"
	"screen2doc.backend/internal/pipeline/sampler"
	"screen2doc.backend/pkg/logger"
	"screen2doc.backend/pkg/redis"
)

// allowedExtensions is the accepted upload set.
var allowedExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".wmv": true,
}

// FrameSampler produces ordered still frames from a stored video file.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath string) ([]sampler.Frame, error)
	Cleanup(videoPath string) error
}

// TextExtractor turns sampled frames into ordered non-empty text.
type TextExtractor interface {
	ExtractAll(ctx context.Context, frames []sampler.Frame) ([]ocr.FrameText, error)
}

// DocumentGenerator produces the two markdown documents.
type DocumentGenerator interface {
	GeneratePRD(ctx context.Context, extractedTexts []string) (string, error)
	GenerateBusinessPlan(ctx context.Context, prdContent string) (string, error)
}

// DocumentCache keeps completed documents close; nil disables caching.
type DocumentCache interface {
	Put(ctx context.Context, kind redis.DocumentKind, videoID, content string) error
	Get(ctx context.Context, kind redis.DocumentKind, videoID string) (string, error)
	Invalidate(ctx context.Context, videoID string) error
}

// VideoUsecase drives the upload pipeline: validate, persist, sample,
// extract, generate, record. Each upload is processed synchronously inside
// its request.
type VideoUsecase struct {
	videoRepo    repositories.VideoRepository
	analysisRepo repositories.AnalysisRepository
	sampler      FrameSampler
	extractor    TextExtractor
	generator    DocumentGenerator
	cache        DocumentCache
	recorder     metrics.Recorder
	uploadDir    string
	maxSizeBytes int64
}

// NewVideoUsecase creates the upload orchestrator.
func NewVideoUsecase(
	videoRepo repositories.VideoRepository,
	analysisRepo repositories.AnalysisRepository,
	frameSampler FrameSampler,
	extractor TextExtractor,
	generator DocumentGenerator,
	cache DocumentCache,
	recorder metrics.Recorder,
	uploadDir string,
	maxSizeBytes int64,
) *VideoUsecase {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &VideoUsecase{
		videoRepo:    videoRepo,
		analysisRepo: analysisRepo,
		sampler:      frameSampler,
		extractor:    extractor,
		generator:    generator,
		cache:        cache,
		recorder:     recorder,
		uploadDir:    uploadDir,
		maxSizeBytes: maxSizeBytes,
	}
}

// Upload validates and stores the incoming file, then runs the analysis
// pipeline to completion. The returned video carries the final status; a
// non-nil error alongside a video means a pipeline stage failed after the
// upload itself was accepted.
func (u *VideoUsecase) Upload(ctx context.Context, userID uuid.UUID, originalFilename string, file io.Reader) (*entities.Video, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return nil, domainerrors.UnsupportedMedia("Invalid file type. Allowed types: mp4, avi, mov, wmv")
	}

	storedName := fmt.Sprintf("%s_%d%s", userID, time.Now().UnixNano(), ext)
	videoPath := filepath.Join(u.uploadDir, storedName)
	if err := u.saveFile(videoPath, file); err != nil {
		return nil, err
	}

	video := &entities.Video{
		UserID:   userID,
		Filename: storedName,
		Status:   entities.VideoStatusPending,
	}
	if err := u.videoRepo.Create(ctx, video); err != nil {
		os.Remove(videoPath)
		return nil, err
	}
	u.recorder.RecordUpload()

	if err := u.process(ctx, video, videoPath); err != nil {
		return video, err
	}
	return video, nil
}

// saveFile streams the upload to disk, counting bytes as they arrive. The
// size ceiling is enforced on the cumulative count, so an oversized body is
// rejected mid-stream and the partial file removed.
func (u *VideoUsecase) saveFile(path string, file io.Reader) error {
	if err := os.MkdirAll(u.uploadDir, 0o755); err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return err
	}

	written, err := io.Copy(dst, io.LimitReader(file, u.maxSizeBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	if written > u.maxSizeBytes {
		os.Remove(path)
		return domainerrors.PayloadTooLarge("File too large. Maximum size is 500MB")
	}
	return nil
}

// process runs the pipeline stages in order. Any stage error marks the
// video failed; no partial analysis is persisted.
func (u *VideoUsecase) process(ctx context.Context, video *entities.Video, videoPath string) error {
	if err := u.videoRepo.UpdateStatus(ctx, video.ID, entities.VideoStatusPending, entities.VideoStatusProcessing); err != nil {
		return err
	}
	video.Status = entities.VideoStatusProcessing

	defer func() {
		if err := u.sampler.Cleanup(videoPath); err != nil {
			logger.Warn(ctx, "failed to clean frame directory", zap.String("video", video.ID.String()), zap.Error(err))
		}
	}()

	frames, err := timedStage(u.recorder, domainerrors.StageSampling, func() ([]sampler.Frame, error) {
		return u.sampler.Sample(ctx, videoPath)
	})
	if err != nil {
		return u.fail(ctx, video, domainerrors.StageSampling, err)
	}

	texts, err := timedStage(u.recorder, domainerrors.StageExtraction, func() ([]ocr.FrameText, error) {
		return u.extractor.ExtractAll(ctx, frames)
	})
	if err != nil {
		return u.fail(ctx, video, domainerrors.StageExtraction, err)
	}

	prd, err := timedStage(u.recorder, domainerrors.StagePRD, func() (string, error) {
		return u.generator.GeneratePRD(ctx, ocr.Texts(texts))
	})
	if err != nil {
		return u.fail(ctx, video, domainerrors.StagePRD, err)
	}

	plan, err := timedStage(u.recorder, domainerrors.StagePlan, func() (string, error) {
		return u.generator.GenerateBusinessPlan(ctx, prd)
	})
	if err != nil {
		return u.fail(ctx, video, domainerrors.StagePlan, err)
	}

	analysis := &entities.Analysis{
		VideoID:      video.ID,
		PRDContent:   null.StringFrom(prd),
		BusinessPlan: null.StringFrom(plan),
	}
	if err := u.analysisRepo.Create(ctx, analysis); err != nil {
		return u.fail(ctx, video, domainerrors.StagePlan, err)
	}

	if err := u.videoRepo.UpdateStatus(ctx, video.ID, entities.VideoStatusProcessing, entities.VideoStatusCompleted); err != nil {
		return err
	}
	video.Status = entities.VideoStatusCompleted
	u.recorder.RecordPipelineSuccess()

	u.cachePut(ctx, redis.DocumentPRD, video.ID, prd)
	u.cachePut(ctx, redis.DocumentBusinessPlan, video.ID, plan)

	logger.Info(ctx, "video analysis completed",
		zap.String("video", video.ID.String()),
		zap.Int("frames", len(frames)),
		zap.Int("texts", len(texts)),
	)
	return nil
}

func (u *VideoUsecase) fail(ctx context.Context, video *entities.Video, stage string, cause error) error {
	if err := u.videoRepo.UpdateStatus(ctx, video.ID, entities.VideoStatusProcessing, entities.VideoStatusFailed); err != nil {
		logger.Error(ctx, "failed to mark video failed", zap.String("video", video.ID.String()), zap.Error(err))
	} else {
		video.Status = entities.VideoStatusFailed
	}
	u.recorder.RecordPipelineFailure(stage)
	u.cacheDrop(ctx, video.ID)
	return domainerrors.NewPipelineError(stage, cause)
}

// timedStage records how long one stage took regardless of outcome.
func timedStage[T any](recorder metrics.Recorder, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	recorder.RecordStageLatency(stage, time.Since(start))
	return result, err
}

// GetPRD returns the generated PRD for a video the requester owns.
func (u *VideoUsecase) GetPRD(ctx context.Context, userID, videoID uuid.UUID) (string, error) {
	if err := u.authorize(ctx, userID, videoID); err != nil {
		return "", err
	}

	if doc, ok := u.cacheGet(ctx, redis.DocumentPRD, videoID); ok {
		return doc, nil
	}

	analysis, err := u.analysisRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.NotFound("Analysis not found")
		}
		return "", err
	}
	if !analysis.PRDContent.Valid {
		return "", domainerrors.NotFound("PRD not generated yet")
	}

	u.cachePut(ctx, redis.DocumentPRD, videoID, analysis.PRDContent.String)
	return analysis.PRDContent.String, nil
}

// GetBusinessPlan returns the generated business plan for a video the
// requester owns.
func (u *VideoUsecase) GetBusinessPlan(ctx context.Context, userID, videoID uuid.UUID) (string, error) {
	if err := u.authorize(ctx, userID, videoID); err != nil {
		return "", err
	}

	if doc, ok := u.cacheGet(ctx, redis.DocumentBusinessPlan, videoID); ok {
		return doc, nil
	}

	analysis, err := u.analysisRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.NotFound("Analysis not found")
		}
		return "", err
	}
	if !analysis.BusinessPlan.Valid {
		return "", domainerrors.NotFound("Business plan not generated yet")
	}

	u.cachePut(ctx, redis.DocumentBusinessPlan, videoID, analysis.BusinessPlan.String)
	return analysis.BusinessPlan.String, nil
}

// ListVideos returns the requester's videos, newest first.
func (u *VideoUsecase) ListVideos(ctx context.Context, userID uuid.UUID) ([]*entities.VideoListItem, error) {
	videos, err := u.videoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]*entities.VideoListItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, &entities.VideoListItem{
			ID:             v.ID,
			Status:         v.Status,
			DocumentsReady: v.Status == entities.VideoStatusCompleted,
			CreatedAt:      v.CreatedAt,
		})
	}
	return items, nil
}

// authorize checks the video exists and belongs to the requester. Ownership
// is checked on every read.
func (u *VideoUsecase) authorize(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := u.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("Video not found")
		}
		return err
	}
	if video.UserID != userID {
		return domainerrors.Forbidden("Not authorized to access this video")
	}
	return nil
}

func (u *VideoUsecase) cachePut(ctx context.Context, kind redis.DocumentKind, videoID uuid.UUID, content string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Put(ctx, kind, videoID.String(), content); err != nil {
		logger.Warn(ctx, "failed to cache document", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// cacheDrop removes any cached documents for a video. No document should
// survive in the cache for a video whose run did not complete.
func (u *VideoUsecase) cacheDrop(ctx context.Context, videoID uuid.UUID) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, videoID.String()); err != nil {
		logger.Warn(ctx, "failed to invalidate document cache", zap.String("video", videoID.String()), zap.Error(err))
	}
}

func (u *VideoUsecase) cacheGet(ctx context.Context, kind redis.DocumentKind, videoID uuid.UUID) (string, bool) {
	if u.cache == nil {
		return "", false
	}
	doc, err := u.cache.Get(ctx, kind, videoID.String())
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			logger.Warn(ctx, "document cache read failed", zap.String("kind", string(kind)), zap.Error(err))
		}
		return "", false
	}
	return doc, true
}
