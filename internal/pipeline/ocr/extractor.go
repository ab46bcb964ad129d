package ocr

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/pipeline/sampler"
	"screen2doc.backend/pkg/logger"
)

// FrameText is the recognized text of one frame, in frame order.
type FrameText struct {
	FrameIndex  int
	Timestamp   time.Duration
	SceneChange bool
	Text        string
}

// Extractor runs the OCR engine over sampled frames. Frames without
// recognizable text are dropped. A single frame's failure is logged and
// skipped; the extraction only fails when every frame fails.
type Extractor struct {
	engine      Engine
	callTimeout time.Duration
}

// NewExtractor creates an extractor with a per-frame call timeout.
func NewExtractor(engine Engine, callTimeout time.Duration) *Extractor {
	return &Extractor{engine: engine, callTimeout: callTimeout}
}

// ExtractAll recognizes text for each frame and returns the non-empty
// results in order.
func (e *Extractor) ExtractAll(ctx context.Context, frames []sampler.Frame) ([]FrameText, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to process", domainerrors.ErrOcrFailure)
	}

	var results []FrameText
	var lastErr error
	failures := 0

	for _, frame := range frames {
		text, err := e.recognizeOne(ctx, frame.Path)
		if err != nil {
			failures++
			lastErr = err
			logger.Warn(ctx, "ocr failed for frame",
				zap.Int("frame", frame.Index),
				zap.Error(err),
			)
			continue
		}
		if text == "" {
			continue
		}
		results = append(results, FrameText{
			FrameIndex:  frame.Index,
			Timestamp:   frame.Timestamp,
			SceneChange: frame.SceneChange,
			Text:        text,
		})
	}

	if failures == len(frames) {
		return nil, fmt.Errorf("%w: all %d frames failed: %v", domainerrors.ErrOcrFailure, failures, lastErr)
	}
	return results, nil
}

func (e *Extractor) recognizeOne(ctx context.Context, path string) (string, error) {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	return e.engine.Recognize(ctx, path)
}

// Texts returns just the text strings, in frame order.
func Texts(results []FrameText) []string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return texts
}
