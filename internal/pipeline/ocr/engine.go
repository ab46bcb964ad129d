package ocr

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Engine turns a frame image into recognized text. The implementation is an
// external capability; frames that yield no text return an empty string, not
// an error.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// TesseractEngine shells out to the tesseract binary.
type TesseractEngine struct {
	binaryPath string
	language   string
}

var runTesseract = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// NewTesseractEngine creates an engine using the tesseract binary on PATH.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{binaryPath: "tesseract", language: language}
}

// Recognize runs OCR over a single image and returns the trimmed text.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, err := runTesseract(ctx, e.binaryPath, imagePath, "stdout", "-l", e.language)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
