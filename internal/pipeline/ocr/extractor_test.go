package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/internal/pipeline/sampler"
)

type stubEngine struct {
	results map[string]string
	errs    map[string]error
	calls   []string
}

func (s *stubEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	s.calls = append(s.calls, imagePath)
	if err, ok := s.errs[imagePath]; ok {
		return "", err
	}
	return s.results[imagePath], nil
}

func frames(paths ...string) []sampler.Frame {
	out := make([]sampler.Frame, 0, len(paths))
	for i, p := range paths {
		out = append(out, sampler.Frame{Index: i, Timestamp: time.Duration(i) * time.Second, Path: p})
	}
	return out
}

func TestExtractAll_OrderPreserved(t *testing.T) {
	engine := &stubEngine{results: map[string]string{
		"a.png": "first screen",
		"b.png": "second screen",
		"c.png": "third screen",
	}}
	e := NewExtractor(engine, time.Second)

	results, err := e.ExtractAll(context.Background(), frames("a.png", "b.png", "c.png"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"first screen", "second screen", "third screen"}, Texts(results))
	assert.Equal(t, 0, results[0].FrameIndex)
	assert.Equal(t, 2, results[2].FrameIndex)
}

func TestExtractAll_DropsEmptyFrames(t *testing.T) {
	engine := &stubEngine{results: map[string]string{
		"a.png": "has text",
		"b.png": "",
		"c.png": "more text",
	}}
	e := NewExtractor(engine, time.Second)

	results, err := e.ExtractAll(context.Background(), frames("a.png", "b.png", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"has text", "more text"}, Texts(results))
}

func TestExtractAll_SingleFailureSkipped(t *testing.T) {
	engine := &stubEngine{
		results: map[string]string{"a.png": "ok", "c.png": "also ok"},
		errs:    map[string]error{"b.png": errors.New("tesseract crashed")},
	}
	e := NewExtractor(engine, time.Second)

	results, err := e.ExtractAll(context.Background(), frames("a.png", "b.png", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "also ok"}, Texts(results))
}

func TestExtractAll_AllFramesFail(t *testing.T) {
	engine := &stubEngine{errs: map[string]error{
		"a.png": errors.New("boom"),
		"b.png": errors.New("boom"),
	}}
	e := NewExtractor(engine, time.Second)

	_, err := e.ExtractAll(context.Background(), frames("a.png", "b.png"))
	assert.ErrorIs(t, err, domainerrors.ErrOcrFailure)
}

func TestExtractAll_NoFrames(t *testing.T) {
	e := NewExtractor(&stubEngine{}, time.Second)

	_, err := e.ExtractAll(context.Background(), nil)
	assert.ErrorIs(t, err, domainerrors.ErrOcrFailure)
}

func TestExtractAll_AllEmptyIsNotAFailure(t *testing.T) {
	engine := &stubEngine{results: map[string]string{"a.png": "", "b.png": ""}}
	e := NewExtractor(engine, time.Second)

	results, err := e.ExtractAll(context.Background(), frames("a.png", "b.png"))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTesseractEngine_Recognize(t *testing.T) {
	orig := runTesseract
	defer func() { runTesseract = orig }()

	var gotArgs []string
	runTesseract = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("  Hello World \n"), nil
	}

	engine := NewTesseractEngine("eng")
	text, err := engine.Recognize(context.Background(), "frame.png")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
	assert.Equal(t, []string{"tesseract", "frame.png", "stdout", "-l", "eng"}, gotArgs)
}

func TestTesseractEngine_DefaultLanguage(t *testing.T) {
	engine := NewTesseractEngine("")
	assert.Equal(t, "eng", engine.language)
}

func TestTesseractEngine_Failure(t *testing.T) {
	orig := runTesseract
	defer func() { runTesseract = orig }()
	runTesseract = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	engine := NewTesseractEngine("eng")
	_, err := engine.Recognize(context.Background(), "frame.png")
	assert.Error(t, err)
}
