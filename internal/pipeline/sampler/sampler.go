package sampler

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	domainerrors "screen2doc.backend/internal/domain/errors"
	"screen2doc.backend/pkg/logger"
)

// Frame is one still image emitted by the sampler, in stream order.
type Frame struct {
	Index       int
	Timestamp   time.Duration
	Path        string
	SceneChange bool
}

// candidateFPS is the rate ffmpeg dumps candidate stills at before selection.
const candidateFPS = 1

// maxCandidates bounds the candidate dump so a long recording cannot fill
// the working directory.
const maxCandidates = 120

// pixelDelta is the per-pixel grayscale difference above which a pixel
// counts as changed when comparing successive candidates.
const pixelDelta = 32

// Sampler extracts a bounded, ordered set of frames from a video file.
// Candidates are dumped with ffmpeg at a fixed rate, then selected
// adaptively: a candidate whose grayscale diff against the previously kept
// frame exceeds the scene threshold is emitted early, others fall back to
// fixed-interval emission.
type Sampler struct {
	ffmpegPath     string
	ffprobePath    string
	workDir        string
	maxFrames      int
	sceneThreshold float64
}

var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New creates a sampler writing candidate frames under workDir.
func New(workDir string, maxFrames int, sceneThreshold float64) *Sampler {
	return &Sampler{
		ffmpegPath:     "ffmpeg",
		ffprobePath:    "ffprobe",
		workDir:        workDir,
		maxFrames:      maxFrames,
		sceneThreshold: sceneThreshold,
	}
}

// Sample extracts frames from the video at videoPath. It fails with
// ErrInvalidVideo when the file cannot be probed or reports zero frames.
func (s *Sampler) Sample(ctx context.Context, videoPath string) ([]Frame, error) {
	totalFrames, err := s.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if totalFrames == 0 {
		return nil, fmt.Errorf("%w: video reports zero frames", domainerrors.ErrInvalidVideo)
	}

	dir := s.frameDir(videoPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	pattern := filepath.Join(dir, "cand_%04d.png")
	_, err = runCommand(ctx, s.ffmpegPath,
		"-v", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", candidateFPS),
		"-frames:v", strconv.Itoa(maxCandidates),
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: frame extraction failed: %v", domainerrors.ErrInvalidVideo, err)
	}

	paths, err := candidatePaths(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no frames could be extracted", domainerrors.ErrInvalidVideo)
	}

	candidates := make([]candidate, 0, len(paths))
	for i, p := range paths {
		img, err := loadGray(p)
		if err != nil {
			logger.Warn(ctx, "skipping unreadable candidate frame", zap.String("path", p), zap.Error(err))
			continue
		}
		candidates = append(candidates, candidate{
			path:      p,
			gray:      img,
			timestamp: time.Duration(i) * time.Second / candidateFPS,
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no frames could be decoded", domainerrors.ErrInvalidVideo)
	}

	frames := selectFrames(candidates, s.maxFrames, s.sceneThreshold)
	logger.Debug(ctx, "frames sampled",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(frames)),
	)
	return frames, nil
}

// Cleanup removes the working directory created for a video.
func (s *Sampler) Cleanup(videoPath string) error {
	return os.RemoveAll(s.frameDir(videoPath))
}

// WorkDir returns the root directory candidate frames are written under.
func (s *Sampler) WorkDir() string {
	return s.workDir
}

func (s *Sampler) frameDir(videoPath string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(s.workDir, base)
}

// probe returns the video stream's frame count, falling back to
// duration * fps when the container does not carry nb_frames.
func (s *Sampler) probe(ctx context.Context, videoPath string) (int, error) {
	out, err := runCommand(ctx, s.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_frames,duration,avg_frame_rate",
		"-of", "csv=p=0",
		videoPath,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot probe video: %v", domainerrors.ErrInvalidVideo, err)
	}
	return parseProbeOutput(string(out))
}

// parseProbeOutput parses "avg_frame_rate,duration,nb_frames" csv output.
func parseProbeOutput(out string) (int, error) {
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) < 3 {
		return 0, fmt.Errorf("%w: unexpected probe output %q", domainerrors.ErrInvalidVideo, out)
	}

	if n, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil {
		return n, nil
	}

	// nb_frames is "N/A" for many containers; derive from duration * fps.
	duration, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot determine frame count", domainerrors.ErrInvalidVideo)
	}
	fps := parseFrameRate(strings.TrimSpace(fields[0]))
	if fps <= 0 || duration <= 0 {
		return 0, fmt.Errorf("%w: cannot determine frame count", domainerrors.ErrInvalidVideo)
	}
	return int(duration * fps), nil
}

// parseFrameRate parses ffprobe's rational rate form, e.g. "30000/1001".
func parseFrameRate(raw string) float64 {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	fps, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return fps
}

func candidatePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "cand_") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func loadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

type candidate struct {
	path      string
	gray      *image.Gray
	timestamp time.Duration
}

// selectFrames walks candidates in order and emits at most maxFrames of
// them. A candidate whose diff against the last kept frame crosses the
// scene threshold is emitted with SceneChange set; otherwise candidates are
// kept at a fixed interval so quiet recordings still produce coverage.
func selectFrames(candidates []candidate, maxFrames int, threshold float64) []Frame {
	if maxFrames <= 0 {
		return nil
	}
	interval := len(candidates) / maxFrames
	if interval < 1 {
		interval = 1
	}

	var frames []Frame
	var lastKept *image.Gray
	for i, c := range candidates {
		if len(frames) >= maxFrames {
			break
		}
		sceneChange := lastKept != nil && diffFraction(lastKept, c.gray) > threshold
		if !sceneChange && lastKept != nil && i%interval != 0 {
			continue
		}
		frames = append(frames, Frame{
			Index:       len(frames),
			Timestamp:   c.timestamp,
			Path:        c.path,
			SceneChange: sceneChange,
		})
		lastKept = c.gray
	}
	return frames
}

// diffFraction returns the fraction of pixels whose grayscale value differs
// by more than pixelDelta between two equally sized frames. Mismatched
// dimensions count as a full change.
func diffFraction(a, b *image.Gray) float64 {
	if a.Bounds() != b.Bounds() {
		return 1
	}
	bounds := a.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	changed := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			da := int(a.GrayAt(x, y).Y)
			db := int(b.GrayAt(x, y).Y)
			if da-db > pixelDelta || db-da > pixelDelta {
				changed++
			}
		}
	}
	return float64(changed) / float64(total)
}
