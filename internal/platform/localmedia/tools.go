package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/meetingscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// Tools wraps the ffmpeg/ffprobe binaries.
//
// REQUIRED BINARIES in the runtime image:
// - ffprobe for duration metadata
// - ffmpeg for recognition transcoding
type Tools interface {
	AssertReady(ctx context.Context) error

	// ProbeDuration reads the container duration in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)
	// ConvertForRecognition writes a 16 kHz mono FLAC copy of in to out.
	ConvertForRecognition(ctx context.Context, inputPath, outPath string) (string, error)

	// WorkDir creates a scoped directory under the work root. cleanup removes it.
	WorkDir(ctx context.Context, prefix string) (dir string, cleanup func(), err error)
}

const (
	RecognitionSampleRateHz = 16000
	RecognitionChannels     = 1
)

type tools struct {
	log *logger.Logger

	ffmpegPath  string
	ffprobePath string

	workRoot string

	probeTimeout   time.Duration
	convertTimeout time.Duration
}

func New(log *logger.Logger) Tools {
	root := strings.TrimSpace(os.Getenv("MEDIA_WORK_ROOT"))
	if root == "" {
		root = filepath.Join(os.TempDir(), "meetingscribe-media")
	}
	return &tools{
		log:            log.With("service", "MediaTools"),
		ffmpegPath:     "ffmpeg",
		ffprobePath:    "ffprobe",
		workRoot:       root,
		probeTimeout:   30 * time.Second,
		convertTimeout: 5 * time.Minute,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ffmpegPath, m.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return fmt.Errorf("create workRoot: %w", err)
	}
	return nil
}

func (m *tools) WorkDir(ctx context.Context, prefix string) (string, func(), error) {
	if err := os.MkdirAll(m.workRoot, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir workRoot: %w", err)
	}
	dir, err := os.MkdirTemp(m.workRoot, prefix+"-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("mkdir temp: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (m *tools) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	if path == "" {
		return 0, fmt.Errorf("path required")
	}
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseDuration(string(out))
}

func (m *tools) ConvertForRecognition(ctx context.Context, inputPath, outPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if inputPath == "" || outPath == "" {
		return "", fmt.Errorf("inputPath and outPath required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir out dir: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, m.convertTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", strconv.Itoa(RecognitionChannels),
		"-ar", strconv.Itoa(RecognitionSampleRateHz),
		"-f", "flac",
		outPath,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg convert failed: %w; out=%s", err, tail(string(out), 2000))
	}
	if st, err := os.Stat(outPath); err != nil || st.Size() == 0 {
		return "", fmt.Errorf("ffmpeg produced no output at %s", outPath)
	}
	return outPath, nil
}

// parseDuration accepts ffprobe's bare-number output. "N/A" and non-positive values are errors.
func parseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, fmt.Errorf("duration unavailable")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", d)
	}
	return d, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
