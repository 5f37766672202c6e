package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
)

// Tools wraps the external binaries used by the audio pipeline.
//
// REQUIRED BINARIES (unless the matching step is never reached):
// - ffprobe for duration probing
// - ffmpeg for transcoding to mono s16le WAV
// - sox for resampling to the recognizer rate
// - curl for fetching remote audio
type Tools interface {
	Probe(ctx context.Context, path string) (float64, error)
	Transcode(ctx context.Context, inPath, outPath string) error
	Resample(ctx context.Context, wavPath string, rate int) ([]byte, error)
	Download(ctx context.Context, rawURL, outPath string, maxBytes int64) error
}

// ToolError describes a failed external process. NotFound is set when the
// binary could not be started at all.
type ToolError struct {
	Tool     string
	NotFound bool
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s not found: %v", e.Tool, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v; stderr=%s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// IsToolNotFound reports whether err is a ToolError for a missing binary.
func IsToolNotFound(err error) (string, bool) {
	var te *ToolError
	if errors.As(err, &te) && te.NotFound {
		return te.Tool, true
	}
	return "", false
}

// Options configures a Runner. Empty binary names fall back to the tool name
// resolved through PATH.
type Options struct {
	FFmpegBin  string
	FFprobeBin string
	SoxBin     string
	CurlBin    string

	ToolTimeout     time.Duration
	DownloadTimeout time.Duration
}

type runner struct {
	log  *logger.Logger
	opts Options
}

func NewRunner(log *logger.Logger, opts Options) Tools {
	if opts.FFmpegBin == "" {
		opts.FFmpegBin = "ffmpeg"
	}
	if opts.FFprobeBin == "" {
		opts.FFprobeBin = "ffprobe"
	}
	if opts.SoxBin == "" {
		opts.SoxBin = "sox"
	}
	if opts.CurlBin == "" {
		opts.CurlBin = "curl"
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = 2 * time.Minute
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 2 * time.Minute
	}
	return &runner{log: log.With("service", "MediaTools"), opts: opts}
}

// Run executes bin with args under timeout, in its own process group.
// Stdout goes to stdout when non-nil and is otherwise discarded.
func Run(ctx context.Context, timeout time.Duration, tool, bin string, args []string, stdout io.Writer) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	setProcessGroup(cmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if stdout != nil {
		cmd.Stdout = stdout
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return &ToolError{Tool: tool, NotFound: true, Err: err}
		}
		return &ToolError{Tool: tool, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return &ToolError{Tool: tool, Stderr: snippet(stderr.String()), Err: err}
	}
	return nil
}

const maxStderr = 512

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		return s[:maxStderr] + "..."
	}
	return s
}
