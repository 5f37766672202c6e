package media

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Probe returns the container duration of path in seconds.
func (r *runner) Probe(ctx context.Context, path string) (float64, error) {
	var out bytes.Buffer
	err := Run(ctx, r.opts.ToolTimeout, "ffprobe", r.opts.FFprobeBin, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}, &out)
	if err != nil {
		return 0, err
	}
	return ParseDuration(out.String())
}

// ParseDuration parses the single value ffprobe prints for format=duration.
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("no duration reported")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %v", d)
	}
	return d, nil
}
