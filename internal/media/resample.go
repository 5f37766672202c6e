package media

import (
	"bytes"
	"context"
	"strconv"
)

// Resample converts wavPath to headerless mono s16le PCM at rate and
// returns the raw bytes.
func (r *runner) Resample(ctx context.Context, wavPath string, rate int) ([]byte, error) {
	var out bytes.Buffer
	err := Run(ctx, r.opts.ToolTimeout, "sox", r.opts.SoxBin, resampleArgs(wavPath, rate), &out)
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func resampleArgs(wavPath string, rate int) []string {
	return []string{
		wavPath,
		"--type", "raw",
		"--bits", "16",
		"--channels", "1",
		"--rate", strconv.Itoa(rate),
		"--encoding", "signed-integer",
		"--endian", "little",
		"--compression", "0.0",
		"--no-dither",
		"-",
	}
}
