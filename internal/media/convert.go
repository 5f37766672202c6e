package media

import "context"

// Transcode converts any input ffmpeg understands into mono signed 16-bit
// little-endian WAV at the source sample rate.
func (r *runner) Transcode(ctx context.Context, inPath, outPath string) error {
	r.log.Debug("transcoding", "in", inPath, "out", outPath)
	// ffmpeg -y -i input -ac 1 -c:a pcm_s16le -f wav output
	return Run(ctx, r.opts.ToolTimeout, "ffmpeg", r.opts.FFmpegBin, []string{
		"-y", "-i", inPath,
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	}, nil)
}
