package media

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Download fetches rawURL into outPath, failing on HTTP errors and on bodies
// larger than maxBytes.
func (r *runner) Download(ctx context.Context, rawURL, outPath string, maxBytes int64) error {
	if err := checkRemoteURL(rawURL); err != nil {
		return err
	}
	args := []string{"--fail", "--silent", "--show-error", "--location"}
	if maxBytes > 0 {
		args = append(args, "--max-filesize", strconv.FormatInt(maxBytes, 10))
	}
	args = append(args, "--output", outPath, "--", rawURL)

	r.log.Info("downloading audio", "url", rawURL)
	return Run(ctx, r.opts.DownloadTimeout, "curl", r.opts.CurlBin, args, nil)
}

func checkRemoteURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host")
	}
	return nil
}
