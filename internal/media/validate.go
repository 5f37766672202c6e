package media

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	"wav":  {},
	"mp3":  {},
	"ogg":  {},
	"flac": {},
	"aiff": {},
	"wma":  {},
	"m4a":  {},
}

// ErrAudioTooLong is returned by CheckDuration for audio over the limit.
var ErrAudioTooLong = errors.New("audio too long")

// AllowedFile reports whether name carries an allowed audio extension. Only
// the suffix after the last dot counts, case-insensitively.
func AllowedFile(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

// Extension returns the lowercased suffix after the last dot, or "".
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// CheckDuration rejects audio strictly longer than maxSeconds.
func CheckDuration(seconds, maxSeconds float64) error {
	if seconds > maxSeconds {
		return fmt.Errorf("%w: %.3fs exceeds %.1fs", ErrAudioTooLong, seconds, maxSeconds)
	}
	return nil
}

// FilenameFromURL returns the last segment of the URL path, ignoring the
// query string and fragment.
func FilenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}
