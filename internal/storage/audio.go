package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"sync"
)

// Scope owns the temporary audio files of a single request. Every file it
// creates is removed by Cleanup, exactly once.
type Scope struct {
	dir string

	mu      sync.Mutex
	paths   []string
	cleaned bool
}

// NewScope returns a scope that creates files in dir (os.TempDir when empty).
func NewScope(dir string) *Scope {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Scope{dir: dir}
}

// Create makes a new empty file with an unpredictable name ending in suffix.
// The caller must close the returned file.
func (s *Scope) Create(suffix string) (*os.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return nil, errors.New("scope already cleaned up")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	f, err := os.CreateTemp(s.dir, "speech-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	s.paths = append(s.paths, f.Name())
	return f, nil
}

// Path reserves a new file path and closes the file so an external tool can
// write to it.
func (s *Scope) Path(suffix string) (string, error) {
	f, err := s.Create(suffix)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// SaveMultipart copies an uploaded file into the scope and returns its path
// and size in bytes.
func (s *Scope) SaveMultipart(file *multipart.FileHeader, suffix string) (string, int64, error) {
	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()
	return s.SaveReader(src, suffix)
}

// SaveReader copies r into a new scope file.
func (s *Scope) SaveReader(r io.Reader, suffix string) (string, int64, error) {
	out, err := s.Create(suffix)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to save file: %w", err)
	}
	return out.Name(), n, nil
}

// Paths returns the files created so far.
func (s *Scope) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Cleanup removes every file created by the scope. Calling it again is a
// no-op. Files already removed are ignored.
func (s *Scope) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return nil
	}
	s.cleaned = true

	var errs []error
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.paths = nil
	return errors.Join(errs...)
}
