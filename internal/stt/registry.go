package stt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modelFileName = "model.tflite"

// ErrModelMissing is returned when a language directory has no model file.
var ErrModelMissing = errors.New("model file missing")

// Registry lists STT languages from the models directory. Every call reads
// the filesystem, so languages can be added or removed at runtime.
type Registry struct {
	dir string
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

func (r *Registry) Dir() string { return r.dir }

// Languages returns the sorted names of the subdirectories of the models
// directory. A missing directory yields no languages.
func (r *Registry) Languages() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// Has reports whether lang is one of Languages. Names that could escape the
// models directory are never supported.
func (r *Registry) Has(lang string) bool {
	if lang == "" || lang == "." || lang == ".." || strings.ContainsAny(lang, `/\`) {
		return false
	}
	fi, err := os.Stat(filepath.Join(r.dir, lang))
	return err == nil && fi.IsDir()
}

// ModelFiles locates the model and optional scorer for lang.
type ModelFiles struct {
	Model  string
	Scorer string
}

// ModelFiles returns models/<lang>/model.tflite and the first *.scorer in
// lexical order, if any.
func (r *Registry) ModelFiles(lang string) (ModelFiles, error) {
	if !r.Has(lang) {
		return ModelFiles{}, fmt.Errorf("language %q not installed", lang)
	}
	langDir := filepath.Join(r.dir, lang)
	model := filepath.Join(langDir, modelFileName)
	if _, err := os.Stat(model); err != nil {
		return ModelFiles{}, fmt.Errorf("%w: %s", ErrModelMissing, model)
	}

	scorers, err := filepath.Glob(filepath.Join(langDir, "*.scorer"))
	if err != nil {
		return ModelFiles{}, err
	}
	sort.Strings(scorers)
	files := ModelFiles{Model: model}
	if len(scorers) > 0 {
		files.Scorer = scorers[0]
	}
	return files, nil
}
