package stt

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"golang.org/x/sync/singleflight"
)

// ModelProvider caches one loaded Model per language. A cached model is
// reloaded when its model file changes on disk, and recognitions on the
// same model instance run one at a time.
type ModelProvider struct {
	registry *Registry
	load     LoadFunc
	log      *logger.Logger

	loads  singleflight.Group
	mu     sync.Mutex
	models map[string]*cachedModel
}

type cachedModel struct {
	mu      sync.Mutex
	model   Model
	files   ModelFiles
	modTime time.Time
	size    int64
}

func NewModelProvider(registry *Registry, load LoadFunc, log *logger.Logger) *ModelProvider {
	return &ModelProvider{
		registry: registry,
		load:     load,
		log:      log,
		models:   make(map[string]*cachedModel),
	}
}

func (cm *cachedModel) current(files ModelFiles, fi os.FileInfo) bool {
	return cm.files == files && cm.modTime.Equal(fi.ModTime()) && cm.size == fi.Size()
}

func (p *ModelProvider) cached(lang string, files ModelFiles, fi os.FileInfo) *cachedModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cm, ok := p.models[lang]; ok && cm.current(files, fi) {
		return cm
	}
	return nil
}

// get returns the model for lang, loading it at most once at a time per
// language.
func (p *ModelProvider) get(ctx context.Context, lang string) (*cachedModel, error) {
	files, err := p.registry.ModelFiles(lang)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(files.Model)
	if err != nil {
		return nil, err
	}
	if cm := p.cached(lang, files, fi); cm != nil {
		return cm, nil
	}

	v, err, _ := p.loads.Do(lang, func() (interface{}, error) {
		if cm := p.cached(lang, files, fi); cm != nil {
			return cm, nil
		}
		if files.Scorer == "" {
			p.log.Warn("no scorer found, recognizing without language model", "lang", lang)
		}
		start := time.Now()
		m, err := p.load(ctx, lang, files)
		if err != nil {
			return nil, err
		}
		cm := &cachedModel{model: m, files: files, modTime: fi.ModTime(), size: fi.Size()}
		p.mu.Lock()
		p.models[lang] = cm
		p.mu.Unlock()
		p.log.Info("model loaded", "lang", lang, "model", files.Model, "scorer", files.Scorer, "took", time.Since(start))
		return cm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedModel), nil
}

// Recognize runs pcm through the model for lang.
func (p *ModelProvider) Recognize(ctx context.Context, lang string, pcm *media.PCM, candidates int) (*Metadata, error) {
	cm, err := p.get(ctx, lang)
	if err != nil {
		return nil, err
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.model.Recognize(ctx, pcm, candidates)
}

// Loaded returns the number of cached models.
func (p *ModelProvider) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.models)
}
