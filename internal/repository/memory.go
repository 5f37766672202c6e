package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/google/uuid"
)

// DefaultMemoryRecords bounds the in-memory history when no cap is given.
const DefaultMemoryRecords = 1000

type memoryRepository struct {
	mu         sync.RWMutex
	maxRecords int
	requests   map[uuid.UUID]*model.Request
	order      []uuid.UUID
}

// NewMemoryRepository creates a process-local repository, used when no
// database is configured. It keeps at most maxRecords requests and evicts
// the oldest ones first; maxRecords <= 0 means DefaultMemoryRecords.
func NewMemoryRepository(maxRecords int) RequestRepository {
	if maxRecords <= 0 {
		maxRecords = DefaultMemoryRecords
	}
	return &memoryRepository{
		maxRecords: maxRecords,
		requests:   make(map[uuid.UUID]*model.Request),
	}
}

func (r *memoryRepository) Create(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.requests[req.ID]; !exists {
		r.order = append(r.order, req.ID)
	}
	r.requests[req.ID] = cloneRequest(req)
	for len(r.order) > r.maxRecords {
		delete(r.requests, r.order[0])
		r.order[0] = uuid.Nil
		r.order = r.order[1:]
	}
	return nil
}

func (r *memoryRepository) UpdateResult(ctx context.Context, req *model.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.requests[req.ID]
	if !ok {
		return ErrNotFound
	}
	if req.AudioFormat != nil {
		cur.AudioFormat = req.AudioFormat
	}
	if req.AudioDurationMs != nil {
		cur.AudioDurationMs = req.AudioDurationMs
	}
	if req.AudioSizeBytes != nil {
		cur.AudioSizeBytes = req.AudioSizeBytes
	}
	if req.Transcript != nil {
		cur.Transcript = req.Transcript
	}
	if req.Confidence != nil {
		cur.Confidence = req.Confidence
	}
	if req.ErrorMessage != nil {
		cur.ErrorMessage = req.ErrorMessage
	}
	if req.ProcessingTimeMs != nil {
		cur.ProcessingTimeMs = req.ProcessingTimeMs
	}
	cur.Status = req.Status
	for k, v := range req.Metadata {
		cur.Metadata[k] = v
	}
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *memoryRepository) List(ctx context.Context, kind string, limit, offset int) ([]model.Request, error) {
	r.mu.RLock()
	all := make([]model.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if kind == "" || req.Kind == kind {
			all = append(all, *cloneRequest(req))
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() > all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []model.Request{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func cloneRequest(req *model.Request) *model.Request {
	c := *req
	c.Metadata = make(map[string]interface{}, len(req.Metadata))
	for k, v := range req.Metadata {
		c.Metadata[k] = v
	}
	return &c
}
