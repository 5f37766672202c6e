package repository

import (
	"context"
	"errors"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned by GetByID for unknown ids.
var ErrNotFound = errors.New("request not found")

// RequestRepository defines the interface for request history data access
type RequestRepository interface {
	// Create creates a new request record
	Create(ctx context.Context, req *model.Request) error

	// UpdateResult updates the outcome (transcript, confidence, status, etc.)
	UpdateResult(ctx context.Context, req *model.Request) error

	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error)

	// List retrieves requests newest first, optionally filtered by kind
	List(ctx context.Context, kind string, limit, offset int) ([]model.Request, error)
}
