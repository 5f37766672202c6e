package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chat-apropo/speech-api/internal/model"
	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) RequestRepository {
	return &postgresRepository{db: db}
}

const requestColumns = `
	id, kind, language, engine, source, audio_format, audio_duration_ms,
	audio_size_bytes, transcript, confidence, status, error_message,
	processing_time_ms, metadata, created_at`

// Create creates a new request record
func (r *postgresRepository) Create(ctx context.Context, req *model.Request) error {
	query := `
		INSERT INTO speech_requests (` + requestColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	// Convert metadata to JSONB
	metadataJSON, err := json.Marshal(req.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		req.ID,
		req.Kind,
		req.Language,
		req.Engine,
		req.Source,
		req.AudioFormat,
		req.AudioDurationMs,
		req.AudioSizeBytes,
		req.Transcript,
		req.Confidence,
		req.Status,
		req.ErrorMessage,
		req.ProcessingTimeMs,
		string(metadataJSON),
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// UpdateResult updates the outcome of a request. Nil fields keep their
// stored value; metadata keys are merged into the stored object.
func (r *postgresRepository) UpdateResult(ctx context.Context, req *model.Request) error {
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		UPDATE speech_requests
		SET
			audio_format = COALESCE($1, audio_format),
			audio_duration_ms = COALESCE($2, audio_duration_ms),
			audio_size_bytes = COALESCE($3, audio_size_bytes),
			transcript = COALESCE($4, transcript),
			confidence = COALESCE($5, confidence),
			status = $6,
			error_message = COALESCE($7, error_message),
			processing_time_ms = COALESCE($8, processing_time_ms),
			metadata = COALESCE(metadata, '{}'::jsonb) || $9::jsonb
		WHERE id = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		req.AudioFormat,
		req.AudioDurationMs,
		req.AudioSizeBytes,
		req.Transcript,
		req.Confidence,
		req.Status,
		req.ErrorMessage,
		req.ProcessingTimeMs,
		string(metadataJSON),
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*model.Request, error) {
	var req model.Request
	var metadataJSON []byte
	err := row.Scan(
		&req.ID,
		&req.Kind,
		&req.Language,
		&req.Engine,
		&req.Source,
		&req.AudioFormat,
		&req.AudioDurationMs,
		&req.AudioSizeBytes,
		&req.Transcript,
		&req.Confidence,
		&req.Status,
		&req.ErrorMessage,
		&req.ProcessingTimeMs,
		&metadataJSON,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse metadata JSON
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &req.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if req.Metadata == nil {
		req.Metadata = make(map[string]interface{})
	}
	return &req, nil
}

// GetByID retrieves a request by ID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM speech_requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// List retrieves requests newest first with pagination
func (r *postgresRepository) List(ctx context.Context, kind string, limit, offset int) ([]model.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM speech_requests
		WHERE ($1::text = '' OR kind = $1::text)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]model.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return requests, nil
}
