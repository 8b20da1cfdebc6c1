// Package history records the outcome of every image analysis. The log is
// write-mostly: it is listed for operators and never consulted when a new
// image is analysed.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fridgechef/internal/pantry"
)

// Outcome classifies how an analysis ended.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeNoDetection     Outcome = "no_detection"
	OutcomeMalformed       Outcome = "malformed_response"
	OutcomeInvalidResponse Outcome = "invalid_response"
	OutcomeError           Outcome = "error"
)

// OutcomeOf maps a pipeline error to an Outcome. A nil error is OutcomeOK.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, pantry.ErrNoDetection):
		return OutcomeNoDetection
	case errors.Is(err, pantry.ErrMalformedResponse):
		return OutcomeMalformed
	case pantry.IsInputError(err):
		return OutcomeInvalidResponse
	}
	return OutcomeError
}

// Analysis is one audit record.
type Analysis struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	ImageHash      string         `json:"image_hash" db:"image_hash"`
	Provider       string         `json:"provider" db:"provider"`
	Outcome        Outcome        `json:"outcome" db:"outcome"`
	Ingredients    pq.StringArray `json:"ingredients" db:"ingredients"`
	ExpiringSoon   int            `json:"expiring_soon" db:"expiring_soon"`
	RawResponse    string         `json:"-" db:"raw_response"`
	ErrorMessage   string         `json:"error,omitempty" db:"error_message"`
	DurationMillis int64          `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// NewAnalysis starts a record for the image.
func NewAnalysis(imageData []byte, provider string) *Analysis {
	return &Analysis{
		ID:          uuid.New(),
		ImageHash:   ImageHash(imageData),
		Provider:    provider,
		Outcome:     OutcomeOK,
		Ingredients: pq.StringArray{},
		CreatedAt:   time.Now().UTC(),
	}
}

// Finish fills in the result of the analysis.
func (a *Analysis) Finish(ingredients []pantry.Ingredient, expiring int, raw string, err error, took time.Duration) {
	a.Outcome = OutcomeOf(err)
	a.RawResponse = raw
	a.ExpiringSoon = expiring
	a.DurationMillis = took.Milliseconds()
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	names := make(pq.StringArray, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	a.Ingredients = names
}

// ImageHash calculates the SHA256 hash of the image data.
func ImageHash(imageData []byte) string {
	hash := sha256.Sum256(imageData)
	return hex.EncodeToString(hash[:])
}

// Store defines the audit log operations.
type Store interface {
	SaveAnalysis(ctx context.Context, a *Analysis) error
	RecentAnalyses(ctx context.Context, limit int) ([]Analysis, error)
}

// MaxListLimit caps RecentAnalyses.
const MaxListLimit = 100

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id UUID PRIMARY KEY,
	image_hash TEXT NOT NULL,
	provider TEXT NOT NULL,
	outcome TEXT NOT NULL,
	ingredients TEXT[] NOT NULL DEFAULT '{}',
	expiring_soon INTEGER NOT NULL DEFAULT 0,
	raw_response TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC);
`

// NewPostgresStore connects and creates the analyses table if needed.
func NewPostgresStore(ctx context.Context, dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analyses table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveAnalysis inserts one record.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *Analysis) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO analyses (id, image_hash, provider, outcome, ingredients, expiring_soon, raw_response, error_message, duration_ms, created_at)
		VALUES (:id, :image_hash, :provider, :outcome, :ingredients, :expiring_soon, :raw_response, :error_message, :duration_ms, :created_at)`,
		a)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// RecentAnalyses returns the newest records first.
func (s *PostgresStore) RecentAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	out := []Analysis{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, image_hash, provider, outcome, ingredients, expiring_soon, raw_response, error_message, duration_ms, created_at
		FROM analyses ORDER BY created_at DESC LIMIT $1`,
		ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return out, nil
}

// ClampLimit bounds a requested page size to [1, MaxListLimit], defaulting to 20.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}
