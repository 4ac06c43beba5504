// Package postgres persists analysis envelopes. Payloads are stored as JSONB
// keyed by the envelope ID and kind; the schema never mirrors the per-analysis
// value shapes.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gridstat/domain/core"
	"gridstat/domain/stats"
	"gridstat/internal"
	"gridstat/internal/errors"
	"gridstat/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_results (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// ResultRepository implements ports.ResultRepository on PostgreSQL
type ResultRepository struct {
	db     *sqlx.DB
	logger *internal.Logger
}

var _ ports.ResultRepository = (*ResultRepository)(nil)

// Connect opens the database and ensures the schema exists
func Connect(ctx context.Context, url string) (*ResultRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	repo := &ResultRepository{db: db, logger: internal.NewDefaultLogger("postgres")}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring schema")
	}
	return repo, nil
}

// NewResultRepository wraps an existing connection, schema assumed in place
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db, logger: internal.NewDefaultLogger("postgres")}
}

// Close releases the underlying connection pool
func (r *ResultRepository) Close() error {
	return r.db.Close()
}

type resultRow struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Save stores one analysis envelope
func (r *ResultRepository) Save(ctx context.Context, result *stats.AnalysisResult) error {
	if err := result.Validate(); err != nil {
		return errors.InvalidInput("refusing to store malformed result: " + err.Error())
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encoding result payload")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_results (id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET kind = $2, payload = $3`,
		result.ID.String(), string(result.Kind), payload, result.CreatedAt.Time())
	if err != nil {
		return errors.DatabaseError("saving result " + result.ID.String() + ": " + err.Error())
	}
	r.logger.Debug("saved %s result %s", result.Kind, result.ID)
	return nil
}

// GetByID loads one analysis envelope
func (r *ResultRepository) GetByID(ctx context.Context, id core.AnalysisID) (*stats.AnalysisResult, error) {
	var row resultRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, kind, payload, created_at FROM analysis_results WHERE id = $1`,
		id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("analysis " + id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("loading result " + id.String() + ": " + err.Error())
	}
	return decodeRow(&row)
}

// List returns the most recent envelopes, newest first
func (r *ResultRepository) List(ctx context.Context, limit int) ([]*stats.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, kind, payload, created_at FROM analysis_results
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.DatabaseError("listing results: " + err.Error())
	}

	results := make([]*stats.AnalysisResult, 0, len(rows))
	for i := range rows {
		result, err := decodeRow(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Delete removes one envelope; deleting an unknown ID is an error
func (r *ResultRepository) Delete(ctx context.Context, id core.AnalysisID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE id = $1`, id.String())
	if err != nil {
		return errors.DatabaseError("deleting result " + id.String() + ": " + err.Error())
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.DatabaseError("deleting result " + id.String() + ": " + err.Error())
	}
	if affected == 0 {
		return errors.NotFound("analysis " + id.String())
	}
	return nil
}

func decodeRow(row *resultRow) (*stats.AnalysisResult, error) {
	var result stats.AnalysisResult
	if err := json.Unmarshal(row.Payload, &result); err != nil {
		return nil, errors.Wrap(err, "decoding result "+row.ID)
	}
	return &result, nil
}
