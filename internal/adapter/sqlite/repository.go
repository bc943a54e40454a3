package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"jobrelay/internal/codec"
	"jobrelay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    payload    TEXT NOT NULL DEFAULT '{}',
    status     TEXT NOT NULL DEFAULT 'queued',
    attempts   INTEGER NOT NULL DEFAULT 0,
    result     TEXT,
    error      TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Repository implements domain.JobStore using SQLite.
type Repository struct {
	db  *sql.DB
	enc codec.Encoder
}

// New creates a new SQLite repository, initializing the schema if needed.
func New(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db, enc: &codec.JSONEncoder{}}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create inserts a new job record with queued status and zero attempts.
func (r *Repository) Create(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	job.Status = domain.StatusQueued
	job.Attempts = 0
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Payload == nil {
		job.Payload = json.RawMessage("{}")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, payload, status, attempts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Kind, string(job.Payload), job.Status, job.Attempts, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domain.ErrDuplicateJob
		}
		return err
	}
	return nil
}

// Get retrieves a job by ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, payload, status, attempts, result, error, created_at, updated_at
		 FROM jobs WHERE id = ?`, id,
	)
	return r.scanJob(row)
}

// Update applies a partial update by id and returns the updated record.
// A single UPDATE statement keeps concurrent callers serialized at the
// storage layer.
func (r *Repository) Update(ctx context.Context, id string, upd domain.JobUpdate) (*domain.Job, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Attempts != nil {
		sets = append(sets, "attempts = ?")
		args = append(args, *upd.Attempts)
	}
	if upd.Result != nil {
		sets = append(sets, "result = ?")
		args = append(args, string(upd.Result))
	}
	if upd.Error != nil {
		raw, err := r.enc.Encode(upd.Error)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "error = ?")
		args = append(args, string(raw))
	} else if upd.ClearError {
		sets = append(sets, "error = NULL")
	}
	args = append(args, id)

	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrJobNotFound
	}

	return r.Get(ctx, id)
}

// List returns jobs with the given status, newest first. An empty
// status matches all jobs.
func (r *Repository) List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	query := `SELECT id, kind, payload, status, attempts, result, error, created_at, updated_at
	          FROM jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanJob(row scanner) (*domain.Job, error) {
	var job domain.Job
	var status, payload string
	var result, errJSON sql.NullString
	err := row.Scan(&job.ID, &job.Kind, &payload, &status, &job.Attempts, &result, &errJSON, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	job.Payload = json.RawMessage(payload)
	if result.Valid {
		job.Result = json.RawMessage(result.String)
	}
	if errJSON.Valid {
		var execErr domain.ExecError
		if err := r.enc.Decode([]byte(errJSON.String), &execErr); err != nil {
			return nil, err
		}
		job.Error = &execErr
	}
	return &job, nil
}
