// Package redis provides a Redis-backed job store for deployments that
// already run Redis and do not want a local database file.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"jobrelay/internal/codec"
	"jobrelay/internal/domain"
)

const keyPrefix = "jobrelay:job:"

// maxUpdateRetries bounds optimistic-lock retries when concurrent
// callers race on the same job id.
const maxUpdateRetries = 5

// Store implements domain.JobStore on Redis, one JSON value per job id.
type Store struct {
	rdb     redis.UniversalClient
	encoder codec.Encoder
}

// New creates a new Redis job store.
func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb, encoder: &codec.JSONEncoder{}}
}

func key(id string) string { return keyPrefix + id }

// Create persists a new job record with queued status and zero attempts.
func (s *Store) Create(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	job.Status = domain.StatusQueued
	job.Attempts = 0
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Payload == nil {
		job.Payload = json.RawMessage("{}")
	}

	raw, err := s.encoder.Encode(job)
	if err != nil {
		return err
	}

	ok, err := s.rdb.SetNX(ctx, key(job.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDuplicateJob
	}
	return nil
}

// Get retrieves a job by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Job, error) {
	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var job domain.Job
	if err := s.encoder.Decode(raw, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// List scans all job keys and returns jobs with the given status,
// up to limit. An empty status matches all jobs.
func (s *Store) List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var job domain.Job
		if err := s.encoder.Decode(raw, &job); err != nil {
			return nil, err
		}
		if status != "" && job.Status != status {
			continue
		}
		jobs = append(jobs, job)
		if len(jobs) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Update applies a partial update inside a WATCH transaction so that
// concurrent writers to the same id serialize on the key.
func (s *Store) Update(ctx context.Context, id string, upd domain.JobUpdate) (*domain.Job, error) {
	k := key(id)
	var updated *domain.Job

	apply := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrJobNotFound
		}
		if err != nil {
			return err
		}

		var job domain.Job
		if err := s.encoder.Decode(raw, &job); err != nil {
			return err
		}

		if upd.Status != nil {
			job.Status = *upd.Status
		}
		if upd.Attempts != nil {
			job.Attempts = *upd.Attempts
		}
		if upd.Result != nil {
			job.Result = upd.Result
		}
		if upd.Error != nil {
			job.Error = upd.Error
		} else if upd.ClearError {
			job.Error = nil
		}
		job.UpdatedAt = time.Now().UTC()

		next, err := s.encoder.Encode(&job)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, next, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &job
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, apply, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, redis.TxFailedErr
}
