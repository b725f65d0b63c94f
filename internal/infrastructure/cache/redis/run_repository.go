package redis

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/multidom/domainsync/internal/domain/run"
	apperrors "github.com/multidom/domainsync/pkg/errors"
)

const runPrefix = "ms_run:"

// idSafe restricts run ids to a safe identifier subset before they are
// used as storage keys.
var idSafe = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// RunRepository stores run plans in Redis with TTL-based expiry.
type RunRepository struct {
	client *Client
}

func NewRunRepository(client *Client) *RunRepository {
	return &RunRepository{client: client}
}

type runRecord struct {
	ExpiresAt time.Time `json:"expires_at"`
	Data      *run.Plan `json:"data"`
}

func sanitizeID(id string) string {
	return idSafe.ReplaceAllString(id, "")
}

// Put persists the plan with TTL, overwriting any existing entry.
func (r *RunRepository) Put(ctx context.Context, id string, plan *run.Plan, ttl time.Duration) error {
	id = sanitizeID(id)
	if id == "" {
		return apperrors.ErrEmptyRunID
	}

	record := runRecord{
		ExpiresAt: time.Now().UTC().Add(ttl),
		Data:      plan,
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal run plan")
	}

	if err := r.client.Set(ctx, runPrefix+id, jsonData, ttl); err != nil {
		return apperrors.Wrap(err, "failed to store run plan")
	}

	return nil
}

// Get retrieves a plan. Returns ErrRunNotFound if absent or expired; an
// expired record is deleted as a side effect.
func (r *RunRepository) Get(ctx context.Context, id string) (*run.Plan, error) {
	id = sanitizeID(id)
	if id == "" {
		return nil, apperrors.ErrRunNotFound
	}

	jsonData, err := r.client.Get(ctx, runPrefix+id)
	if err != nil {
		if err == goredis.Nil {
			return nil, apperrors.ErrRunNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get run plan")
	}

	var record runRecord
	if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal run plan")
	}

	// Double-check expiry in case Redis TTL drifted
	if time.Now().UTC().After(record.ExpiresAt) {
		_ = r.Delete(ctx, id)
		return nil, apperrors.ErrRunNotFound
	}

	return record.Data, nil
}

// Touch resets the expiry without altering the plan. No-op if absent.
func (r *RunRepository) Touch(ctx context.Context, id string, ttl time.Duration) error {
	id = sanitizeID(id)
	if id == "" {
		return nil
	}

	jsonData, err := r.client.Get(ctx, runPrefix+id)
	if err != nil {
		if err == goredis.Nil {
			return nil
		}
		return apperrors.Wrap(err, "failed to get run plan")
	}

	var record runRecord
	if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal run plan")
	}

	record.ExpiresAt = time.Now().UTC().Add(ttl)

	updated, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal run plan")
	}

	if err := r.client.Set(ctx, runPrefix+id, updated, ttl); err != nil {
		return apperrors.Wrap(err, "failed to touch run plan")
	}

	return nil
}

// Delete removes the plan. Idempotent.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	id = sanitizeID(id)
	if id == "" {
		return nil
	}

	if err := r.client.Delete(ctx, runPrefix+id); err != nil {
		return apperrors.Wrap(err, "failed to delete run plan")
	}

	return nil
}
