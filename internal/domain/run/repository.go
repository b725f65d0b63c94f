package run

import (
	"context"
	"time"
)

// Repository handles run plan storage with TTL semantics.
type Repository interface {
	// Put persists the plan under id, overwriting any existing entry.
	Put(ctx context.Context, id string, plan *Plan, ttl time.Duration) error

	// Get returns the plan, or ErrRunNotFound if absent or expired.
	// An expired record is deleted as a side effect.
	Get(ctx context.Context, id string) (*Plan, error)

	// Touch resets the expiry without altering the plan. No-op if absent.
	Touch(ctx context.Context, id string, ttl time.Duration) error

	// Delete removes the plan. Idempotent.
	Delete(ctx context.Context, id string) error
}

// ConsumedLedger marks sync tokens as spent so a captured token cannot be
// replayed inside its validity window.
type ConsumedLedger interface {
	// MarkConsumed records the token signature with the given ttl.
	// Returns false if the signature was already recorded.
	MarkConsumed(ctx context.Context, signature string, ttl time.Duration) (bool, error)
}
