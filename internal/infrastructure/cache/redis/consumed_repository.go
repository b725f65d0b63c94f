package redis

import (
	"context"
	"time"

	apperrors "github.com/multidom/domainsync/pkg/errors"
)

const consumedPrefix = "ms_spent:"

// ConsumedTokenRepository records spent token signatures so a captured
// token cannot be replayed inside its validity window. Entries expire with
// the token they mark.
type ConsumedTokenRepository struct {
	client *Client
}

func NewConsumedTokenRepository(client *Client) *ConsumedTokenRepository {
	return &ConsumedTokenRepository{client: client}
}

// MarkConsumed records the signature. Returns false if it was already
// recorded, meaning the token is being replayed.
func (r *ConsumedTokenRepository) MarkConsumed(ctx context.Context, signature string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}

	first, err := r.client.SetNX(ctx, consumedPrefix+sanitizeID(signature), "1", ttl)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark token consumed")
	}

	return first, nil
}
