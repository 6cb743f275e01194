package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer runs statements on a pool or transaction.
type Execer interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
}

// ClaimIdempotencyKey records key for scope inside the caller's transaction.
// A second claim of the same key returns ErrIdempotencyConflict; if the
// surrounding transaction rolls back the key is released with it.
func ClaimIdempotencyKey(ctx context.Context, conn Execer, scope, key string) error {
	if key == "" {
		return nil
	}
	if scope == "" {
		return errors.New("idempotency scope required")
	}
	_, err := conn.Exec(ctx, `INSERT INTO idempotency_keys (key, scope, created_at) VALUES ($1, $2, NOW())`, key, scope)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// IdempotencyJanitor prunes processed keys.
type IdempotencyJanitor struct {
	pool *pgxpool.Pool
}

// NewIdempotencyJanitor constructs the janitor.
func NewIdempotencyJanitor(pool *pgxpool.Pool) *IdempotencyJanitor {
	return &IdempotencyJanitor{pool: pool}
}

// Cleanup removes entries older than retention and reports how many went.
func (j *IdempotencyJanitor) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if j == nil || j.pool == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	tag, err := j.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
