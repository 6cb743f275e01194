package shared

import "context"

// Invalidator drops cached read models after a write commits.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// NopInvalidator ignores invalidations.
type NopInvalidator struct{}

// Invalidate implements Invalidator.
func (NopInvalidator) Invalidate(context.Context) {}
