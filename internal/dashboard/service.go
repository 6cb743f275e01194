package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/voyageos/voyageos/internal/platform/cache"
)

// Service serves dashboard aggregates from a versioned Redis cache. Concurrent
// misses for the same key share one database build.
type Service struct {
	repo   Repository
	cache  *cache.Versioned
	group  singleflight.Group
	logger *slog.Logger
}

// NewService wires a Repository with the cache. A nil cache always reads through.
func NewService(repo Repository, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger}
}

// Summary returns quotation and invoice metrics.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return fetch[Summary](ctx, s, "summary", func(ctx context.Context) (any, error) {
		q, err := s.repo.QuotationMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("quotation metrics: %w", err)
		}
		inv, err := s.repo.InvoiceMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("invoice metrics: %w", err)
		}
		return Summary{Quotations: q, Invoices: inv}, nil
	})
}

// Accounts returns billing totals with cash collected per month.
func (s *Service) Accounts(ctx context.Context) (AccountsSummary, error) {
	return fetch[AccountsSummary](ctx, s, "accounts", func(ctx context.Context) (any, error) {
		inv, err := s.repo.InvoiceMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("invoice metrics: %w", err)
		}
		monthly, err := s.repo.MonthlyCashflow(ctx)
		if err != nil {
			return nil, fmt.Errorf("monthly cashflow: %w", err)
		}
		return AccountsSummary{
			TotalRevenue:     inv.TotalRevenue,
			TotalPaid:        inv.TotalPaid,
			TotalOutstanding: inv.TotalOutstanding,
			TotalInvoices:    inv.TotalInvoices,
			MonthlyCashflow:  monthly,
		}, nil
	})
}

// Invalidate bumps the cache version so the next read rebuilds every view.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
	}
}

func fetch[T any](ctx context.Context, s *Service, name string, loader func(context.Context) (any, error)) (T, error) {
	var zero T
	key, err := s.cache.BuildKey(ctx, name)
	if err != nil {
		return zero, fmt.Errorf("dashboard cache key: %w", err)
	}
	ch := s.group.DoChan(key, func() (any, error) {
		var out T
		if err := s.cache.FetchJSON(ctx, key, &out, loader); err != nil {
			return nil, err
		}
		return out, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
