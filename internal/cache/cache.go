package cache

import (
	"context"
	"time"

	"billbook/backend/internal/domain"
)

type ReportCache interface {
	Get(ctx context.Context, key string) (*domain.SalesReport, bool, error)
	Set(ctx context.Context, key string, value *domain.SalesReport, ttl time.Duration) error
	// Invalidate drops every cached report for the tenant. Called after any
	// bill write so cached aggregates never outlive the ledger state by more
	// than the call itself.
	Invalidate(ctx context.Context, tenantID string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*domain.SalesReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *domain.SalesReport, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

// Key builds the cache key for one tenant's report window.
func Key(tenantID string, window string) string {
	return "report:" + tenantID + ":" + window
}
