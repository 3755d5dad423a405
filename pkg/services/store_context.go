package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storelens/storelens-engine/pkg/models"
)

// StoreContextProvider supplies the aggregate store statistics used to
// ground the prompt.
type StoreContextProvider interface {
	GetStoreContext(ctx context.Context, storeID string) (models.StoreContext, error)
}

// RowQuerier is the subset of pgxpool.Pool the provider needs.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// storeContextProvider reads store statistics from the analytics database.
type storeContextProvider struct {
	db     RowQuerier
	logger *zap.Logger
}

// NewStoreContextProvider creates a provider backed by the analytics pool.
func NewStoreContextProvider(db RowQuerier, logger *zap.Logger) StoreContextProvider {
	return &storeContextProvider{db: db, logger: logger.Named("store_context")}
}

// GetStoreContext performs one logical read of the store's aggregates.
// The sub-queries run in parallel; any failure fails the read, since a
// partial context would ground the prompt on wrong numbers.
func (p *storeContextProvider) GetStoreContext(ctx context.Context, storeID string) (models.StoreContext, error) {
	storeCtx := models.StoreContext{StoreID: storeID, Currency: "USD"}

	g, gctx := errgroup.WithContext(ctx)

	countQueries := []struct {
		sql  string
		dest *int64
	}{
		{"SELECT COUNT(*) FROM orders WHERE store_id = $1", &storeCtx.OrderCount},
		{"SELECT COUNT(*) FROM products WHERE store_id = $1", &storeCtx.ProductCount},
		{"SELECT COUNT(*) FROM customers WHERE store_id = $1", &storeCtx.CustomerCount},
		{"SELECT COUNT(*) FROM categories WHERE store_id = $1", &storeCtx.CategoryCount},
	}
	for _, q := range countQueries {
		g.Go(func() error {
			return p.db.QueryRow(gctx, q.sql, storeID).Scan(q.dest)
		})
	}

	g.Go(func() error {
		return p.db.QueryRow(gctx,
			"SELECT MIN(created_at), MAX(created_at) FROM orders WHERE store_id = $1",
			storeID).Scan(&storeCtx.FirstOrderAt, &storeCtx.LastOrderAt)
	})

	g.Go(func() error {
		var currency *string
		err := p.db.QueryRow(gctx,
			"SELECT currency FROM orders WHERE store_id = $1 ORDER BY created_at DESC LIMIT 1",
			storeID).Scan(&currency)
		if err == pgx.ErrNoRows {
			// A store with no orders yet keeps the default currency.
			return nil
		}
		if err != nil {
			return err
		}
		if currency != nil && *currency != "" {
			storeCtx.Currency = *currency
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.StoreContext{}, fmt.Errorf("read store context: %w", err)
	}

	p.logger.Debug("store context loaded",
		zap.String("store_id", storeID),
		zap.Int64("orders", storeCtx.OrderCount),
		zap.Int64("products", storeCtx.ProductCount))

	return storeCtx, nil
}
