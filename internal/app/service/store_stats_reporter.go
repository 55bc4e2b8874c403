package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sifan077/Rinku/internal/app/repository"
	promMetrics "github.com/sifan077/Rinku/internal/infra/prometheus"
	"go.uber.org/zap"
)

const defaultStatsInterval = 30 * time.Second

// StoreStatsReporter periodically samples the bookmark count and the
// Postgres pool into Prometheus gauges.
type StoreStatsReporter struct {
	logger   *zap.Logger
	repo     repository.BookmarkRepository
	pool     *pgxpool.Pool
	interval time.Duration
	stopChan chan struct{}
}

// NewStoreStatsReporter creates a reporter. pool may be nil.
func NewStoreStatsReporter(logger *zap.Logger, repo repository.BookmarkRepository, pool *pgxpool.Pool) *StoreStatsReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreStatsReporter{
		logger:   logger,
		repo:     repo,
		pool:     pool,
		interval: defaultStatsInterval,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic sampling.
func (r *StoreStatsReporter) Start() {
	go r.run()
}

// Stop stops the periodic sampling.
func (r *StoreStatsReporter) Stop() {
	close(r.stopChan)
}

func (r *StoreStatsReporter) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Sample(context.Background())
	for {
		select {
		case <-ticker.C:
			r.Sample(context.Background())
		case <-r.stopChan:
			r.logger.Info("store stats reporter stopped")
			return
		}
	}
}

// Sample records one reading of the store gauges.
func (r *StoreStatsReporter) Sample(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	count, err := r.repo.Count(ctx)
	if err != nil {
		r.logger.Warn("failed to count bookmarks", zap.Error(err))
	} else {
		promMetrics.BookmarkCount.Set(float64(count))
	}

	if r.pool == nil {
		return
	}
	stat := r.pool.Stat()
	promMetrics.PoolConnections.WithLabelValues("total").Set(float64(stat.TotalConns()))
	promMetrics.PoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	promMetrics.PoolConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
}
