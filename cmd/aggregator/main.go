// Command aggregator rolls prediction_logs up into analytics_data, one row
// per UTC day, on a fixed interval.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phishing-detection-api/config"
	"phishing-detection-api/metrics"
	"phishing-detection-api/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_aggregator_cycles_total",
		Help: "Total number of aggregation cycles run.",
	})
	daysStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_aggregator_days_stored_total",
		Help: "Total number of daily rows upserted into analytics_data.",
	})
	cyclesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_aggregator_failures_total",
		Help: "Total number of failed queries or upserts.",
	})
	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phishguard_aggregator_cycle_duration_seconds",
		Help:    "Duration of a full aggregation cycle.",
		Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
)

// AggregateEvent is published on services.ChannelAggregates after a cycle.
type AggregateEvent struct {
	Days      []services.DailyStats `json:"days"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type store interface {
	Points(ctx context.Context, start, end time.Time) ([]services.LogPoint, error)
	UpsertDay(ctx context.Context, day time.Time, stats services.DailyStats) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type aggregator struct {
	store    store
	pub      publisher
	lookback int
	now      func() time.Time
}

func main() {
	if err := run(); err != nil {
		slog.Error("aggregator stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("db pool init: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	slog.Info("db connected")

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, aggregates will not be published", "error", err)
	}
	defer cache.Close()

	go func() {
		if err := metrics.Serve(ctx, cfg.Workers.MetricsAddr); err != nil {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	agg := &aggregator{
		store:    &pgStore{pool: pool},
		pub:      cache,
		lookback: cfg.Workers.AggregateLookback,
		now:      time.Now,
	}

	slog.Info("aggregator running", "interval", cfg.Workers.AggregateInterval, "lookback_days", agg.lookback)

	agg.runCycle(ctx)

	ticker := time.NewTicker(cfg.Workers.AggregateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			agg.runCycle(ctx)
		case <-ctx.Done():
			slog.Info("aggregator shutting down")
			return nil
		}
	}
}

// runCycle recomputes the lookback window and returns the days stored.
func (a *aggregator) runCycle(ctx context.Context) int {
	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
	}()
	cyclesRun.Inc()

	from := services.StartOfDay(a.now()).AddDate(0, 0, -(a.lookback - 1))
	to := from.AddDate(0, 0, a.lookback)

	points, err := a.store.Points(ctx, from, to)
	if err != nil {
		cyclesFailed.Inc()
		slog.Error("query prediction logs failed", "error", err)
		return 0
	}

	days := services.RollupDaily(points, from, a.lookback)
	stored := 0
	for i, d := range days {
		if err := a.store.UpsertDay(ctx, from.AddDate(0, 0, i), d); err != nil {
			cyclesFailed.Inc()
			slog.Error("upsert daily aggregate failed", "date", d.Date, "error", err)
			continue
		}
		daysStored.Inc()
		stored++
	}

	if a.pub != nil {
		event := AggregateEvent{Days: days, UpdatedAt: a.now().UTC()}
		if err := a.pub.Publish(ctx, services.ChannelAggregates, event); err != nil {
			slog.Warn("publish aggregates failed", "error", err)
		}
	}

	slog.Info("aggregation cycle completed", "points", len(points), "days", stored, "duration", time.Since(start))
	return stored
}
