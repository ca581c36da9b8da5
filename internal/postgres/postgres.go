// Package postgres builds the shared pgx connection pool, with otel
// spans via otelpgx and a structured log line per query.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/go-core/log"
)

// NewPool connects to PostgreSQL and returns a ready pool. The caller
// owns Close.
func NewPool(ctx context.Context, databaseURL string, logger log.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.ConnConfig.Tracer = &loggingTracer{
		inner:  otelpgx.NewTracer(),
		logger: logger,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

type ctxKey string

const ctxKeyStart ctxKey = "pgx.start"

// loggingTracer wraps another pgx.QueryTracer (otelpgx) and adds a
// structured log line with duration for every query.
type loggingTracer struct {
	inner  pgx.QueryTracer
	logger log.Logger
}

func (t *loggingTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	// Let the inner tracer (otelpgx) create its span first.
	ctx = t.inner.TraceQueryStart(ctx, conn, data)
	return context.WithValue(ctx, ctxKeyStart, time.Now())
}

func (t *loggingTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	t.inner.TraceQueryEnd(ctx, conn, data)

	var dur time.Duration
	if start, ok := ctx.Value(ctxKeyStart).(time.Time); ok {
		dur = time.Since(start)
	}

	if data.Err != nil {
		t.logger.Error(ctx, data.Err, "db query failed", "duration_ms", dur.Milliseconds())
		return
	}
	t.logger.Info(ctx, "db query",
		"command", data.CommandTag.String(),
		"duration_ms", dur.Milliseconds(),
	)
}
