package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool          // Enable database tracing
	LogFullSQL      bool          // Include query variables in spans (dev only)
	SlowQueryThresh time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem        string        // Database system name (default: "postgresql")
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

type registerFunc func(name string, fn func(*gorm.DB)) error

type callbackHook struct {
	op     string
	before registerFunc
	after  registerFunc
	// traced runs after the operation but before otelgorm ends its span
	traced registerFunc
}

// callbackHooks returns the registration points around every gorm processor
func callbackHooks(db *gorm.DB) []callbackHook {
	cb := db.Callback()
	hooks := make([]callbackHook, 0, 6)
	add := func(op string, before, after, traced registerFunc) {
		hooks = append(hooks, callbackHook{op: op, before: before, after: after, traced: traced})
	}
	add("create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register,
		cb.Create().After("gorm:create").Before("otel:after:create").Register)
	add("query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register,
		cb.Query().After("gorm:query").Before("otel:after:query").Register)
	add("update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register,
		cb.Update().After("gorm:update").Before("otel:after:update").Register)
	add("delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register,
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register)
	add("row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register,
		cb.Row().After("gorm:row").Before("otel:after:row").Register)
	add("raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register,
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register)
	return hooks
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func queryElapsed(ctx context.Context) (time.Duration, bool) {
	if ctx == nil {
		return 0, false
	}
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// RegisterDBTracing installs the otelgorm plugin plus a callback that tags spans with
// the affected table, row count, errors and slow-query events.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	annotate := spanAnnotator(cfg.SlowQueryThresh)
	for _, h := range callbackHooks(db) {
		if err := h.before("otel_timing:before_"+h.op, markQueryStart); err != nil {
			return err
		}
		if err := h.traced("otel_timing:after_"+h.op, annotate); err != nil {
			return err
		}
	}

	// Registered after the annotator so the annotator sees the span still open
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func spanAnnotator(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		if elapsed, ok := queryElapsed(ctx); ok && elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", threshold.Milliseconds()),
			))
		}
	}
}
