package telemetry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds configuration for database metrics collection.
type DBMetricsConfig struct {
	Enabled bool
	// SlowQueryThreshold defines the threshold for slow query detection (default: 200ms).
	SlowQueryThreshold time.Duration
}

// DBMetrics holds the query instruments and the pool gauge registration
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolReg        metric.Registration
	threshold      time.Duration
}

// NewDBMetrics creates query instruments on meter and observes the pool of sqlDB on
// every collection cycle. sqlDB may be nil.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, threshold time.Duration) (*DBMetrics, error) {
	if threshold == 0 {
		threshold = 200 * time.Millisecond
	}

	queryTotal, err := NewCounter(meter, "db_query_total",
		"Total number of database queries by operation type", "{query}")
	if err != nil {
		return nil, err
	}
	queryDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	slowQueryTotal, err := NewCounter(meter, "db_slow_query_total",
		"Total number of slow database queries", "{query}")
	if err != nil {
		return nil, err
	}

	m := &DBMetrics{
		queryTotal:     queryTotal,
		queryDuration:  queryDuration,
		slowQueryTotal: slowQueryTotal,
		threshold:      threshold,
	}
	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	connections, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Number of connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum number of connections in the pool"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	m.poolReg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, connections, maxOpen)
	return err
}

// RecordQuery records metrics for a database query.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}

	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, duration, AttrDBOperation.String(operation))

	if duration > m.threshold {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// Stop unregisters the pool callback. Safe to call multiple times.
func (m *DBMetrics) Stop() {
	if m.poolReg != nil {
		_ = m.poolReg.Unregister()
		m.poolReg = nil
	}
}

// Initialize registers the query callbacks; DBMetrics is a gorm plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	for _, h := range callbackHooks(db) {
		op := h.op
		if err := h.before("db_metrics:before_"+op, markQueryStart); err != nil {
			return err
		}
		if err := h.after("db_metrics:after_"+op, func(db *gorm.DB) {
			m.observe(db, op)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the plugin name.
func (m *DBMetrics) Name() string {
	return "db_metrics"
}

func (m *DBMetrics) observe(db *gorm.DB, op string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	duration, _ := queryElapsed(ctx)
	m.RecordQuery(ctx, operationName(op, db.Statement.SQL.String()), db.Statement.Table, duration)
}

func operationName(op, sql string) string {
	switch op {
	case "create":
		return "INSERT"
	case "query":
		return "SELECT"
	case "update":
		return "UPDATE"
	case "delete":
		return "DELETE"
	}
	return detectOperationType(sql)
}

// detectOperationType attempts to detect the SQL operation type from the query.
func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}

// RegisterDBMetrics creates database metrics and installs them on db.
// Returns nil when metrics are disabled; call Stop() on shutdown otherwise.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled || meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("Database metrics disabled, skipping registration")
		return nil, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), sqlDB, cfg.SlowQueryThreshold)
	if err != nil {
		return nil, err
	}
	if err := db.Use(metrics); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", metrics.threshold))
	return metrics, nil
}
