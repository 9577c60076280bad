package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm integration.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include statement parameters in spans, never in production
	SlowQueryThresh time.Duration // queries above this get a slow_query marker
	DBSystem        string
}

// DefaultDBTracingConfig hides query parameters and flags queries
// slower than 200ms.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin attaches otelgorm spans to every statement and enriches
// them with row counts, table names and slow query markers.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin builds a plugin; call RegisterOtelGorm to activate it.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type dbTraceContextKey struct{}

// RegisterOtelGorm installs otelgorm plus the enrichment callbacks on db.
// A disabled config registers nothing.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error {
			return cb.Create().Before("gorm:create").Register("db_trace:before_create", p.markStart)
		},
		func() error {
			return cb.Create().After("gorm:create").Register("db_trace:after_create", p.enrichSpan)
		},
		func() error {
			return cb.Query().Before("gorm:query").Register("db_trace:before_query", p.markStart)
		},
		func() error {
			return cb.Query().After("gorm:query").Register("db_trace:after_query", p.enrichSpan)
		},
		func() error {
			return cb.Update().Before("gorm:update").Register("db_trace:before_update", p.markStart)
		},
		func() error {
			return cb.Update().After("gorm:update").Register("db_trace:after_update", p.enrichSpan)
		},
		func() error {
			return cb.Delete().Before("gorm:delete").Register("db_trace:before_delete", p.markStart)
		},
		func() error {
			return cb.Delete().After("gorm:delete").Register("db_trace:after_delete", p.enrichSpan)
		},
		func() error {
			return cb.Row().Before("gorm:row").Register("db_trace:before_row", p.markStart)
		},
		func() error {
			return cb.Row().After("gorm:row").Register("db_trace:after_row", p.enrichSpan)
		},
		func() error {
			return cb.Raw().Before("gorm:raw").Register("db_trace:before_raw", p.markStart)
		},
		func() error {
			return cb.Raw().After("gorm:raw").Register("db_trace:after_raw", p.enrichSpan)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// markStart records the statement start time for slow query detection.
func (p *DBTracingPlugin) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, dbTraceContextKey{}, time.Now())
	}
}

// enrichSpan runs after the statement and annotates the otelgorm span.
func (p *DBTracingPlugin) enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// A missed lookup is normal flow, not a span error
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(dbTraceContextKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
