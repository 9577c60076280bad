package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedEntry struct {
	ID   uint `gorm:"primarykey"`
	Note string
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedEntry{}))

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))
	return db
}

// statementDB builds a gorm handle the way callbacks see one, without
// running a statement.
func statementDB(ctx context.Context, table string, rows int64) *gorm.DB {
	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db, Context: ctx, Table: table}
	db.RowsAffected = rows
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "statement parameters stay out of spans by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterOtelGorm(t *testing.T) {
	t.Run("disabled config registers nothing", func(t *testing.T) {
		db := setupTracedDB(t, DefaultDBTracingConfig())
		assert.Nil(t, db.Callback().Query().Get("db_trace:after_query"))
	})

	t.Run("enabled config installs the callbacks", func(t *testing.T) {
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		db := setupTracedDB(t, cfg)

		assert.NotNil(t, db.Callback().Create().Get("db_trace:before_create"))
		assert.NotNil(t, db.Callback().Create().Get("db_trace:after_create"))
		assert.NotNil(t, db.Callback().Query().Get("db_trace:before_query"))
		assert.NotNil(t, db.Callback().Query().Get("db_trace:after_query"))
		assert.NotNil(t, db.Callback().Update().Get("db_trace:after_update"))
		assert.NotNil(t, db.Callback().Delete().Get("db_trace:after_delete"))
	})

	t.Run("registering twice fails", func(t *testing.T) {
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		db := setupTracedDB(t, cfg)

		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestEnrichSpan(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	sr := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer("test")

	t.Run("annotates table and row count", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "db.insert")
		plugin.enrichSpan(statementDB(ctx, "invoices", 3))
		span.End()

		recorded := sr.Ended()[len(sr.Ended())-1]
		assert.Contains(t, recorded.Attributes(), attribute.String("db.sql.table", "invoices"))
		assert.Contains(t, recorded.Attributes(), attribute.Int64("db.rows_affected", 3))
		assert.NotEqual(t, codes.Error, recorded.Status().Code)
	})

	t.Run("marks statement errors", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "db.insert")
		db := statementDB(ctx, "invoices", 0)
		db.Error = errors.New("UNIQUE constraint failed: invoices.number")
		plugin.enrichSpan(db)
		span.End()

		recorded := sr.Ended()[len(sr.Ended())-1]
		assert.Equal(t, codes.Error, recorded.Status().Code)
	})

	t.Run("a missed lookup is not an error", func(t *testing.T) {
		ctx, span := tracer.Start(context.Background(), "db.query")
		db := statementDB(ctx, "invoices", 0)
		db.Error = gorm.ErrRecordNotFound
		plugin.enrichSpan(db)
		span.End()

		recorded := sr.Ended()[len(sr.Ended())-1]
		assert.NotEqual(t, codes.Error, recorded.Status().Code)
	})

	t.Run("flags queries above the threshold", func(t *testing.T) {
		slow := DefaultDBTracingConfig()
		slow.Enabled = true
		slow.SlowQueryThresh = time.Nanosecond
		slowPlugin := NewDBTracingPlugin(slow, zap.NewNop())

		ctx, span := tracer.Start(context.Background(), "db.query")
		db := statementDB(ctx, "orders", 1)
		slowPlugin.markStart(db)
		time.Sleep(time.Millisecond)
		slowPlugin.enrichSpan(db)
		span.End()

		recorded := sr.Ended()[len(sr.Ended())-1]
		assert.Contains(t, recorded.Attributes(), attribute.Bool("db.slow_query", true))
		require.NotEmpty(t, recorded.Events())
		assert.Equal(t, "slow_query_warning", recorded.Events()[0].Name)
	})

	t.Run("non-recording spans are left alone", func(t *testing.T) {
		// context without a live span
		plugin.enrichSpan(statementDB(context.Background(), "invoices", 1))
	})
}

func TestRegisterOtelGorm_EmitsSpans(t *testing.T) {
	sr := installSpanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	db := setupTracedDB(t, cfg)

	require.NoError(t, db.Create(&tracedEntry{Note: "invoice posted"}).Error)
	assert.NotEmpty(t, sr.Ended(), "statement should produce a span")
}
