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
	Enabled bool
	// LogFullSQL includes bound query variables in spans. Development only.
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
	DBSystem           string
	// TracerProvider defaults to the global provider when nil
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns tracing disabled with a 200ms slow threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBSystem:           "postgresql",
	}
}

// DBTracingPlugin wraps otelgorm with row counts, error marking and slow query flags.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type queryStartKey struct{}

// gormOps are the gorm processors whose statements get timed
var gormOps = []string{"create", "query", "update", "delete", "row", "raw"}

// Register installs otelgorm and the timing callbacks on db. A disabled
// config is a no-op.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	for _, op := range gormOps {
		core := "gorm:" + op
		before := "marketplace_timing:before_" + op
		after := "marketplace_timing:after_" + op
		// The after hook must run before otelgorm ends the span
		otelAfter := "otel:after:" + op

		var err error
		switch op {
		case "create":
			if err = cb.Create().Before(core).Register(before, p.before); err == nil {
				err = cb.Create().After(core).Before(otelAfter).Register(after, p.after)
			}
		case "query":
			if err = cb.Query().Before(core).Register(before, p.before); err == nil {
				err = cb.Query().After(core).Before(otelAfter).Register(after, p.after)
			}
		case "update":
			if err = cb.Update().Before(core).Register(before, p.before); err == nil {
				err = cb.Update().After(core).Before(otelAfter).Register(after, p.after)
			}
		case "delete":
			if err = cb.Delete().Before(core).Register(before, p.before); err == nil {
				err = cb.Delete().After(core).Before(otelAfter).Register(after, p.after)
			}
		case "row":
			if err = cb.Row().Before(core).Register(before, p.before); err == nil {
				err = cb.Row().After(core).Before(otelAfter).Register(after, p.after)
			}
		case "raw":
			if err = cb.Raw().Before(core).Register(before, p.before); err == nil {
				err = cb.Raw().After(core).Before(otelAfter).Register(after, p.after)
			}
		}
		if err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThreshold),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
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

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThreshold.Milliseconds()),
		))
	}
}
