package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"produto-api/internal/config"
)

// Database wraps the GORM engine and its connection pool.
type Database struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(cfg config.DatabaseConfig, debug bool, logger *zap.Logger) (*Database, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.PoolSize)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("database initialized",
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) DB() *gorm.DB {
	return d.db
}

// InstrumentQueries registers GORM callbacks that report every executed
// statement to fn with its operation and table name.
func (d *Database) InstrumentQueries(fn func(operation, table string)) {
	report := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			fn(operation, table)
		}
	}

	cb := d.db.Callback()
	_ = cb.Create().After("gorm:create").Register("metrics:after_create", report("insert"))
	_ = cb.Query().After("gorm:query").Register("metrics:after_query", report("select"))
	_ = cb.Update().After("gorm:update").Register("metrics:after_update", report("update"))
	_ = cb.Delete().After("gorm:delete").Register("metrics:after_delete", report("delete"))
	_ = cb.Row().After("gorm:row").Register("metrics:after_row", report("select"))
	_ = cb.Raw().After("gorm:raw").Register("metrics:after_raw", report("raw"))
}

// Migrate creates or updates the schema for the given models.
func (d *Database) Migrate(models ...interface{}) error {
	if err := d.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	d.logger.Info("database schema migrated")
	return nil
}

// Ping verifies the connection is alive; used by the readiness probe.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PoolStatus reports connection pool usage for the readiness payload.
func (d *Database) PoolStatus() map[string]int {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil
	}
	stats := sqlDB.Stats()
	return map[string]int{
		"open":   stats.OpenConnections,
		"in_use": stats.InUse,
		"idle":   stats.Idle,
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.logger.Info("database connection closed")
	return nil
}
