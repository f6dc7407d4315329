package database

import (
	"fmt"
	"os"
	"time"

	"RetailPOS/app/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of the database.driver setting
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// buildDSN constructs the PostgreSQL connection string.
// Priority: DATABASE_URL > config values (already overridden by DB_* env vars)
func buildDSN(cfg config.DatabaseConfig, log *zap.Logger) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		log.Info("Using DATABASE_URL for database connection")
		return dsn
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	log.Info("Built database connection from config",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Database),
		zap.String("sslmode", cfg.SSLMode))

	return dsn
}

// OpenPostgres connects to PostgreSQL with the pool settings used in production
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Open returns the key-value store selected by cfg.Driver
func Open(cfg config.DatabaseConfig, log *zap.Logger) (KV, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case DriverMemory:
		log.Warn("Using in-memory storage, data will not survive a restart")
		return NewMemoryKV(), nil
	case DriverPostgres:
		db, err = OpenPostgres(buildDSN(cfg, log))
	case DriverSQLite, "":
		name := cfg.Path
		if name == "" {
			name = "retail.db"
		}
		var path string
		path, err = config.ResolvePath(name)
		if err != nil {
			return nil, err
		}
		log.Info("Opening local database", zap.String("path", path))
		db, err = OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	kv, err := NewGormKV(db)
	if err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return kv, nil
}
