package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recipebook/internal/config"
	"recipebook/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured store, verifies it answers and applies the schema.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("connected to the database", "driver", cfg.DatabaseDriver)
	return db, nil
}

// Open builds the gorm handle without touching the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.DBLogSQL {
		level = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	case config.DriverSQLite:
		return gorm.Open(sqlite.Open(sqliteDSN(cfg.DatabaseURL)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// sqliteDSN makes every transaction take the write lock at BEGIN. A deferred
// transaction that reads before it writes can't upgrade its lock while another
// one holds it, and sqlite fails that upgrade at once instead of waiting.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_txlock=immediate"
}

// Migrate creates any missing table; existing tables and rows are left alone.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Recipe{}, "Ingredients", &models.RecipeIngredient{}); err != nil {
		return fmt.Errorf("setup recipe_ingredient join table: %w", err)
	}
	return db.AutoMigrate(
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
