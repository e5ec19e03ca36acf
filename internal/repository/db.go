package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/timmy/pokedex/internal/config"
	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const dialectPostgres = "postgres"

// InitDB initializes the database connection based on configuration and runs migrations.
// Parameters:
//   - cfg: database configuration including driver and connection settings.
//
// Returns:
//   - *gorm.DB: initialized database handle.
//   - error: non-nil if connection or migration fails.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		log.Printf("[DB] Using PostgreSQL driver")
		db, err = initPostgres(cfg, gormConfig)
	case "sqlite":
		log.Printf("[DB] Using SQLite driver")
		db, err = initSQLite(cfg, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	if err := SeedGenerations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the catalog and ingestion tables.
// On postgres the vector and pg_trgm extensions are created first.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == dialectPostgres {
		for _, stmt := range []string{
			"CREATE EXTENSION IF NOT EXISTS vector",
			"CREATE EXTENSION IF NOT EXISTS pg_trgm",
		} {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to prepare extensions: %w", err)
			}
		}
	}

	if err := db.AutoMigrate(
		&domain.Generation{},
		&domain.Type{},
		&domain.Stat{},
		&domain.Ability{},
		&domain.Pokemon{},
		&domain.PokemonType{},
		&domain.PokemonStat{},
		&domain.PokemonAbility{},
		&domain.IngestionRun{},
		&domain.IngestionError{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialector.Name() == dialectPostgres {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_pokemon_name_trgm ON pokemon USING gin (name gin_trgm_ops)").Error; err != nil {
			return fmt.Errorf("failed to create trigram index: %w", err)
		}
	}
	return nil
}

// SeedGenerations writes the static generation lookup rows.
func SeedGenerations(db *gorm.DB) error {
	rows := make([]domain.Generation, len(domain.DefaultGenerations))
	copy(rows, domain.DefaultGenerations)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "dex_from", "dex_to"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed generations: %w", err)
	}
	return nil
}

// initPostgres initializes a PostgreSQL database connection using the unified DSN
func initPostgres(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	// PreferSimpleProtocol keeps transaction poolers (pgbouncer, supabase 6543) working
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// initSQLite initializes a SQLite database connection
func initSQLite(cfg *config.DatabaseConfig, gormConfig *gorm.Config) (*gorm.DB, error) {
	if cfg.URL == "" && cfg.Path != "" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA foreign_keys=ON")

	return db, nil
}
