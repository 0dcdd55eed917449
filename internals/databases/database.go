package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"notesku_backend/internals/configs"
	catalogModel "notesku_backend/internals/features/catalog/model"
	authModel "notesku_backend/internals/features/users/auth/model"
	"notesku_backend/internals/logger"
)

// ConnectDB: koneksi PostgreSQL (Supabase / PgBouncer).
func ConnectDB(cfg configs.App) (*gorm.DB, error) {
	log := logger.Component("database")
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("🔌 connecting to PostgreSQL")

	db, err := configs.OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("✅ DB connected")
	return db, nil
}

func TunePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("pool tune: %w", err)
	}
	// ⚖️ Sesuaikan dengan limit Supabase/PgBouncer
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// WarmUp: ping ringan di background supaya pool terisi.
func WarmUp(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			log := logger.Component("database")
			log.Warn().Err(err).Msg("warm-up ping")
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Models: semua tabel yang dimigrasi `migrate`.
func Models() []any {
	out := catalogModel.AllModels()
	return append(out, authModel.AllModels()...)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
