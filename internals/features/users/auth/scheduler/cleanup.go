package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	authRepo "notesku_backend/internals/features/users/auth/repository"
	"notesku_backend/internals/logger"
)

type CleanupConfig struct {
	// TTLDays: umur minimal entri expired sebelum dihapus (default 7 hari).
	TTLDays int
	// ClientIdle: client_sessions yang tidak disentuh selama ini ikut dihapus.
	ClientIdle time.Duration
	Interval   time.Duration
}

// RunCleanup: satu putaran pembersihan token_blacklist, refresh_tokens, client_sessions.
func RunCleanup(ctx context.Context, db *gorm.DB, cfg CleanupConfig, now time.Time) {
	log := logger.Component("cleanup")
	ttlDays := cfg.TTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}
	deleteBefore := now.Add(-time.Duration(ttlDays) * 24 * time.Hour)

	if n, err := authRepo.CleanupExpiredBlacklist(ctx, db, deleteBefore); err != nil {
		log.Error().Err(err).Msg("cleanup token_blacklist")
	} else {
		log.Info().Int64("deleted", n).Msg("token_blacklist cleaned")
	}

	if n, err := authRepo.CleanupRefreshTokens(ctx, db, deleteBefore); err != nil {
		log.Error().Err(err).Msg("cleanup refresh_tokens")
	} else {
		log.Info().Int64("deleted", n).Msg("refresh_tokens cleaned")
	}

	if cfg.ClientIdle > 0 {
		if n, err := authRepo.CleanupClientSessions(ctx, db, now.Add(-cfg.ClientIdle)); err != nil {
			log.Error().Err(err).Msg("cleanup client_sessions")
		} else {
			log.Info().Int64("deleted", n).Msg("client_sessions cleaned")
		}
	}
}

// StartBlacklistCleanupScheduler menjalankan RunCleanup tiap Interval (default 24 jam)
// sampai ctx selesai.
func StartBlacklistCleanupScheduler(ctx context.Context, db *gorm.DB, cfg CleanupConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			RunCleanup(ctx, db, cfg, time.Now().UTC())
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
