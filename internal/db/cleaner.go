package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartExpiryCleaner removes expired sessions and stale reset-token ledger
// entries with interval. Sessions past their expiry are no longer accepted
// even before the cleaner runs; this only reclaims storage. Consumed reset
// tokens are kept until their expiry has passed so replayed tokens keep
// being rejected for the whole signature validity window.
func StartExpiryCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM sessions
                     WHERE expires_at < now()
                `)
				if err != nil {
					log.Error("failed to clean expired sessions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired sessions", zap.Int64("removed", rows))
				}

				res, err = db.ExecContext(ctx, `
                    DELETE FROM reset_tokens
                     WHERE expires_at < now()
                `)
				if err != nil {
					log.Error("failed to clean stale reset tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned stale reset tokens", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
