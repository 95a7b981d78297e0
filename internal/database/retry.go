package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pinger は疎通確認のインターフェース。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RetryConfig は起動時の接続リトライ設定。
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig はデフォルトの接続リトライ設定を返す。
// 初回0.5秒、2倍ずつ増加、最大8秒。
func DefaultRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  maxAttempts,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
	}
}

// backoff は失敗回数に基づいて指数バックオフ遅延を計算する。
func (c RetryConfig) backoff(failures int) time.Duration {
	delay := c.InitialDelay
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay > c.MaxDelay {
			return c.MaxDelay
		}
	}
	return delay
}

// WaitForDB はデータベースに到達できるまで指数バックオフで疎通確認を繰り返す。
// MaxAttempts回失敗するか、ctxがキャンセルされた場合はエラーを返す。
func WaitForDB(ctx context.Context, db Pinger, cfg RetryConfig) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := cfg.backoff(attempt)
		slog.Warn("database not reachable, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_in", delay),
			slog.String("error", lastErr.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("database not reachable after %d attempts: %w", attempts, lastErr)
}
