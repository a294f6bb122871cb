package database

import (
	"context"
	"math"
	"math/rand"
	"time"

	"UserDirectoryService/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConnectOptions настройки ожидания хранилища при старте сервиса
type ConnectOptions struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
}

// DefaultConnectOptions возвращает настройки по умолчанию
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}

// ConnectWithRetry открывает хранилище, повторяя попытки с экспоненциальной задержкой.
// Используется только при старте: запросы к уже открытой базе не повторяются.
func ConnectWithRetry(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, options ConnectOptions) (*gorm.DB, error) {
	return connectWithRetry(ctx, logger, options, func() (*gorm.DB, error) {
		return NewDB(cfg)
	})
}

func connectWithRetry(ctx context.Context, logger *zap.Logger, options ConnectOptions, open func() (*gorm.DB, error)) (*gorm.DB, error) {
	var lastErr error

	for attempt := 0; attempt < options.MaxAttempts; attempt++ {
		db, err := open()
		if err == nil {
			if attempt > 0 {
				logger.Info("Подключение к базе данных установлено после повторов", zap.Int("attempt", attempt+1))
			}
			return db, nil
		}
		lastErr = err

		if attempt == options.MaxAttempts-1 {
			break
		}

		backoff := calculateBackoff(attempt, options)
		logger.Warn("База данных недоступна, повторяем подключение",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	logger.Error("Все попытки подключения исчерпаны",
		zap.Int("attempts", options.MaxAttempts),
		zap.Error(lastErr))
	return nil, lastErr
}

// calculateBackoff вычисляет время ожидания с экспоненциальной задержкой и случайным отклонением
func calculateBackoff(attempt int, options ConnectOptions) time.Duration {
	backoff := float64(options.InitialBackoff) * math.Pow(options.BackoffFactor, float64(attempt))

	if options.Jitter > 0 {
		jitter := (rand.Float64()*2 - 1) * options.Jitter
		backoff *= 1 + jitter
	}

	if backoff > float64(options.MaxBackoff) {
		backoff = float64(options.MaxBackoff)
	}

	return time.Duration(backoff)
}
