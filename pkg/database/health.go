package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker проверяет состояние хранилища
type HealthChecker struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDatabaseHealthChecker создает новый экземпляр проверки состояния базы данных
func NewDatabaseHealthChecker(db *gorm.DB, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		db:     db,
		logger: logger,
	}
}

// IsDatabaseHealthy проверяет, отвечает ли база данных на простой запрос
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	sqlDB, err := c.db.DB()
	if err != nil {
		c.logger.Warn("Не удалось получить соединение с базой данных", zap.Error(err))
		return false
	}

	var result int
	if err := sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		c.logger.Warn("База данных не отвечает", zap.Error(err))
		return false
	}

	return result == 1
}
