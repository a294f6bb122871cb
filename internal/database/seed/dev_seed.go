package seed

import (
	"context"
	"fmt"

	"UserDirectoryService/internal/models"

	"go.uber.org/zap"
)

// UserStore описывает операции репозитория, нужные для заполнения данными
type UserStore interface {
	FindAll(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DevEnvironmentSeeder обрабатывает заполнение тестовыми данными среды разработки
type DevEnvironmentSeeder struct {
	repo    UserStore
	logger  *zap.Logger
	enabled bool
}

// NewDevEnvironmentSeeder создает новый объект для заполнения тестовыми данными.
// enabled должен быть true только в режиме разработки.
func NewDevEnvironmentSeeder(repo UserStore, logger *zap.Logger, enabled bool) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		repo:    repo,
		logger:  logger,
		enabled: enabled,
	}
}

// testUsers пользователи, которыми заполняется пустая база
func testUsers() []*models.User {
	return []*models.User{
		{Name: "test 1", Age: models.IntPtr(11)},
		{Name: "test 2", Age: models.IntPtr(22)},
	}
}

// SeedTestUsers создает тестовых пользователей, если таблица пользователей пуста
func (s *DevEnvironmentSeeder) SeedTestUsers(ctx context.Context) error {
	if !s.enabled {
		s.logger.Debug("Не в режиме разработки, пропускаем создание тестовых пользователей")
		return nil
	}

	s.logger.Info("Заполнение тестовыми пользователями для среды разработки")

	return s.repo.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindAll(ctx)
		if err != nil {
			return fmt.Errorf("ошибка проверки существующих пользователей: %w", err)
		}
		if len(existing) > 0 {
			s.logger.Info("Пользователи уже существуют", zap.Int("count", len(existing)))
			return nil
		}

		for _, user := range testUsers() {
			if _, err := s.repo.Save(ctx, user); err != nil {
				return fmt.Errorf("ошибка создания тестового пользователя %q: %w", user.Name, err)
			}
			s.logger.Info("Тестовый пользователь создан",
				zap.Uint("user_id", user.ID),
				zap.String("name", user.Name))
		}
		return nil
	})
}
