package service

import (
	"context"

	"UserDirectoryService/internal/models"
	"UserDirectoryService/pkg/apperrors"

	"go.uber.org/zap"
)

// UserServiceInterface определяет интерфейс для сервиса пользователей
type UserServiceInterface interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetAllByName(ctx context.Context, name string) ([]models.User, error)
	GetAllByAge(ctx context.Context, age int) ([]models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id uint, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

// UserRepositoryInterface описывает интерфейс для работы с репозиторием пользователей
type UserRepositoryInterface interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByNameContains(ctx context.Context, name string) ([]models.User, error)
	FindByAge(ctx context.Context, age int) ([]models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	DeleteByID(ctx context.Context, id uint) error
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserService представляет сервис для работы с пользователями
type UserService struct {
	userRepo UserRepositoryInterface
	logger   *zap.Logger
}

// NewUserService создает новый экземпляр UserService
func NewUserService(userRepo UserRepositoryInterface, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetAll возвращает всех пользователей
func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.userRepo.FindAll(ctx)
}

// GetByID получает пользователя по ID.
// Если пользователя нет, возвращается nil без ошибки.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", zap.Error(err), zap.Uint("user_id", id))
		return nil, err
	}
	return user, nil
}

// GetAllByName возвращает пользователей, имя которых содержит подстроку
func (s *UserService) GetAllByName(ctx context.Context, name string) ([]models.User, error) {
	return s.userRepo.FindByNameContains(ctx, name)
}

// GetAllByAge возвращает пользователей указанного возраста
func (s *UserService) GetAllByAge(ctx context.Context, age int) ([]models.User, error) {
	return s.userRepo.FindByAge(ctx, age)
}

// Create создает нового пользователя
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	created, err := s.userRepo.Save(ctx, user)
	if err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("name", user.Name))
		return nil, err
	}

	s.logger.Info("User created", zap.Uint("user_id", created.ID))
	return created, nil
}

// Update перезаписывает существующего пользователя.
// ID из пути имеет приоритет над ID в теле запроса.
func (s *UserService) Update(ctx context.Context, id uint, user *models.User) (*models.User, error) {
	var updated *models.User

	err := s.userRepo.Transaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrUserNotFound
		}

		user.ID = id
		updated, err = s.userRepo.Update(ctx, user)
		return err
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.logger.Warn("User for update not found", zap.Uint("user_id", id))
		} else {
			s.logger.Error("Failed to update user", zap.Error(err), zap.Uint("user_id", id))
		}
		return nil, err
	}

	s.logger.Info("User updated", zap.Uint("user_id", id))
	return updated, nil
}

// Delete удаляет пользователя. Удаление отсутствующего ID завершается успешно.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err), zap.Uint("user_id", id))
		return err
	}

	s.logger.Info("User deleted", zap.Uint("user_id", id))
	return nil
}
