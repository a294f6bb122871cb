package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UserDirectoryService/internal/models"
	"UserDirectoryService/pkg/server"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository представляет репозиторий для работы с пользователями и их адресами
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// FindAll возвращает всех пользователей вместе с адресами
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.observe("find_all", func() error {
		return r.conn(ctx).Preload("Address").Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("find all users: %w", err)
	}
	return users, nil
}

// FindByID получает пользователя по ID.
// Отсутствие пользователя не является ошибкой: возвращается nil, nil.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.observe("find_by_id", func() error {
		err := r.conn(ctx).Preload("Address").First(&user, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

// FindByNameContains возвращает пользователей, имя которых содержит подстроку.
// Сравнение выполняется оператором LIKE хранилища; пустая строка совпадает со всеми.
func (r *UserRepository) FindByNameContains(ctx context.Context, name string) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.observe("find_by_name_contains", func() error {
		return r.conn(ctx).
			Preload("Address").
			Where("name LIKE ?", "%"+name+"%").
			Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("find users by name %q: %w", name, err)
	}
	return users, nil
}

// FindByAge возвращает пользователей с точно указанным возрастом.
// Пользователи без возраста (NULL) не попадают в выборку.
func (r *UserRepository) FindByAge(ctx context.Context, age int) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.observe("find_by_age", func() error {
		return r.conn(ctx).
			Preload("Address").
			Where("age = ?", age).
			Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("find users by age %d: %w", age, err)
	}
	return users, nil
}

// Save создает нового пользователя.
// Вложенный адрес сохраняется первым в той же транзакции, идентификаторы
// проставляются в переданную структуру.
func (r *UserRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.observe("save_user", func() error {
		return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
			if err := saveAddress(tx, user); err != nil {
				return err
			}
			return tx.Omit(clause.Associations).Create(user).Error
		})
	})
	if err != nil {
		r.logger.Error("Не удалось сохранить пользователя", zap.String("name", user.Name), zap.Error(err))
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Update перезаписывает существующего пользователя по user.ID вместе с адресом.
// Существование записи должен гарантировать вызывающий код.
func (r *UserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.observe("update_user", func() error {
		return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
			if err := saveAddress(tx, user); err != nil {
				return err
			}
			return tx.Omit(clause.Associations).Save(user).Error
		})
	})
	if err != nil {
		r.logger.Error("Не удалось обновить пользователя", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return user, nil
}

// ExistsByID проверяет существование пользователя
func (r *UserRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.observe("exists_by_id", func() error {
		return r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	})
	if err != nil {
		return false, fmt.Errorf("check user %d exists: %w", id, err)
	}
	return count > 0, nil
}

// DeleteByID удаляет пользователя. Адрес пользователя не удаляется.
// Удаление несуществующего ID не является ошибкой.
func (r *UserRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.observe("delete_by_id", func() error {
		return r.conn(ctx).Delete(&models.User{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// txKey ключ контекста, под которым хранится текущая транзакция
type txKey struct{}

// Transaction выполняет fn в одной транзакции.
// Методы репозитория, вызванные с переданным в fn контекстом, используют эту транзакцию.
func (r *UserRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn возвращает транзакцию из контекста или общее подключение
func (r *UserRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// saveAddress сохраняет вложенный адрес и проставляет address_id пользователя.
// Новый адрес (ID == 0) вставляется, существующий обновляется.
func saveAddress(tx *gorm.DB, user *models.User) error {
	if user.Address == nil {
		user.AddressID = nil
		return nil
	}

	if user.Address.ID == 0 {
		if err := tx.Create(user.Address).Error; err != nil {
			return fmt.Errorf("create address: %w", err)
		}
	} else if err := tx.Save(user.Address).Error; err != nil {
		return fmt.Errorf("update address %d: %w", user.Address.ID, err)
	}

	addressID := user.Address.ID
	user.AddressID = &addressID
	return nil
}

// observe записывает метрику операции с базой данных
func (r *UserRepository) observe(operation string, fn func() error) error {
	startTime := time.Now()
	err := fn()
	server.RecordDBOperation(operation, time.Since(startTime), err)
	return err
}
