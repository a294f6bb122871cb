package apperrors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Список ошибок "запись не найдена"
var (
	// ErrNotFound возвращается, когда запись не найдена (обобщенная ошибка)
	ErrNotFound = errors.New("запись не найдена")

	// ErrUserNotFound возвращается при обновлении несуществующего пользователя
	ErrUserNotFound = fmt.Errorf("пользователь не найден: %w", ErrNotFound)

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound
)

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
