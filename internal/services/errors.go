package services

import (
	"errors"
	"fmt"

	"brainself/internal/repository"
)

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrValidation неверные входные данные
	ErrValidation = errors.New("validation failed")
	// ErrConflict запись уже существует или состояние не позволяет операцию
	ErrConflict = errors.New("conflict")
	// ErrPartialFailure часть данных не загрузилась
	ErrPartialFailure = errors.New("partial failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// wrapRepo переводит ошибки репозитория в ошибки сервиса
func wrapRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case repository.IsDuplicate(err):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
