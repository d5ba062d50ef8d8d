package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"brainself/internal/models"
)

// RegisterValidators добавляет правила app_role и term в валидатор gin
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("app_role", validateRole); err != nil {
		return fmt.Errorf("failed to register app_role: %w", err)
	}
	if err := v.RegisterValidation("term", validateTerm); err != nil {
		return fmt.Errorf("failed to register term: %w", err)
	}
	return nil
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

func validateTerm(fl validator.FieldLevel) bool {
	return models.Term(fl.Field().String()).Valid()
}
