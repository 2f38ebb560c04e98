package service

import (
	"errors"
	"fmt"
)

var (
	ErrLinkExpired  = errors.New("link has expired")
	ErrUnauthorized = errors.New("invalid webhook secret")
)

// ValidationError ошибка входных данных; отдается клиенту как 400
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation сообщает, является ли err ошибкой валидации
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
