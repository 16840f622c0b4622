package domain

import (
	"errors"
	"strings"
)

// FieldError — одно нарушение бизнес-правила, привязанное к полю запроса.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError собирает все нарушения валидации, сохраняя порядок обнаружения.
// Пустой список полей означает валидный запрос.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError создаёт пустой накопитель нарушений.
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// Add добавляет нарушение. Повторные ошибки по одному полю сохраняются —
// порядок важнее дедупликации, вызывающая сторона видит всё.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty сообщает, были ли найдены нарушения.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Map возвращает нарушения в виде field→message (первое сообщение по полю).
func (e *ValidationError) Map() map[string]string {
	result := make(map[string]string, len(e.Fields))
	for _, fe := range e.Fields {
		if _, ok := result[fe.Field]; !ok {
			result[fe.Field] = fe.Message
		}
	}
	return result
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError извлекает *ValidationError из цепочки ошибок.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if err == nil {
		return nil, false
	}
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
