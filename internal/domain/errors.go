package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidInput — входные данные не удалось интерпретировать (например, не-UTF8 строки).
	ErrInvalidInput = errors.New("input is not valid")
	// ErrOrderNotFound возвращается, если заказ с указанным номером не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCustomerNotFound возвращается при поиске клиента по email/ID без результата.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrVariantNotFound возвращается, если SKU отсутствует в каталоге.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrConflict — нарушение уникальности, которое не удалось согласовать повторным чтением.
	ErrConflict = errors.New("uniqueness conflict")
	// ErrVersionConflict сигнализирует о конфликте optimistic locking при сохранении заказа.
	ErrVersionConflict = errors.New("order version conflict")
	// ErrCancelled — операция прервана по deadline или отмене контекста.
	ErrCancelled = errors.New("operation cancelled")
	// ErrInfrastructure — хранилище или канал доставки недоступны.
	ErrInfrastructure = errors.New("infrastructure unavailable")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrVariantNotFound)
}

// IsConflict проверяет, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrVersionConflict)
}

// IsCancelled распознаёт отмену как по доменному sentinel, так и по ошибкам контекста.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
