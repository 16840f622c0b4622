package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// addressNamespace — фиксированное namespace для MD5-based UUID отпечатков адресов.
// Менять нельзя: новый namespace означает новые отпечатки и дубли существующих адресов.
var addressNamespace = uuid.MustParse("3b2f1c74-9d5e-4c8a-a1f0-6e2d8b4c9a57")

// NormalizeField приводит свободный текст к канонической форме дедупликации:
// обрезает края, схлопывает внутренние пробелы в один и приводит к нижнему регистру.
// Правила фиксированы — они определяют гранулярность дедупликации адресов.
func NormalizeField(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeEmail приводит email к каноническому виду (регистр не значим).
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSKU приводит SKU к каноническому виду (регистр не значим).
func NormalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Fingerprint вычисляет детерминированный 128-битный отпечаток упорядоченного
// набора текстовых полей. Поля нормализуются и соединяются через '\n', чтобы
// ("ab", "c") и ("a", "bc") не совпадали. Чистая функция, без I/O.
// Не-UTF8 вход отклоняется с ErrInvalidInput.
func Fingerprint(fields ...string) (uuid.UUID, error) {
	normalized := make([]string, 0, len(fields))
	for _, field := range fields {
		if !utf8.ValidString(field) {
			return uuid.Nil, ErrInvalidInput
		}
		normalized = append(normalized, NormalizeField(field))
	}
	return uuid.NewMD5(addressNamespace, []byte(strings.Join(normalized, "\n"))), nil
}
