package domain

import (
	"time"

	"github.com/google/uuid"
)

// AddressCandidate — адрес из входящего запроса до резолюции в хранимую сущность.
type AddressCandidate struct {
	LineOne   string
	LineTwo   string
	LineThree string
	PostCode  string
}

// Fingerprint возвращает content hash кандидата. Два кандидата с эквивалентными
// (после нормализации) полями обязаны давать одинаковый отпечаток.
func (c AddressCandidate) Fingerprint() (uuid.UUID, error) {
	return Fingerprint(c.LineOne, c.LineTwo, c.LineThree, c.PostCode)
}

// Address — хранимый адрес. Идентичность определяется отпечатком содержимого.
// После создания запись неизменяема: адрес может быть разделён несколькими
// заказами, поэтому «замена» адреса всегда означает новую строку, а не мутацию.
type Address struct {
	ID        string
	Hash      uuid.UUID
	LineOne   string
	LineTwo   string
	LineThree string
	PostCode  string
	CreatedAt time.Time
}

// NewAddress строит новую сущность адреса из кандидата.
func NewAddress(c AddressCandidate, now time.Time) (Address, error) {
	hash, err := c.Fingerprint()
	if err != nil {
		return Address{}, err
	}
	return Address{
		ID:        uuid.NewString(),
		Hash:      hash,
		LineOne:   c.LineOne,
		LineTwo:   c.LineTwo,
		LineThree: c.LineThree,
		PostCode:  c.PostCode,
		CreatedAt: now,
	}, nil
}
