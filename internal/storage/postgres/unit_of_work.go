package postgres

import (
	"context"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Within выполняет fn в одной транзакции: все репозитории внутри области
// привязаны к одному *sql.Tx, так что резолюция сущностей, проверки,
// запись агрегата и outbox-вставка фиксируются вместе или откатываются
// вместе. Ошибка fn возвращается наружу без повторов.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBErr("begin unit of work", err)
	}

	repos := domain.Repositories{
		Addresses: &addressRepository{q: tx},
		Customers: &customerRepository{q: tx},
		Variants:  &variantRepository{q: tx},
		Orders:    &orderRepository{q: tx},
		Outbox:    &outboxRepository{q: tx},
	}

	if err := fn(ctx, repos); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBErr("commit unit of work", err)
	}
	return nil
}

// Outbox возвращает автономный репозиторий outbox для фонового worker'а:
// каждая операция выполняется вне единицы работы, в autocommit-режиме.
func (s *Store) Outbox() domain.OutboxRepository {
	return &outboxRepository{q: s.db}
}

// Variants возвращает автономное представление каталога для обработчика
// входящих событий.
func (s *Store) Variants() domain.VariantStore {
	return &variantRepository{q: s.db}
}

var _ domain.UnitOfWork = (*Store)(nil)
