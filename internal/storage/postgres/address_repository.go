package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type addressRepository struct {
	q querier
}

func (r *addressRepository) FindByHashes(ctx context.Context, hashes []uuid.UUID) ([]domain.Address, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	args := make([]any, len(hashes))
	for i, hash := range hashes {
		args[i] = hash.String()
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, hash, line_one, line_two, line_three, post_code, created_at
		FROM addresses
		WHERE hash IN (`+placeholders(1, len(hashes))+`)
	`, args...)
	if err != nil {
		return nil, wrapDBErr("select addresses by hash", err)
	}
	defer rows.Close()

	return scanAddresses(rows)
}

func (r *addressRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Address, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, hash, line_one, line_two, line_three, post_code, created_at
		FROM addresses
		WHERE id IN (`+placeholders(1, len(ids))+`)
	`, args...)
	if err != nil {
		return nil, wrapDBErr("select addresses by id", err)
	}
	defer rows.Close()

	return scanAddresses(rows)
}

// Insert сигнализирует о проигранной гонке по отпечатку через ErrConflict.
// Конфликт гасится на стороне Postgres (ON CONFLICT DO NOTHING), а не через
// ошибку 23505: ошибка уникальности абортирует транзакцию, и reconcile-чтение
// в той же единице работы стало бы невозможным.
func (r *addressRepository) Insert(ctx context.Context, address domain.Address) error {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO addresses (id, hash, line_one, line_two, line_three, post_code, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (hash) DO NOTHING
	`,
		address.ID, address.Hash.String(), address.LineOne, address.LineTwo,
		address.LineThree, address.PostCode, address.CreatedAt,
	)
	if err != nil {
		return wrapDBErr("insert address", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBErr("insert address", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func scanAddresses(rows rowScanner) ([]domain.Address, error) {
	addresses := make([]domain.Address, 0)
	for rows.Next() {
		var (
			address domain.Address
			rawHash string
		)
		if err := rows.Scan(
			&address.ID, &rawHash, &address.LineOne, &address.LineTwo,
			&address.LineThree, &address.PostCode, &address.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		hash, err := uuid.Parse(rawHash)
		if err != nil {
			return nil, fmt.Errorf("parse address hash %q: %w", rawHash, err)
		}
		address.Hash = hash
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}
	return addresses, nil
}

// rowScanner — минимум от *sql.Rows, который нужен scan-помощникам.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

var _ domain.AddressRepository = (*addressRepository)(nil)
