package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type customerRepository struct {
	q querier
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, name, phone, created_at
		FROM customers
		WHERE email = $1
	`, email).Scan(&customer.ID, &customer.Email, &customer.Name, &customer.Phone, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, wrapDBErr("select customer by email", err)
	}
	return customer, nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, name, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Email, &customer.Name, &customer.Phone, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, wrapDBErr("select customer by id", err)
	}
	return customer, nil
}

// Insert сигнализирует о проигранной гонке по email через ErrConflict.
// ON CONFLICT DO NOTHING вместо ошибки 23505: абортированная транзакция
// сделала бы reconcile-чтение в той же единице работы невозможным.
func (r *customerRepository) Insert(ctx context.Context, customer domain.Customer) error {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO customers (id, email, name, phone, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (email) DO NOTHING
	`, customer.ID, customer.Email, customer.Name, customer.Phone, customer.CreatedAt)
	if err != nil {
		return wrapDBErr("insert customer", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapDBErr("insert customer", err)
	}
	if affected == 0 {
		return domain.ErrConflict
	}
	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
