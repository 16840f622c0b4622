package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// CustomerUpdatePolicy определяет, что происходит с name/phone, когда клиент
// с таким email уже существует. Политика вынесена явно, чтобы будущее
// merge-on-conflict было контролируемым расширением, а не тихой сменой
// поведения.
type CustomerUpdatePolicy int

const (
	// UpdatePolicyKeepExisting — first-write-wins: поля из запроса молча
	// игнорируются, запись не обновляется.
	UpdatePolicyKeepExisting CustomerUpdatePolicy = iota
)

// CustomerResolver выполняет find-or-create клиента по нормализованному email.
type CustomerResolver struct {
	policy CustomerUpdatePolicy
}

// NewCustomerResolver создаёт резолвер клиентов с указанной политикой.
func NewCustomerResolver(policy CustomerUpdatePolicy) *CustomerResolver {
	return &CustomerResolver{policy: policy}
}

// Resolve возвращает клиента по email, создавая запись при отсутствии.
// Email нормализуется (нижний регистр); для существующего клиента переданные
// name/phone/created не применяются (UpdatePolicyKeepExisting). created
// записывается как есть, включая нулевое значение: его проверяет валидатор
// уже по хранимой записи.
func (r *CustomerResolver) Resolve(ctx context.Context, repo domain.CustomerRepository, email, name, phone string, created time.Time) (domain.Customer, error) {
	normalized := domain.NormalizeEmail(email)

	customer, err := repo.FindByEmail(ctx, normalized)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.Customer{}, fmt.Errorf("lookup customer by email: %w", err)
	}

	customer = domain.Customer{
		ID:        uuid.NewString(),
		Email:     normalized,
		Name:      name,
		Phone:     phone,
		CreatedAt: created,
	}

	insertErr := repo.Insert(ctx, customer)
	if insertErr == nil {
		return customer, nil
	}
	if !domain.IsConflict(insertErr) {
		return domain.Customer{}, fmt.Errorf("insert customer: %w", insertErr)
	}

	// Гонка первых вставок: уникальный индекс по email отдал победу другому
	// запросу, перечитываем существующую запись.
	winner, err := repo.FindByEmail(ctx, normalized)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("reread customer after conflict: %w", err)
	}
	return winner, nil
}
