package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// AddressResolver выполняет find-or-create адресов по content hash.
// Резолвер не логирует и не глотает ошибки — только типизированные исходы.
type AddressResolver struct {
	now func() time.Time
}

// NewAddressResolver создаёт резолвер адресов.
func NewAddressResolver() *AddressResolver {
	return &AddressResolver{now: func() time.Time { return time.Now().UTC() }}
}

// Resolve возвращает хранимый адрес для кандидата, создавая его при отсутствии.
// Идемпотентен: эквивалентные (после нормализации) кандидаты дают один адрес.
func (r *AddressResolver) Resolve(ctx context.Context, repo domain.AddressRepository, candidate domain.AddressCandidate) (domain.Address, error) {
	resolved, err := r.ResolveMany(ctx, repo, []domain.AddressCandidate{candidate})
	if err != nil {
		return domain.Address{}, err
	}
	return resolved[0], nil
}

// ResolvePair резолвит платёжный и доставочный адреса одним батчем. Если
// кандидаты эквивалентны, оба указывают на одну запись.
func (r *AddressResolver) ResolvePair(ctx context.Context, repo domain.AddressRepository, billing, shipping domain.AddressCandidate) (domain.Address, domain.Address, error) {
	resolved, err := r.ResolveMany(ctx, repo, []domain.AddressCandidate{billing, shipping})
	if err != nil {
		return domain.Address{}, domain.Address{}, err
	}
	return resolved[0], resolved[1], nil
}

// ResolveMany резолвит набор кандидатов, выполняя проверку на дубликаты одним
// запросом по множеству отпечатков (не по запросу на кандидата). Результат
// выровнен по порядку кандидатов; эквивалентные кандидаты разделяют одну запись.
func (r *AddressResolver) ResolveMany(ctx context.Context, repo domain.AddressRepository, candidates []domain.AddressCandidate) ([]domain.Address, error) {
	hashes := make([]uuid.UUID, len(candidates))
	unique := make([]uuid.UUID, 0, len(candidates))
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	for i, candidate := range candidates {
		hash, err := candidate.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("fingerprint address: %w", err)
		}
		hashes[i] = hash
		if _, ok := seen[hash]; !ok {
			seen[hash] = struct{}{}
			unique = append(unique, hash)
		}
	}

	existing, err := repo.FindByHashes(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("lookup addresses by hash: %w", err)
	}
	byHash := make(map[uuid.UUID]domain.Address, len(existing))
	for _, address := range existing {
		byHash[address.Hash] = address
	}

	result := make([]domain.Address, len(candidates))
	for i, candidate := range candidates {
		hash := hashes[i]
		if address, ok := byHash[hash]; ok {
			result[i] = address
			continue
		}
		address, err := r.create(ctx, repo, candidate, hash)
		if err != nil {
			return nil, err
		}
		byHash[hash] = address
		result[i] = address
	}

	return result, nil
}

// create вставляет новый адрес. При гонке двух первых вставок хранилище
// сообщает о нарушении уникальности отпечатка — тогда перечитываем победившую
// запись вместо того, чтобы поднимать ложный конфликт (insert-then-reconcile).
func (r *AddressResolver) create(ctx context.Context, repo domain.AddressRepository, candidate domain.AddressCandidate, hash uuid.UUID) (domain.Address, error) {
	address, err := domain.NewAddress(candidate, r.now())
	if err != nil {
		return domain.Address{}, err
	}

	insertErr := repo.Insert(ctx, address)
	if insertErr == nil {
		return address, nil
	}
	if !domain.IsConflict(insertErr) {
		return domain.Address{}, fmt.Errorf("insert address: %w", insertErr)
	}

	winners, err := repo.FindByHashes(ctx, []uuid.UUID{hash})
	if err != nil {
		return domain.Address{}, fmt.Errorf("reread address after conflict: %w", err)
	}
	if len(winners) == 0 {
		// Конкурирующая вставка исчезла между конфликтом и перечитыванием.
		return domain.Address{}, fmt.Errorf("address conflict not reconciled: %w", domain.ErrConflict)
	}
	return winners[0], nil
}
