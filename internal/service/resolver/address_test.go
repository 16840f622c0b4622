package resolver

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// stubAddressRepo считает обращения, чтобы проверять батчинг и reconcile-путь.
type stubAddressRepo struct {
	byHash      map[uuid.UUID]domain.Address
	findCalls   int
	insertCalls int
	insertErr   error
	// onConflictInsert имитирует победившую конкурирующую вставку.
	onConflictInsert *domain.Address
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{byHash: make(map[uuid.UUID]domain.Address)}
}

func (r *stubAddressRepo) FindByHashes(_ context.Context, hashes []uuid.UUID) ([]domain.Address, error) {
	r.findCalls++
	result := make([]domain.Address, 0, len(hashes))
	for _, hash := range hashes {
		if address, ok := r.byHash[hash]; ok {
			result = append(result, address)
		}
	}
	return result, nil
}

func (r *stubAddressRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Address, error) {
	result := make([]domain.Address, 0, len(ids))
	for _, address := range r.byHash {
		for _, id := range ids {
			if address.ID == id {
				result = append(result, address)
			}
		}
	}
	return result, nil
}

func (r *stubAddressRepo) Insert(_ context.Context, address domain.Address) error {
	r.insertCalls++
	if r.insertErr != nil {
		if r.onConflictInsert != nil {
			r.byHash[r.onConflictInsert.Hash] = *r.onConflictInsert
		}
		return r.insertErr
	}
	if _, exists := r.byHash[address.Hash]; exists {
		return domain.ErrConflict
	}
	r.byHash[address.Hash] = address
	return nil
}

func TestAddressResolver_Idempotent(t *testing.T) {
	repo := newStubAddressRepo()
	res := NewAddressResolver()
	candidate := domain.AddressCandidate{LineOne: "10 High St", PostCode: "SW1A 1AA"}

	first, err := res.Resolve(context.Background(), repo, candidate)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Эквивалентный кандидат в другом регистре.
	second, err := res.Resolve(context.Background(), repo, domain.AddressCandidate{
		LineOne: "10 HIGH ST", PostCode: "sw1a 1aa",
	})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same stored address, got %s and %s", first.ID, second.ID)
	}
	if repo.insertCalls != 1 {
		t.Fatalf("expected 1 insert, got %d", repo.insertCalls)
	}
}

func TestAddressResolver_ResolveMany_SingleLookup(t *testing.T) {
	repo := newStubAddressRepo()
	res := NewAddressResolver()

	candidates := []domain.AddressCandidate{
		{LineOne: "10 High St", PostCode: "SW1A 1AA"},
		{LineOne: "22 Low Rd", PostCode: "M1 1AE"},
		{LineOne: "5 Mid Ln", PostCode: "B33 8TH"},
	}

	resolved, err := res.ResolveMany(context.Background(), repo, candidates)
	if err != nil {
		t.Fatalf("resolve many: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("expected 3 addresses, got %d", len(resolved))
	}
	// Проверка дубликатов — один запрос по множеству отпечатков, не N+1.
	if repo.findCalls != 1 {
		t.Fatalf("expected 1 batched lookup, got %d", repo.findCalls)
	}
}

func TestAddressResolver_SharedRowForIdenticalPair(t *testing.T) {
	repo := newStubAddressRepo()
	res := NewAddressResolver()
	candidate := domain.AddressCandidate{LineOne: "10 High St", PostCode: "SW1A 1AA"}

	resolved, err := res.ResolveMany(context.Background(), repo, []domain.AddressCandidate{candidate, candidate})
	if err != nil {
		t.Fatalf("resolve many: %v", err)
	}
	if resolved[0].ID != resolved[1].ID {
		t.Fatal("identical billing and shipping candidates must share one row")
	}
	if repo.insertCalls != 1 {
		t.Fatalf("expected 1 insert, got %d", repo.insertCalls)
	}
}

func TestAddressResolver_ResolvePair(t *testing.T) {
	repo := newStubAddressRepo()
	res := NewAddressResolver()

	billing, shipping, err := res.ResolvePair(context.Background(), repo,
		domain.AddressCandidate{LineOne: "10 High St", PostCode: "SW1A 1AA"},
		domain.AddressCandidate{LineOne: "22 Low Rd", PostCode: "M1 1AE"},
	)
	if err != nil {
		t.Fatalf("resolve pair: %v", err)
	}
	if billing.ID == shipping.ID {
		t.Fatal("different candidates must not share a row")
	}
	if repo.findCalls != 1 {
		t.Fatalf("expected 1 batched lookup, got %d", repo.findCalls)
	}
}

func TestAddressResolver_ReconcilesInsertRace(t *testing.T) {
	repo := newStubAddressRepo()
	res := NewAddressResolver()
	candidate := domain.AddressCandidate{LineOne: "10 High St", PostCode: "SW1A 1AA"}

	hash, err := candidate.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	winner := domain.Address{ID: "winner", Hash: hash, LineOne: "10 High St", PostCode: "SW1A 1AA"}
	repo.insertErr = domain.ErrConflict
	repo.onConflictInsert = &winner

	resolved, err := res.Resolve(context.Background(), repo, candidate)
	if err != nil {
		t.Fatalf("resolve after race: %v", err)
	}
	if resolved.ID != "winner" {
		t.Fatalf("expected the winning row, got %s", resolved.ID)
	}
}
