package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/orders/internal/storage/postgres"
)

// storageSet — выбранное хранилище и его сопутствующие интерфейсы.
type storageSet struct {
	UnitOfWork domain.UnitOfWork
	Outbox     domain.OutboxRepository
	Variants   domain.VariantStore
	Ping       func(ctx context.Context) error
	Close      func() error
}

// initStorage выбирает хранилище по конфигурации. В режиме memory каталог
// засевается демо-вариантами, иначе write path нечем обслуживать.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageSet, error) {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)
	case StorageDriverMemory, "":
		return initMemoryStorage(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageSet, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	logger.Info("postgres storage initialized")
	return &storageSet{
		UnitOfWork: store,
		Outbox:     store.Outbox(),
		Variants:   store.Variants(),
		Ping:       store.Ping,
		Close:      store.Close,
	}, nil
}

func initMemoryStorage(logger *log.Entry) *storageSet {
	store := memory.NewStore()
	for _, variant := range demoVariants() {
		store.SeedVariant(variant)
	}

	logger.Warn("using in-memory storage, data will not survive restart")
	return &storageSet{
		UnitOfWork: store,
		Outbox:     store.Outbox(),
		Variants:   store.Variants(),
		Ping:       func(context.Context) error { return nil },
		Close:      func() error { return nil },
	}
}

// demoVariants — небольшой каталог для режима memory.
func demoVariants() []domain.Variant {
	return []domain.Variant{
		{
			ID:          uuid.NewString(),
			SKU:         "TAP-CHR-01",
			Name:        "Chrome Basin Tap",
			ProductName: "Basin Taps",
			UnitPrice:   decimal.RequireFromString("24.99"),
			StockQty:    120,
		},
		{
			ID:          uuid.NewString(),
			SKU:         "SINK-SS-02",
			Name:        "Stainless Steel Sink",
			ProductName: "Kitchen Sinks",
			UnitPrice:   decimal.RequireFromString("89.00"),
			StockQty:    35,
		},
		{
			ID:          uuid.NewString(),
			SKU:         "RAD-600-03",
			Name:        "Compact Radiator 600mm",
			ProductName: "Radiators",
			UnitPrice:   decimal.RequireFromString("54.50"),
			StockQty:    60,
		},
	}
}
