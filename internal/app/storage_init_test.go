package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitStorage_MemorySeedsCatalog(t *testing.T) {
	cfg := DefaultConfig()
	storage, err := initStorage(context.Background(), cfg, log.WithField("component", "test"))
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}

	variants, err := storage.Variants.FindBySKUs(context.Background(), []string{"TAP-CHR-01", "SINK-SS-02", "RAD-600-03"})
	if err != nil {
		t.Fatalf("find seeded variants: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 seeded variants, got %d", len(variants))
	}

	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("memory ping must succeed: %v", err)
	}
	if err := storage.Close(); err != nil {
		t.Fatalf("memory close must succeed: %v", err)
	}
}

func TestInitStorage_UnsupportedDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	if _, err := initStorage(context.Background(), cfg, log.WithField("component", "test")); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSplitBrokers(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"localhost:9092", 1},
		{"localhost:9092, localhost:9093", 2},
		{" , localhost:9092 ,", 1},
		{"", 0},
	}
	for _, tc := range cases {
		if got := splitBrokers(tc.in); len(got) != tc.want {
			t.Errorf("splitBrokers(%q) = %v, want %d entries", tc.in, got, tc.want)
		}
	}
}
