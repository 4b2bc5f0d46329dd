package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlstore"
)

// Harness is a migrated SQLite store in a temporary directory.
type Harness struct {
	Store *sqlstore.Store
	Repos persistence.Repositories
}

// NewHarness opens and migrates a fresh store. It is closed when the test
// ends.
func NewHarness(tb testing.TB) *Harness {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "booking.db") + "?_pragma=foreign_keys(1)"
	store, err := sqlstore.Open(context.Background(), "sqlite", dsn, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &Harness{Store: store, Repos: store.Repositories()}
}
