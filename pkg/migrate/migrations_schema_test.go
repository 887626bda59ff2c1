package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thandondaba/quickbite-backend/pkg/migrate"
)

func TestShippedMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestInitSchemaContainsCoreTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE products",
		"size_prices JSONB",
		"CREATE TABLE orders",
		"status TEXT NOT NULL DEFAULT 'New'",
		"delivery_option TEXT NOT NULL DEFAULT 'No'",
		"CREATE TABLE order_items",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE order_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationKeepsUnpublishedIndex(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_outbox_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE outbox_events",
		"WHERE published_at IS NULL",
		"DROP TABLE outbox_events",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
