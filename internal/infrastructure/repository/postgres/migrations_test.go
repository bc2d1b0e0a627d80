package postgres

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
)

// Column defaults must name states the domain enums accept, or rows relying
// on a default would fail validation on read.
func TestInitMigration_DefaultsMatchDomainStates(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "db", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(raw)

	checks := []struct {
		column  string
		initial string
	}{
		{"state", string(auction.StateSetup)},
		{"state", string(auctionset.StateIdle)},
		{"status", string(player.StatusIdle)},
	}
	for _, check := range checks {
		want := check.column + " TEXT NOT NULL DEFAULT '" + check.initial + "'"
		if !strings.Contains(sql, want) {
			t.Fatalf("migration is missing default %q", want)
		}
	}

	for _, stale := range []string{"'draft'", "'pending'"} {
		if strings.Contains(sql, stale) {
			t.Fatalf("migration still defaults to %s, which no domain enum accepts", stale)
		}
	}
}
