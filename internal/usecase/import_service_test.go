package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

// bulkFailingPlayerRepo rejects every batch insert while leaving the
// row-by-row path intact, the way a store that bulk-inserts as a single
// statement fails when one row is bad.
type bulkFailingPlayerRepo struct {
	player.Repository
}

func (r *bulkFailingPlayerRepo) CreateBatch(context.Context, []player.Player) (map[int]error, error) {
	return nil, errors.New("bulk insert rejected")
}

func TestImportService_ImportPlayers_RerunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	rows := []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter", "Base Price": "2", "Set": "Marquee"},
		{"Player Number": "93", "Name": "J. Bumrah", "Role": "Bowler", "Base Price": "1.5", "Set": "Bowlers"},
		{"Player Number": "18", "Name": "V. Kohli", "Role": "Batter", "Base Price": "2", "Set": "Marquee", "Marquee": "yes"},
	}

	first, err := env.importService.ImportPlayers(t.Context(), testOrganizer, auctionID, rows)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Imported != 3 || len(first.Skipped) != 0 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := env.importService.ImportPlayers(t.Context(), testOrganizer, auctionID, rows)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Imported != 0 {
		t.Fatalf("rerun imported rows again: %d", second.Imported)
	}
	if len(second.Skipped) != 3 {
		t.Fatalf("unexpected skip count on rerun: %d", len(second.Skipped))
	}
	for _, skipped := range second.Skipped {
		if skipped.Reason != "already exists" {
			t.Fatalf("unexpected skip reason: %q", skipped.Reason)
		}
	}

	players, err := env.players.ListByAuction(t.Context(), auctionID, player.Filter{})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("unexpected player count after rerun: %d", len(players))
	}
}

func TestImportService_ImportPlayers_SkipsBadRowsAndBatchDuplicates(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	rows := []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter"},
		{"Player Number": "7", "Name": "Duplicate Seven", "Role": "Batter"},
		{"Player Number": "12", "Name": "", "Role": "Bowler"},
		{"Name": "No Number", "Role": "Bowler"},
	}

	result, err := env.importService.ImportPlayers(t.Context(), testOrganizer, auctionID, rows)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Imported != 1 {
		t.Fatalf("unexpected imported count: got=%d want=1", result.Imported)
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("unexpected skip count: got=%d want=3", len(result.Skipped))
	}

	reasons := make(map[int]string, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons[s.PlayerNumber] = s.Reason
	}
	if reasons[7] != "duplicate player number in upload" {
		t.Fatalf("unexpected reason for in-batch duplicate: %q", reasons[7])
	}
	if reasons[12] != "missing required fields: name" {
		t.Fatalf("unexpected reason for missing name: %q", reasons[12])
	}
	if reasons[0] != "missing required fields: player number" {
		t.Fatalf("unexpected reason for missing number: %q", reasons[0])
	}

	// First occurrence of the duplicated number is the one that landed.
	players, _ := env.players.ListByAuction(t.Context(), auctionID, player.Filter{})
	if len(players) != 1 || players[0].Name != "R. Sharma" {
		t.Fatalf("unexpected surviving players: %+v", players)
	}
}

func TestImportService_ImportPlayers_CreatesPreferredSetsOnce(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	existingSet := env.mustCreateSet(t, auctionID, "Marquee", 1)

	rows := []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter", "Set": "Marquee"},
		{"Player Number": "93", "Name": "J. Bumrah", "Role": "Bowler", "Set": "Bowlers"},
		{"Player Number": "42", "Name": "S. Gill", "Role": "Batter", "Set": "Bowlers"},
	}

	result, err := env.importService.ImportPlayers(t.Context(), testOrganizer, auctionID, rows)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 3 {
		t.Fatalf("unexpected imported count: %d", result.Imported)
	}

	sets, err := env.sets.ListByAuction(t.Context(), auctionID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected existing set reused and one created, got %d sets", len(sets))
	}

	bowlers, exists, _ := env.sets.GetByAuctionAndName(t.Context(), auctionID, "Bowlers")
	if !exists {
		t.Fatal("preferred set not created")
	}
	if bowlers.State != auctionset.StateIdle {
		t.Fatalf("created set should be idle, got %s", bowlers.State)
	}

	assigned, _ := env.players.ListByAuction(t.Context(), auctionID, player.Filter{SetID: existingSet})
	if len(assigned) != 1 || assigned[0].PlayerNumber != 7 {
		t.Fatalf("player not linked to existing set: %+v", assigned)
	}
}

func TestImportService_ImportPlayers_ConvertsLakhsToUnits(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	rows := []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter", "Base Price": "2"},
		{"Player Number": "93", "Name": "J. Bumrah", "Role": "Bowler", "Base Price": "1.5"},
		{"Player Number": "42", "Name": "S. Gill", "Role": "Batter", "Base Price": "not a number"},
	}

	if _, err := env.importService.ImportPlayers(t.Context(), testOrganizer, auctionID, rows); err != nil {
		t.Fatalf("import: %v", err)
	}

	players, _ := env.players.ListByAuction(t.Context(), auctionID, player.Filter{})
	prices := make(map[int]int64, len(players))
	for _, p := range players {
		prices[p.PlayerNumber] = p.BasePrice
	}

	if prices[7] != 200000 {
		t.Fatalf("unexpected price for whole lakhs: got=%d want=200000", prices[7])
	}
	if prices[93] != 150000 {
		t.Fatalf("unexpected price for fractional lakhs: got=%d want=150000", prices[93])
	}
	if prices[42] != 0 {
		t.Fatalf("unparseable price should default to zero: got=%d", prices[42])
	}
}

func TestImportService_ImportPlayers_UnknownAuctionIsHardFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ImportPlayers(t.Context(), testOrganizer, "nope", []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImportService_ImportPlayers_SalvagesRowsWhenBulkInsertFails(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	repo := &bulkFailingPlayerRepo{Repository: env.players}
	svc := NewImportService(env.auctions, env.sets, repo, env.activity, nil, &seqIDGenerator{prefix: "imp"}, logging.NewNop())

	result, err := svc.ImportPlayers(t.Context(), testOrganizer, auctionID, []ImportRow{
		{"Player Number": "7", "Name": "R. Sharma", "Role": "Batter"},
		{"Player Number": "93", "Name": "J. Bumrah", "Role": "Bowler"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if result.Imported != 2 || len(result.Skipped) != 0 {
		t.Fatalf("salvage did not recover the batch: %+v", result)
	}

	players, err := env.players.ListByAuction(t.Context(), auctionID, player.Filter{})
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("unexpected player count after salvage: %d", len(players))
	}
}
