package usecase

import (
	"testing"
)

func TestBudgetLedger_RecomputeMatchesSoldPrices(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")
	firstPlayer := env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "A", PlayerNumber: 1, Role: "Batter"})
	secondPlayer := env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "B", PlayerNumber: 2, Role: "Batter"})

	if _, err := env.playerService.RecordSale(t.Context(), testOrganizer, firstPlayer, teamID, 300); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, err := env.playerService.RecordSale(t.Context(), testOrganizer, secondPlayer, teamID, 150); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	// Poison the derived column, then recompute from the players table.
	if _, err := env.teams.SetBudgets(t.Context(), teamID, 1000, 9999); err != nil {
		t.Fatalf("set budgets: %v", err)
	}
	if err := env.ledger.Recompute(t.Context(), teamID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	current, _, _ := env.teams.GetByID(t.Context(), teamID)
	if current.RemainingBudget != 550 {
		t.Fatalf("remaining not derived from sold prices: got=%d want=550", current.RemainingBudget)
	}
}

func TestBudgetLedger_RecomputeMissingTeamIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	if err := env.ledger.Recompute(t.Context(), "ghost-team"); err != nil {
		t.Fatalf("recompute of a deleted team must not fail: %v", err)
	}
}

func TestBudgetLedger_AdjustZeroDeltaSkipsWrite(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")

	if err := env.ledger.Adjust(t.Context(), teamID, 0); err != nil {
		t.Fatalf("zero adjust: %v", err)
	}
	current, _, _ := env.teams.GetByID(t.Context(), teamID)
	if current.RemainingBudget != 1000 {
		t.Fatalf("zero delta changed the balance: %d", current.RemainingBudget)
	}
}
