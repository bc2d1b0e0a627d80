package usecase

import (
	"errors"
	"testing"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
)

func TestAuctionService_CreateAuction_HashesPasswordAndRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.auctionService.CreateAuction(t.Context(), CreateAuctionInput{
		OrganizerID:   testOrganizer,
		Name:          "IPL Mega Auction",
		Password:      "letmein",
		BudgetPerTeam: 1000,
		MaxTeamMember: 15,
		MinTeamMember: 11,
	})
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}

	if created.State != auction.StateSetup {
		t.Fatalf("unexpected initial state: got=%s want=%s", created.State, auction.StateSetup)
	}
	if created.PasswordHash == "" || created.PasswordHash == "letmein" {
		t.Fatal("password stored without hashing")
	}

	_, err = env.auctionService.CreateAuction(t.Context(), CreateAuctionInput{
		OrganizerID:   testOrganizer,
		Name:          "ipl mega auction",
		Password:      "other",
		BudgetPerTeam: 500,
		MaxTeamMember: 15,
		MinTeamMember: 11,
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// The same name under a different organizer is fine.
	other, err := env.auctionService.CreateAuction(t.Context(), CreateAuctionInput{
		OrganizerID:   "org-2",
		Name:          "IPL Mega Auction",
		Password:      "other",
		BudgetPerTeam: 500,
		MaxTeamMember: 15,
		MinTeamMember: 11,
	})
	if err != nil {
		t.Fatalf("create auction for second organizer: %v", err)
	}
	if other.ID == created.ID {
		t.Fatal("distinct auctions share an id")
	}
}

func TestAuctionService_VerifyAccess(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	if err := env.auctionService.VerifyAccess(t.Context(), auctionID, "letmein"); err != nil {
		t.Fatalf("verify with correct password: %v", err)
	}
	if err := env.auctionService.VerifyAccess(t.Context(), auctionID, "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuctionService_UpdateAuction_BudgetChangeRebaselinesTeams(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")
	playerID := env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "R. Sharma", PlayerNumber: 7, Role: "Batter"})

	if _, err := env.playerService.RecordSale(t.Context(), testOrganizer, playerID, teamID, 300); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	newBudget := int64(2000)
	updated, err := env.auctionService.UpdateAuction(t.Context(), testOrganizer, auctionID, AuctionPatch{
		BudgetPerTeam: &newBudget,
	})
	if err != nil {
		t.Fatalf("update auction: %v", err)
	}
	if updated.BudgetPerTeam != 2000 {
		t.Fatalf("budget not updated: got=%d want=2000", updated.BudgetPerTeam)
	}

	rebased, _, _ := env.teams.GetByID(t.Context(), teamID)
	if rebased.Budget != 2000 {
		t.Fatalf("team budget not rebased: got=%d want=2000", rebased.Budget)
	}
	if rebased.RemainingBudget != 1700 {
		t.Fatalf("spend not preserved across rebase: got=%d want=1700", rebased.RemainingBudget)
	}
}

func TestAuctionService_UpdateAuction_RejectsUnknownState(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	bogus := auction.State("archived")
	_, err := env.auctionService.UpdateAuction(t.Context(), testOrganizer, auctionID, AuctionPatch{State: &bogus})
	if !errors.Is(err, ErrConflictingState) {
		t.Fatalf("expected ErrConflictingState, got %v", err)
	}
}

func TestAuctionService_DeleteAuction_CascadesChildren(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	env.mustCreateTeam(t, auctionID, "Chennai Kings")
	setID := env.mustCreateSet(t, auctionID, "Marquee", 1)
	env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "R. Sharma", PlayerNumber: 7, Role: "Batter", SetID: setID})

	if err := env.auctionService.DeleteAuction(t.Context(), testOrganizer, auctionID); err != nil {
		t.Fatalf("delete auction: %v", err)
	}

	if _, exists, _ := env.auctions.GetByID(t.Context(), auctionID); exists {
		t.Fatal("auction still present")
	}
	teams, _ := env.teams.ListByAuction(t.Context(), auctionID)
	if len(teams) != 0 {
		t.Fatalf("teams left behind: %d", len(teams))
	}
	sets, _ := env.sets.ListByAuction(t.Context(), auctionID)
	if len(sets) != 0 {
		t.Fatalf("sets left behind: %d", len(sets))
	}
	numbers, _ := env.players.ListNumbersByAuction(t.Context(), auctionID)
	if len(numbers) != 0 {
		t.Fatalf("players left behind: %d", len(numbers))
	}
}

func TestAuctionService_GetAuction_ForeignOrganizerForbidden(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)

	_, err := env.auctionService.GetAuction(t.Context(), "org-2", auctionID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
