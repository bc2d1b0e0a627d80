package usecase

import (
	"errors"
	"testing"
)

func TestTeamService_CreateTeam_CopiesBudgetFromAuction(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1500)

	created, err := env.teamService.CreateTeam(t.Context(), CreateTeamInput{
		OrganizerID: testOrganizer,
		AuctionID:   auctionID,
		Name:        "Chennai Kings",
		Owner:       "N. Srinivasan",
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	if created.Budget != 1500 {
		t.Fatalf("budget not copied from auction: got=%d want=1500", created.Budget)
	}
	if created.RemainingBudget != 1500 {
		t.Fatalf("remaining budget not initialized: got=%d want=1500", created.RemainingBudget)
	}
}

func TestTeamService_CreateTeam_DuplicateNameScopedToAuction(t *testing.T) {
	env := newTestEnv(t)
	firstAuction := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	secondAuction := env.mustCreateAuction(t, "County Draft", 1000)
	env.mustCreateTeam(t, firstAuction, "Chennai Kings")

	_, err := env.teamService.CreateTeam(t.Context(), CreateTeamInput{
		OrganizerID: testOrganizer,
		AuctionID:   firstAuction,
		Name:        "chennai kings",
		Owner:       "Someone",
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName within auction, got %v", err)
	}

	// The same name in another auction is a different namespace.
	if _, err := env.teamService.CreateTeam(t.Context(), CreateTeamInput{
		OrganizerID: testOrganizer,
		AuctionID:   secondAuction,
		Name:        "Chennai Kings",
		Owner:       "Someone",
	}); err != nil {
		t.Fatalf("create team in second auction: %v", err)
	}
}

func TestTeamService_UpdateTeam_BudgetChangeRecomputesRemaining(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")
	playerID := env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "R. Sharma", PlayerNumber: 7, Role: "Batter"})

	if _, err := env.playerService.RecordSale(t.Context(), testOrganizer, playerID, teamID, 400); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	newBudget := int64(2500)
	updated, err := env.teamService.UpdateTeam(t.Context(), testOrganizer, teamID, TeamPatch{Budget: &newBudget})
	if err != nil {
		t.Fatalf("update team: %v", err)
	}

	if updated.Budget != 2500 {
		t.Fatalf("budget not updated: got=%d want=2500", updated.Budget)
	}
	if updated.RemainingBudget != 2100 {
		t.Fatalf("remaining not recomputed from sold prices: got=%d want=2100", updated.RemainingBudget)
	}
}

func TestTeamService_DeleteTeam_BlockedByRoster(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")
	playerID := env.mustCreatePlayer(t, auctionID, PlayerInput{Name: "R. Sharma", PlayerNumber: 7, Role: "Batter"})

	if _, err := env.playerService.RecordSale(t.Context(), testOrganizer, playerID, teamID, 300); err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if err := env.teamService.DeleteTeam(t.Context(), testOrganizer, teamID); !errors.Is(err, ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}

	if _, err := env.playerService.UndoSale(t.Context(), testOrganizer, playerID); err != nil {
		t.Fatalf("undo sale: %v", err)
	}
	if err := env.teamService.DeleteTeam(t.Context(), testOrganizer, teamID); err != nil {
		t.Fatalf("delete team after roster cleared: %v", err)
	}
}

func TestTeamService_UploadLogo_FailureLeavesTeamUntouched(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.mustCreateAuction(t, "IPL Mega Auction", 1000)
	teamID := env.mustCreateTeam(t, auctionID, "Chennai Kings")

	env.logos.err = errors.New("bucket unreachable")
	_, err := env.teamService.UploadLogo(t.Context(), testOrganizer, teamID, []byte{0x89, 0x50}, "image/png")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	current, _, _ := env.teams.GetByID(t.Context(), teamID)
	if current.LogoURL != "" {
		t.Fatalf("logo url written despite upload failure: %q", current.LogoURL)
	}

	env.logos.err = nil
	updated, err := env.teamService.UploadLogo(t.Context(), testOrganizer, teamID, []byte{0x89, 0x50}, "image/png")
	if err != nil {
		t.Fatalf("upload logo: %v", err)
	}
	if updated.LogoURL == "" {
		t.Fatal("logo url not recorded after successful upload")
	}
}
