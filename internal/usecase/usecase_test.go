package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/auctionarena/auction-arena/internal/infrastructure/repository/memory"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

type seqIDGenerator struct {
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type captureRecorder struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (r *captureRecorder) Record(event ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *captureRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}

	return out
}

type stubLogoStore struct {
	keys []string
	err  error
}

func (s *stubLogoStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)

	return "https://cdn.test/" + key, nil
}

type testEnv struct {
	auctions *memory.AuctionRepository
	teams    *memory.TeamRepository
	sets     *memory.SetRepository
	players  *memory.PlayerRepository

	ledger   *BudgetLedger
	activity *captureRecorder
	logos    *stubLogoStore

	auctionService *AuctionService
	teamService    *TeamService
	setService     *SetService
	playerService  *PlayerService
	statsService   *StatsService
	importService  *ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	auctions := memory.NewAuctionRepository(nil)
	teams := memory.NewTeamRepository(nil)
	sets := memory.NewSetRepository(nil)
	players := memory.NewPlayerRepository(nil)

	logger := logging.NewNop()
	ledger := NewBudgetLedger(teams, players, logger)
	activity := &captureRecorder{}
	logos := &stubLogoStore{}
	idGen := &seqIDGenerator{prefix: "id"}

	return &testEnv{
		auctions:       auctions,
		teams:          teams,
		sets:           sets,
		players:        players,
		ledger:         ledger,
		activity:       activity,
		logos:          logos,
		auctionService: NewAuctionService(auctions, teams, sets, players, ledger, idGen, logger),
		teamService:    NewTeamService(auctions, teams, players, ledger, logos, idGen, logger),
		setService:     NewSetService(auctions, sets, players, activity, idGen, logger),
		playerService:  NewPlayerService(auctions, teams, sets, players, ledger, activity, idGen, logger),
		statsService:   NewStatsService(auctions, teams, sets, players, nil, logger),
		importService:  NewImportService(auctions, sets, players, activity, nil, idGen, logger),
	}
}

const testOrganizer = "org-1"

func (env *testEnv) mustCreateAuction(t *testing.T, name string, budget int64) string {
	t.Helper()

	created, err := env.auctionService.CreateAuction(t.Context(), CreateAuctionInput{
		OrganizerID:   testOrganizer,
		Name:          name,
		Password:      "letmein",
		BudgetPerTeam: budget,
		MaxTeamMember: 15,
		MinTeamMember: 11,
	})
	if err != nil {
		t.Fatalf("create auction %q: %v", name, err)
	}

	return created.ID
}

func (env *testEnv) mustCreateTeam(t *testing.T, auctionID, name string) string {
	t.Helper()

	created, err := env.teamService.CreateTeam(t.Context(), CreateTeamInput{
		OrganizerID: testOrganizer,
		AuctionID:   auctionID,
		Name:        name,
		Owner:       name + " Owner",
	})
	if err != nil {
		t.Fatalf("create team %q: %v", name, err)
	}

	return created.ID
}

func (env *testEnv) mustCreateSet(t *testing.T, auctionID, name string, order int) string {
	t.Helper()

	created, err := env.setService.CreateSet(t.Context(), CreateSetInput{
		OrganizerID: testOrganizer,
		AuctionID:   auctionID,
		Name:        name,
		Order:       order,
	})
	if err != nil {
		t.Fatalf("create set %q: %v", name, err)
	}

	return created.ID
}

func (env *testEnv) mustCreatePlayer(t *testing.T, auctionID string, input PlayerInput) string {
	t.Helper()

	created, failures, err := env.playerService.CreatePlayers(t.Context(), testOrganizer, auctionID, []PlayerInput{input})
	if err != nil {
		t.Fatalf("create player %q: %v", input.Name, err)
	}
	if len(failures) != 0 {
		t.Fatalf("create player %q rejected: %s", input.Name, failures[0].Reason)
	}

	return created[0].ID
}
