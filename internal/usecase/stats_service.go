package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	"github.com/auctionarena/auction-arena/internal/platform/cache"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

const defaultRecentSoldLimit = 10

// StatsService assembles read models for dashboards, live views and
// summaries. Every method is a pure read.
type StatsService struct {
	auctionRepo auction.Repository
	teamRepo    team.Repository
	setRepo     auctionset.Repository
	playerRepo  player.Repository
	// readCache holds viewer-facing projections for a short TTL; it may be
	// nil when caching is disabled. TTLs are short enough that mutation
	// paths do not need to invalidate.
	readCache *cache.Store
	logger    *logging.Logger
}

func NewStatsService(
	auctionRepo auction.Repository,
	teamRepo team.Repository,
	setRepo auctionset.Repository,
	playerRepo player.Repository,
	readCache *cache.Store,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StatsService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		setRepo:     setRepo,
		playerRepo:  playerRepo,
		readCache:   readCache,
		logger:      logger,
	}
}

// Snapshot is the consistent read model for dashboards and live views.
type Snapshot struct {
	Auction   auction.Auction
	Teams     []team.Team
	Players   []player.Player
	Sets      []auctionset.Set
	LastMoved *player.Player
}

// GetSnapshot loads the auction with all child collections and the most
// recently moved (sold or unsold) player. An auction with no children yields
// empty slices, not errors.
func (s *StatsService) GetSnapshot(ctx context.Context, auctionID string) (Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetSnapshot")
	defer span.End()

	if auctionID == "" {
		return Snapshot{}, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	if s.readCache != nil {
		value, err := s.readCache.GetOrLoad(ctx, "snapshot:"+auctionID, func(ctx context.Context) (any, error) {
			return s.loadSnapshot(ctx, auctionID)
		})
		if err != nil {
			return Snapshot{}, err
		}
		snapshot, ok := value.(Snapshot)
		if !ok {
			return Snapshot{}, fmt.Errorf("unexpected snapshot cache entry type %T", value)
		}
		return snapshot, nil
	}

	return s.loadSnapshot(ctx, auctionID)
}

func (s *StatsService) loadSnapshot(ctx context.Context, auctionID string) (Snapshot, error) {
	current, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return Snapshot{}, fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}
	// The snapshot leaves the process; the hash never does.
	current.PasswordHash = ""

	snapshot := Snapshot{Auction: current}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		teams, err := s.teamRepo.ListByAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		snapshot.Teams = teams
		return nil
	})
	p.Go(func(ctx context.Context) error {
		players, err := s.playerRepo.ListByAuction(ctx, auctionID, player.Filter{})
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		snapshot.Players = players
		return nil
	})
	p.Go(func(ctx context.Context) error {
		sets, err := s.setRepo.ListByAuction(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("list sets: %w", err)
		}
		snapshot.Sets = sets
		return nil
	})
	if err := p.Wait(); err != nil {
		return Snapshot{}, err
	}

	if snapshot.Teams == nil {
		snapshot.Teams = []team.Team{}
	}
	if snapshot.Players == nil {
		snapshot.Players = []player.Player{}
	}
	if snapshot.Sets == nil {
		snapshot.Sets = []auctionset.Set{}
	}

	snapshot.LastMoved = lastMovedPlayer(snapshot.Players)

	return snapshot, nil
}

// lastMovedPlayer picks the sold/unsold player with the greatest sold
// sequence number.
func lastMovedPlayer(players []player.Player) *player.Player {
	var last *player.Player
	for i := range players {
		item := &players[i]
		if item.Status != player.StatusSold && item.Status != player.StatusUnsold {
			continue
		}
		if last == nil || item.SoldNumber > last.SoldNumber {
			last = item
		}
	}
	if last == nil {
		return nil
	}
	copied := *last
	return &copied
}

// LeaderboardEntry ranks one team by its total spend.
type LeaderboardEntry struct {
	Team        team.Team
	PlayerCount int
	TotalSpent  int64
}

// GetLeaderboard ranks teams by total sold price, recomputed from players so
// ledger drift can never leak into rankings. Ties keep team creation order.
func (s *StatsService) GetLeaderboard(ctx context.Context, auctionID string) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetLeaderboard")
	defer span.End()

	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	players, err := s.playerRepo.ListByAuction(ctx, auctionID, player.Filter{Status: player.StatusSold})
	if err != nil {
		return nil, fmt.Errorf("list sold players: %w", err)
	}

	spentByTeam := make(map[string]int64, len(teams))
	countByTeam := make(map[string]int, len(teams))
	for _, item := range players {
		spentByTeam[item.TeamID] += item.SoldPrice
		countByTeam[item.TeamID]++
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, item := range teams {
		entries = append(entries, LeaderboardEntry{
			Team:        item,
			PlayerCount: countByTeam[item.ID],
			TotalSpent:  spentByTeam[item.ID],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalSpent > entries[j].TotalSpent
	})

	return entries, nil
}

// Summary aggregates auction-wide counts for the organizer dashboard.
type Summary struct {
	TeamCount      int
	TotalBudget    int64
	TotalSpent     int64
	PlayerCount    int
	SoldPlayers    int
	UnsoldPlayers  int
	PendingPlayers int
	SetCount       int
	SetsByState    map[auctionset.State]int
}

// GetSummary is organizer-only; the ownership check runs before any
// aggregation.
func (s *StatsService) GetSummary(ctx context.Context, organizerID, auctionID string) (Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetSummary")
	defer span.End()

	if organizerID == "" {
		return Summary{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if auctionID == "" {
		return Summary{}, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	current, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return Summary{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return Summary{}, fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}
	if current.OrganizerID != organizerID {
		return Summary{}, fmt.Errorf("%w: auction belongs to another organizer", ErrForbidden)
	}

	teams, err := s.teamRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return Summary{}, fmt.Errorf("list teams: %w", err)
	}
	players, err := s.playerRepo.ListByAuction(ctx, auctionID, player.Filter{})
	if err != nil {
		return Summary{}, fmt.Errorf("list players: %w", err)
	}
	sets, err := s.setRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return Summary{}, fmt.Errorf("list sets: %w", err)
	}

	summary := Summary{
		TeamCount:   len(teams),
		PlayerCount: len(players),
		SetCount:    len(sets),
		SetsByState: make(map[auctionset.State]int, len(auctionset.AllStates)),
	}
	for _, item := range teams {
		summary.TotalBudget += item.Budget
		summary.TotalSpent += item.Budget - item.RemainingBudget
	}
	for _, item := range players {
		switch item.Status {
		case player.StatusSold:
			summary.SoldPlayers++
		case player.StatusUnsold:
			summary.UnsoldPlayers++
		default:
			summary.PendingPlayers++
		}
	}
	for _, item := range sets {
		summary.SetsByState[item.State]++
	}

	return summary, nil
}

// GetRecentSold lists sold players ordered by the sold sequence, newest
// first.
func (s *StatsService) GetRecentSold(ctx context.Context, auctionID string, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetRecentSold")
	defer span.End()

	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultRecentSoldLimit
	}

	players, err := s.playerRepo.ListByAuction(ctx, auctionID, player.Filter{Status: player.StatusSold})
	if err != nil {
		return nil, fmt.Errorf("list sold players: %w", err)
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].SoldNumber > players[j].SoldNumber
	})
	if len(players) > limit {
		players = players[:limit]
	}

	return players, nil
}
