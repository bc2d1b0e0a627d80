package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

// PlayerService is the disposition engine: it moves players between idle,
// sold and unsold, stamps sale ordering, and keeps the budget ledger in step.
type PlayerService struct {
	auctionRepo auction.Repository
	teamRepo    team.Repository
	setRepo     auctionset.Repository
	playerRepo  player.Repository
	ledger      *BudgetLedger
	activity    ActivityRecorder
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPlayerService(
	auctionRepo auction.Repository,
	teamRepo team.Repository,
	setRepo auctionset.Repository,
	playerRepo player.Repository,
	ledger *BudgetLedger,
	activity ActivityRecorder,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PlayerService {
	if activity == nil {
		activity = NopActivityRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		setRepo:     setRepo,
		playerRepo:  playerRepo,
		ledger:      ledger,
		activity:    activity,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

type PlayerInput struct {
	Name         string
	PlayerNumber int
	Role         string
	BattingStyle string
	BowlingStyle string
	Nationality  string
	SetID        string
	BasePrice    int64
	Marquee      bool
}

// ItemFailure reports one failed element of a batch operation.
type ItemFailure struct {
	Index  int
	ID     string
	Reason string
}

// CreatePlayers inserts a batch. Items fail independently; failures come back
// as a side list and never roll back earlier items.
func (s *PlayerService) CreatePlayers(ctx context.Context, organizerID, auctionID string, inputs []PlayerInput) ([]player.Player, []ItemFailure, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.CreatePlayers")
	defer span.End()

	owner, err := s.ownedAuction(ctx, organizerID, auctionID)
	if err != nil {
		return nil, nil, err
	}

	taken, err := s.playerRepo.ListNumbersByAuction(ctx, owner.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list player numbers: %w", err)
	}

	created := make([]player.Player, 0, len(inputs))
	var failures []ItemFailure
	for i, input := range inputs {
		item, err := s.buildPlayer(owner.ID, input, taken)
		if err != nil {
			failures = append(failures, ItemFailure{Index: i, Reason: err.Error()})
			continue
		}
		if err := s.playerRepo.Create(ctx, item); err != nil {
			failures = append(failures, ItemFailure{Index: i, ID: item.ID, Reason: err.Error()})
			continue
		}
		taken[item.PlayerNumber] = struct{}{}
		created = append(created, item)
	}

	return created, failures, nil
}

func (s *PlayerService) buildPlayer(auctionID string, input PlayerInput, taken map[int]struct{}) (player.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return player.Player{}, fmt.Errorf("player name is required")
	}
	if input.PlayerNumber <= 0 {
		return player.Player{}, fmt.Errorf("player number must be greater than zero")
	}
	if _, exists := taken[input.PlayerNumber]; exists {
		return player.Player{}, fmt.Errorf("player number %d already exists in this auction", input.PlayerNumber)
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	item := player.Player{
		ID:           playerID,
		AuctionID:    auctionID,
		Name:         input.Name,
		PlayerNumber: input.PlayerNumber,
		Role:         strings.TrimSpace(input.Role),
		BattingStyle: strings.TrimSpace(input.BattingStyle),
		BowlingStyle: strings.TrimSpace(input.BowlingStyle),
		Nationality:  strings.TrimSpace(input.Nationality),
		SetID:        input.SetID,
		Status:       player.StatusIdle,
		BasePrice:    input.BasePrice,
		Marquee:      input.Marquee,
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, err
	}

	return item, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context, auctionID string, filter player.Filter) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	players, err := s.playerRepo.ListByAuction(ctx, auctionID, filter)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	return players, nil
}

type PlayerPatch struct {
	PlayerID     string
	Name         *string
	Role         *string
	BattingStyle *string
	BowlingStyle *string
	Nationality  *string
	SetID        *string
	TeamID       *string
	BasePrice    *int64
	SoldPrice    *int64
	Marquee      *bool
}

// UpdatePlayers applies an ordered list of partial patches. Each patch commits
// independently; failures are collected, not fatal. Patches that touch team
// or sold price re-derive remaining budgets for every affected team through a
// full recompute rather than deltas, since an admin edit can change both
// sides at once.
func (s *PlayerService) UpdatePlayers(ctx context.Context, organizerID, auctionID string, patches []PlayerPatch) ([]player.Player, []ItemFailure, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.UpdatePlayers")
	defer span.End()

	owner, err := s.ownedAuction(ctx, organizerID, auctionID)
	if err != nil {
		return nil, nil, err
	}

	updated := make([]player.Player, 0, len(patches))
	var failures []ItemFailure
	dirtyTeams := make(map[string]struct{})

	for i, patch := range patches {
		item, affected, err := s.applyPatch(ctx, owner.ID, patch)
		if err != nil {
			failures = append(failures, ItemFailure{Index: i, ID: patch.PlayerID, Reason: err.Error()})
			continue
		}
		for teamID := range affected {
			dirtyTeams[teamID] = struct{}{}
		}
		updated = append(updated, item)
	}

	for teamID := range dirtyTeams {
		if err := s.ledger.Recompute(ctx, teamID); err != nil {
			s.logger.WarnContext(ctx, "ledger recompute after patch failed", "team_id", teamID, "error", err)
		}
	}

	return updated, failures, nil
}

func (s *PlayerService) applyPatch(ctx context.Context, auctionID string, patch PlayerPatch) (player.Player, map[string]struct{}, error) {
	if patch.PlayerID == "" {
		return player.Player{}, nil, fmt.Errorf("player id is required")
	}

	current, exists, err := s.playerRepo.GetByID(ctx, patch.PlayerID)
	if err != nil {
		return player.Player{}, nil, fmt.Errorf("get player: %w", err)
	}
	if !exists || current.AuctionID != auctionID {
		return player.Player{}, nil, fmt.Errorf("player %s not found in auction", patch.PlayerID)
	}

	affected := make(map[string]struct{})

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return player.Player{}, nil, fmt.Errorf("player name cannot be empty")
		}
		current.Name = name
	}
	if patch.Role != nil {
		current.Role = strings.TrimSpace(*patch.Role)
	}
	if patch.BattingStyle != nil {
		current.BattingStyle = strings.TrimSpace(*patch.BattingStyle)
	}
	if patch.BowlingStyle != nil {
		current.BowlingStyle = strings.TrimSpace(*patch.BowlingStyle)
	}
	if patch.Nationality != nil {
		current.Nationality = strings.TrimSpace(*patch.Nationality)
	}
	if patch.SetID != nil {
		if *patch.SetID != "" {
			set, exists, err := s.setRepo.GetByID(ctx, *patch.SetID)
			if err != nil {
				return player.Player{}, nil, fmt.Errorf("get set: %w", err)
			}
			if !exists || set.AuctionID != auctionID {
				return player.Player{}, nil, fmt.Errorf("set %s not found in auction", *patch.SetID)
			}
		}
		current.SetID = *patch.SetID
	}
	if patch.BasePrice != nil {
		current.BasePrice = *patch.BasePrice
	}
	if patch.Marquee != nil {
		current.Marquee = *patch.Marquee
	}

	if patch.TeamID != nil && *patch.TeamID != current.TeamID {
		if current.TeamID != "" {
			affected[current.TeamID] = struct{}{}
		}
		if *patch.TeamID != "" {
			assignee, exists, err := s.teamRepo.GetByID(ctx, *patch.TeamID)
			if err != nil {
				return player.Player{}, nil, fmt.Errorf("get team: %w", err)
			}
			if !exists || assignee.AuctionID != auctionID {
				return player.Player{}, nil, fmt.Errorf("team %s not found in auction", *patch.TeamID)
			}
			affected[*patch.TeamID] = struct{}{}
			current.TeamID = *patch.TeamID
			current.Status = player.StatusSold
		} else {
			current.TeamID = ""
			current.Status = player.StatusIdle
			current.SoldPrice = 0
		}
	}
	if patch.SoldPrice != nil && *patch.SoldPrice != current.SoldPrice {
		if current.TeamID == "" {
			return player.Player{}, nil, fmt.Errorf("sold price requires an assigned team")
		}
		current.SoldPrice = *patch.SoldPrice
		affected[current.TeamID] = struct{}{}
	}

	if err := current.Validate(); err != nil {
		return player.Player{}, nil, err
	}
	if err := s.playerRepo.Update(ctx, current); err != nil {
		return player.Player{}, nil, fmt.Errorf("update player: %w", err)
	}

	return current, affected, nil
}

// DeletePlayers removes players unconditionally. Sold players refund their
// team on the way out so the ledger invariant holds after the delete.
func (s *PlayerService) DeletePlayers(ctx context.Context, organizerID, auctionID string, playerIDs []string) ([]ItemFailure, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.DeletePlayers")
	defer span.End()

	owner, err := s.ownedAuction(ctx, organizerID, auctionID)
	if err != nil {
		return nil, err
	}

	var failures []ItemFailure
	for i, playerID := range playerIDs {
		current, exists, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			failures = append(failures, ItemFailure{Index: i, ID: playerID, Reason: err.Error()})
			continue
		}
		if !exists || current.AuctionID != owner.ID {
			failures = append(failures, ItemFailure{Index: i, ID: playerID, Reason: "player not found in auction"})
			continue
		}
		if err := s.playerRepo.Delete(ctx, playerID); err != nil {
			failures = append(failures, ItemFailure{Index: i, ID: playerID, Reason: err.Error()})
			continue
		}
		if current.Status == player.StatusSold && current.TeamID != "" && current.SoldPrice > 0 {
			if err := s.ledger.Adjust(ctx, current.TeamID, current.SoldPrice); err != nil {
				s.logger.WarnContext(ctx, "refund after player delete failed", "team_id", current.TeamID, "error", err)
			}
		}
	}

	return failures, nil
}

// RecordSale closes bidding on a player: sold to the team at the hammer
// price. The per-auction sold sequence gives sales a total order; the ledger
// moves by atomic deltas so concurrent sales to one team cannot lose an
// update.
func (s *PlayerService) RecordSale(ctx context.Context, organizerID, playerID, teamID string, soldPrice int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.RecordSale")
	defer span.End()

	if soldPrice < 0 {
		return player.Player{}, fmt.Errorf("%w: sold price cannot be negative", ErrInvalidInput)
	}

	current, err := s.ownedPlayer(ctx, organizerID, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if !player.CanTransition(current.Status, player.StatusSold) {
		return player.Player{}, fmt.Errorf("%w: player cannot move from %s to sold", ErrConflictingState, current.Status)
	}

	buyer, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get team: %w", err)
	}
	if !exists || buyer.AuctionID != current.AuctionID {
		return player.Player{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	prevTeamID := current.TeamID
	prevPrice := current.SoldPrice

	soldNumber, err := s.auctionRepo.NextSoldNumber(ctx, current.AuctionID)
	if err != nil {
		return player.Player{}, fmt.Errorf("advance sold sequence: %w", err)
	}

	current.Status = player.StatusSold
	current.TeamID = buyer.ID
	current.SoldPrice = soldPrice
	current.SoldNumber = soldNumber
	current.Bidding = append(current.Bidding, player.Bid{TeamID: buyer.ID, Price: soldPrice})

	if err := s.playerRepo.Update(ctx, current); err != nil {
		return player.Player{}, fmt.Errorf("record sale: %w", err)
	}

	// Refund a previous buyer before charging the new one; a re-sale of an
	// already sold player is a correction, not a second purchase.
	if prevTeamID != "" && prevPrice > 0 {
		if err := s.ledger.Adjust(ctx, prevTeamID, prevPrice); err != nil {
			return player.Player{}, err
		}
	}
	if err := s.ledger.Adjust(ctx, buyer.ID, -soldPrice); err != nil {
		return player.Player{}, err
	}

	s.activity.Record(ActivityEvent{
		AuctionID: current.AuctionID,
		Kind:      ActivitySaleRecorded,
		PlayerID:  current.ID,
		TeamID:    buyer.ID,
		Price:     soldPrice,
		At:        s.now(),
	})

	return current, nil
}

// RecordUnsold marks a player as passed over. The sequence is stamped here
// too so "what just happened" views order unsold calls alongside sales.
func (s *PlayerService) RecordUnsold(ctx context.Context, organizerID, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.RecordUnsold")
	defer span.End()

	current, err := s.ownedPlayer(ctx, organizerID, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if !player.CanTransition(current.Status, player.StatusUnsold) {
		return player.Player{}, fmt.Errorf("%w: player cannot move from %s to unsold", ErrConflictingState, current.Status)
	}

	prevTeamID := current.TeamID
	prevPrice := current.SoldPrice

	soldNumber, err := s.auctionRepo.NextSoldNumber(ctx, current.AuctionID)
	if err != nil {
		return player.Player{}, fmt.Errorf("advance sold sequence: %w", err)
	}

	current.Status = player.StatusUnsold
	current.TeamID = ""
	current.SoldPrice = 0
	current.SoldNumber = soldNumber

	if err := s.playerRepo.Update(ctx, current); err != nil {
		return player.Player{}, fmt.Errorf("record unsold: %w", err)
	}

	if prevTeamID != "" && prevPrice > 0 {
		if err := s.ledger.Adjust(ctx, prevTeamID, prevPrice); err != nil {
			return player.Player{}, err
		}
	}

	s.activity.Record(ActivityEvent{
		AuctionID: current.AuctionID,
		Kind:      ActivityUnsoldRecorded,
		PlayerID:  current.ID,
		At:        s.now(),
	})

	return current, nil
}

// UndoSale reverses a sale (or an unsold call) back to idle, refunding the
// previous buyer.
func (s *PlayerService) UndoSale(ctx context.Context, organizerID, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.UndoSale")
	defer span.End()

	current, err := s.ownedPlayer(ctx, organizerID, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if !player.CanTransition(current.Status, player.StatusIdle) {
		return player.Player{}, fmt.Errorf("%w: player cannot move from %s to idle", ErrConflictingState, current.Status)
	}

	// The previous team must be captured before the row is cleared; it is
	// the refund target.
	prevTeamID := current.TeamID
	prevPrice := current.SoldPrice

	current.Status = player.StatusIdle
	current.TeamID = ""
	current.SoldPrice = 0
	current.SoldNumber = 0

	if err := s.playerRepo.Update(ctx, current); err != nil {
		return player.Player{}, fmt.Errorf("undo sale: %w", err)
	}

	if prevTeamID != "" && prevPrice > 0 {
		if err := s.ledger.Adjust(ctx, prevTeamID, prevPrice); err != nil {
			return player.Player{}, err
		}
	}

	s.activity.Record(ActivityEvent{
		AuctionID: current.AuctionID,
		Kind:      ActivitySaleUndone,
		PlayerID:  current.ID,
		TeamID:    prevTeamID,
		Price:     prevPrice,
		At:        s.now(),
	})

	return current, nil
}

func (s *PlayerService) ownedAuction(ctx context.Context, organizerID, auctionID string) (auction.Auction, error) {
	if organizerID == "" {
		return auction.Auction{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if auctionID == "" {
		return auction.Auction{}, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	owner, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return auction.Auction{}, fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}
	if owner.OrganizerID != organizerID {
		return auction.Auction{}, fmt.Errorf("%w: auction belongs to another organizer", ErrForbidden)
	}

	return owner, nil
}

func (s *PlayerService) ownedPlayer(ctx context.Context, organizerID, playerID string) (player.Player, error) {
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	current, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	if _, err := s.ownedAuction(ctx, organizerID, current.AuctionID); err != nil {
		return player.Player{}, err
	}

	return current, nil
}
