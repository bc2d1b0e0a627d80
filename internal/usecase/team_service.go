package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

// LogoStore persists team and auction logos. Failures here must never
// corrupt entity state; callers treat the store as best-effort.
type LogoStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}

type TeamService struct {
	auctionRepo auction.Repository
	teamRepo    team.Repository
	playerRepo  player.Repository
	ledger      *BudgetLedger
	logos       LogoStore
	idGen       idgen.Generator
	logger      *logging.Logger
}

func NewTeamService(
	auctionRepo auction.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	ledger *BudgetLedger,
	logos LogoStore,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		ledger:      ledger,
		logos:       logos,
		idGen:       idGen,
		logger:      logger,
	}
}

type CreateTeamInput struct {
	OrganizerID string
	AuctionID   string
	Name        string
	Owner       string
}

func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.CreateTeam")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	owner, err := s.ownedAuction(ctx, input.OrganizerID, input.AuctionID)
	if err != nil {
		return team.Team{}, err
	}

	_, exists, err := s.teamRepo.GetByAuctionAndName(ctx, owner.ID, input.Name)
	if err != nil {
		return team.Team{}, fmt.Errorf("check team name: %w", err)
	}
	if exists {
		return team.Team{}, fmt.Errorf("%w: team %q already exists in this auction", ErrDuplicateName, input.Name)
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	item := team.Team{
		ID:        teamID,
		AuctionID: owner.ID,
		Name:      input.Name,
		Owner:     strings.TrimSpace(input.Owner),
		// Budget is copied from the auction ceiling at creation; nothing is
		// spent yet so the remaining budget starts equal.
		Budget:          owner.BudgetPerTeam,
		RemainingBudget: owner.BudgetPerTeam,
	}
	if err := item.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teamRepo.Create(ctx, item); err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	return item, nil
}

func (s *TeamService) ListTeams(ctx context.Context, auctionID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeams")
	defer span.End()

	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	return teams, nil
}

type TeamPatch struct {
	Name   *string
	Owner  *string
	Budget *int64
}

func (s *TeamService) UpdateTeam(ctx context.Context, organizerID, teamID string, patch TeamPatch) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.UpdateTeam")
	defer span.End()

	current, err := s.ownedTeam(ctx, organizerID, teamID)
	if err != nil {
		return team.Team{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return team.Team{}, fmt.Errorf("%w: team name cannot be empty", ErrInvalidInput)
		}
		if name != current.Name {
			_, exists, err := s.teamRepo.GetByAuctionAndName(ctx, current.AuctionID, name)
			if err != nil {
				return team.Team{}, fmt.Errorf("check team name: %w", err)
			}
			if exists {
				return team.Team{}, fmt.Errorf("%w: team %q already exists in this auction", ErrDuplicateName, name)
			}
			current.Name = name
		}
	}
	if patch.Owner != nil {
		current.Owner = strings.TrimSpace(*patch.Owner)
	}

	budgetChanged := patch.Budget != nil && *patch.Budget != current.Budget
	if budgetChanged {
		if *patch.Budget < 0 {
			return team.Team{}, fmt.Errorf("%w: team budget cannot be negative", ErrInvalidInput)
		}
		current.Budget = *patch.Budget
	}

	if err := current.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teamRepo.Update(ctx, current); err != nil {
		return team.Team{}, fmt.Errorf("update team: %w", err)
	}

	// Any direct budget write re-derives the remaining budget from players.
	if budgetChanged {
		if err := s.ledger.Recompute(ctx, current.ID); err != nil {
			return team.Team{}, err
		}
		refreshed, exists, err := s.teamRepo.GetByID(ctx, current.ID)
		if err == nil && exists {
			current = refreshed
		}
	}

	return current, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, organizerID, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.DeleteTeam")
	defer span.End()

	current, err := s.ownedTeam(ctx, organizerID, teamID)
	if err != nil {
		return err
	}

	assigned, err := s.playerRepo.CountByTeam(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("count team players: %w", err)
	}
	if assigned > 0 {
		return fmt.Errorf("%w: team has %d assigned players", ErrHasDependents, assigned)
	}

	if err := s.teamRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}

	return nil
}

// UploadLogo stores the logo blob and records its URL. A blob-store failure
// leaves the team untouched.
func (s *TeamService) UploadLogo(ctx context.Context, organizerID, teamID string, data []byte, contentType string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.UploadLogo")
	defer span.End()

	current, err := s.ownedTeam(ctx, organizerID, teamID)
	if err != nil {
		return team.Team{}, err
	}
	if len(data) == 0 {
		return team.Team{}, fmt.Errorf("%w: logo payload is empty", ErrInvalidInput)
	}
	if s.logos == nil {
		return team.Team{}, fmt.Errorf("%w: logo store is not configured", ErrDependencyUnavailable)
	}

	key := fmt.Sprintf("auctions/%s/teams/%s/logo", current.AuctionID, current.ID)
	url, err := s.logos.Put(ctx, key, data, contentType)
	if err != nil {
		s.logger.WarnContext(ctx, "logo upload failed", "team_id", current.ID, "error", err)
		return team.Team{}, fmt.Errorf("%w: store logo: %v", ErrDependencyUnavailable, err)
	}

	current.LogoURL = url
	if err := s.teamRepo.Update(ctx, current); err != nil {
		return team.Team{}, fmt.Errorf("update team logo url: %w", err)
	}

	return current, nil
}

func (s *TeamService) ownedAuction(ctx context.Context, organizerID, auctionID string) (auction.Auction, error) {
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

func (s *TeamService) ownedTeam(ctx context.Context, organizerID, teamID string) (team.Team, error) {
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	current, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	if _, err := s.ownedAuction(ctx, organizerID, current.AuctionID); err != nil {
		return team.Team{}, err
	}

	return current, nil
}
