package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

type AuctionService struct {
	auctionRepo auction.Repository
	teamRepo    team.Repository
	setRepo     auctionset.Repository
	playerRepo  player.Repository
	ledger      *BudgetLedger
	idGen       idgen.Generator
	logger      *logging.Logger
}

func NewAuctionService(
	auctionRepo auction.Repository,
	teamRepo team.Repository,
	setRepo auctionset.Repository,
	playerRepo player.Repository,
	ledger *BudgetLedger,
	idGen idgen.Generator,
	logger *logging.Logger,
) *AuctionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AuctionService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		setRepo:     setRepo,
		playerRepo:  playerRepo,
		ledger:      ledger,
		idGen:       idGen,
		logger:      logger,
	}
}

type CreateAuctionInput struct {
	OrganizerID            string
	Name                   string
	Password               string
	BudgetPerTeam          int64
	MaxTeamMember          int
	MinTeamMember          int
	LiveEnabled            bool
	ViewerAnalyticsEnabled bool
}

func (s *AuctionService) CreateAuction(ctx context.Context, input CreateAuctionInput) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.CreateAuction")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.OrganizerID == "" {
		return auction.Auction{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return auction.Auction{}, fmt.Errorf("%w: auction name is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return auction.Auction{}, fmt.Errorf("%w: auction password is required", ErrInvalidInput)
	}
	if input.BudgetPerTeam < 0 {
		return auction.Auction{}, fmt.Errorf("%w: budget per team cannot be negative", ErrInvalidInput)
	}

	_, exists, err := s.auctionRepo.GetByOrganizerAndName(ctx, input.OrganizerID, input.Name)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("check auction name: %w", err)
	}
	if exists {
		return auction.Auction{}, fmt.Errorf("%w: auction %q already exists for this organizer", ErrDuplicateName, input.Name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("hash auction password: %w", err)
	}

	auctionID, err := s.idGen.NewID()
	if err != nil {
		return auction.Auction{}, fmt.Errorf("generate auction id: %w", err)
	}

	item := auction.Auction{
		ID:                     auctionID,
		OrganizerID:            input.OrganizerID,
		Name:                   input.Name,
		PasswordHash:           string(hash),
		State:                  auction.StateSetup,
		BudgetPerTeam:          input.BudgetPerTeam,
		MaxTeamMember:          input.MaxTeamMember,
		MinTeamMember:          input.MinTeamMember,
		LiveEnabled:            input.LiveEnabled,
		ViewerAnalyticsEnabled: input.ViewerAnalyticsEnabled,
	}
	if err := item.Validate(); err != nil {
		return auction.Auction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.auctionRepo.Create(ctx, item); err != nil {
		return auction.Auction{}, fmt.Errorf("create auction: %w", err)
	}

	s.logger.InfoContext(ctx, "auction created", "auction_id", item.ID, "organizer_id", input.OrganizerID)

	return item, nil
}

func (s *AuctionService) GetAuction(ctx context.Context, organizerID, auctionID string) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.GetAuction")
	defer span.End()

	return s.ownedAuction(ctx, organizerID, auctionID)
}

func (s *AuctionService) ListAuctions(ctx context.Context, organizerID string) ([]auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.ListAuctions")
	defer span.End()

	if organizerID == "" {
		return nil, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}

	items, err := s.auctionRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	return items, nil
}

// AuctionPatch carries optional auction setting updates. Nil fields are left
// untouched.
type AuctionPatch struct {
	Name                   *string
	Password               *string
	State                  *auction.State
	BudgetPerTeam          *int64
	MaxTeamMember          *int
	MinTeamMember          *int
	LiveEnabled            *bool
	ViewerAnalyticsEnabled *bool
}

func (s *AuctionService) UpdateAuction(ctx context.Context, organizerID, auctionID string, patch AuctionPatch) (auction.Auction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.UpdateAuction")
	defer span.End()

	current, err := s.ownedAuction(ctx, organizerID, auctionID)
	if err != nil {
		return auction.Auction{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return auction.Auction{}, fmt.Errorf("%w: auction name cannot be empty", ErrInvalidInput)
		}
		if name != current.Name {
			_, exists, err := s.auctionRepo.GetByOrganizerAndName(ctx, organizerID, name)
			if err != nil {
				return auction.Auction{}, fmt.Errorf("check auction name: %w", err)
			}
			if exists {
				return auction.Auction{}, fmt.Errorf("%w: auction %q already exists for this organizer", ErrDuplicateName, name)
			}
			current.Name = name
		}
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return auction.Auction{}, fmt.Errorf("hash auction password: %w", err)
		}
		current.PasswordHash = string(hash)
	}
	if patch.State != nil && *patch.State != current.State {
		if !auction.CanTransition(current.State, *patch.State) {
			return auction.Auction{}, fmt.Errorf("%w: auction cannot move from %s to %s", ErrConflictingState, current.State, *patch.State)
		}
		current.State = *patch.State
	}
	if patch.MaxTeamMember != nil {
		current.MaxTeamMember = *patch.MaxTeamMember
	}
	if patch.MinTeamMember != nil {
		current.MinTeamMember = *patch.MinTeamMember
	}
	if patch.LiveEnabled != nil {
		current.LiveEnabled = *patch.LiveEnabled
	}
	if patch.ViewerAnalyticsEnabled != nil {
		current.ViewerAnalyticsEnabled = *patch.ViewerAnalyticsEnabled
	}

	budgetChanged := patch.BudgetPerTeam != nil && *patch.BudgetPerTeam != current.BudgetPerTeam
	if budgetChanged {
		if *patch.BudgetPerTeam < 0 {
			return auction.Auction{}, fmt.Errorf("%w: budget per team cannot be negative", ErrInvalidInput)
		}
		current.BudgetPerTeam = *patch.BudgetPerTeam
	}

	if err := current.Validate(); err != nil {
		return auction.Auction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.auctionRepo.Update(ctx, current); err != nil {
		return auction.Auction{}, fmt.Errorf("update auction: %w", err)
	}

	// A budget ceiling change cascades to every team, preserving each team's
	// spend-to-date.
	if budgetChanged {
		if err := s.ledger.Rebaseline(ctx, current.ID, current.BudgetPerTeam); err != nil {
			return auction.Auction{}, err
		}
	}

	return current, nil
}

// DeleteAuction hard-deletes the auction and every child entity. Children go
// first so a failed cascade never leaves orphans pointing at a missing
// auction.
func (s *AuctionService) DeleteAuction(ctx context.Context, organizerID, auctionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.DeleteAuction")
	defer span.End()

	current, err := s.ownedAuction(ctx, organizerID, auctionID)
	if err != nil {
		return err
	}

	if err := s.playerRepo.DeleteByAuction(ctx, current.ID); err != nil {
		return fmt.Errorf("delete auction players: %w", err)
	}
	if err := s.teamRepo.DeleteByAuction(ctx, current.ID); err != nil {
		return fmt.Errorf("delete auction teams: %w", err)
	}
	if err := s.setRepo.DeleteByAuction(ctx, current.ID); err != nil {
		return fmt.Errorf("delete auction sets: %w", err)
	}
	if err := s.auctionRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}

	s.logger.InfoContext(ctx, "auction deleted", "auction_id", current.ID)

	return nil
}

// VerifyAccess checks a viewer-supplied password for live-view entry.
func (s *AuctionService) VerifyAccess(ctx context.Context, auctionID, password string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuctionService.VerifyAccess")
	defer span.End()

	current, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("%w: wrong auction password", ErrUnauthorized)
	}

	return nil
}

func (s *AuctionService) ownedAuction(ctx context.Context, organizerID, auctionID string) (auction.Auction, error) {
	if organizerID == "" {
		return auction.Auction{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if auctionID == "" {
		return auction.Auction{}, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	current, exists, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	if !exists {
		return auction.Auction{}, fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
	}
	if current.OrganizerID != organizerID {
		return auction.Auction{}, fmt.Errorf("%w: auction belongs to another organizer", ErrForbidden)
	}

	return current, nil
}
