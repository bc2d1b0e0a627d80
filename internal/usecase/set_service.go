package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	idgen "github.com/auctionarena/auction-arena/internal/platform/id"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

type SetService struct {
	auctionRepo auction.Repository
	setRepo     auctionset.Repository
	playerRepo  player.Repository
	activity    ActivityRecorder
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewSetService(
	auctionRepo auction.Repository,
	setRepo auctionset.Repository,
	playerRepo player.Repository,
	activity ActivityRecorder,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SetService {
	if activity == nil {
		activity = NopActivityRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SetService{
		auctionRepo: auctionRepo,
		setRepo:     setRepo,
		playerRepo:  playerRepo,
		activity:    activity,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

type CreateSetInput struct {
	OrganizerID string
	AuctionID   string
	Name        string
	Order       int
}

func (s *SetService) CreateSet(ctx context.Context, input CreateSetInput) (auctionset.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.CreateSet")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return auctionset.Set{}, fmt.Errorf("%w: set name is required", ErrInvalidInput)
	}
	if strings.EqualFold(input.Name, auctionset.UnsoldSetName) {
		return auctionset.Set{}, fmt.Errorf("%w: set name %q is reserved", ErrInvalidInput, auctionset.UnsoldSetName)
	}

	owner, err := s.ownedAuction(ctx, input.OrganizerID, input.AuctionID)
	if err != nil {
		return auctionset.Set{}, err
	}

	_, exists, err := s.setRepo.GetByAuctionAndName(ctx, owner.ID, input.Name)
	if err != nil {
		return auctionset.Set{}, fmt.Errorf("check set name: %w", err)
	}
	if exists {
		return auctionset.Set{}, fmt.Errorf("%w: set %q already exists in this auction", ErrDuplicateName, input.Name)
	}

	setID, err := s.idGen.NewID()
	if err != nil {
		return auctionset.Set{}, fmt.Errorf("generate set id: %w", err)
	}

	item := auctionset.Set{
		ID:        setID,
		AuctionID: owner.ID,
		Name:      input.Name,
		Order:     input.Order,
		State:     auctionset.StateIdle,
	}
	if err := item.Validate(); err != nil {
		return auctionset.Set{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.setRepo.Create(ctx, item); err != nil {
		return auctionset.Set{}, fmt.Errorf("create set: %w", err)
	}

	return item, nil
}

func (s *SetService) ListSets(ctx context.Context, auctionID string) ([]auctionset.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.ListSets")
	defer span.End()

	if auctionID == "" {
		return nil, fmt.Errorf("%w: auction id is required", ErrInvalidInput)
	}

	sets, err := s.setRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	return sets, nil
}

type SetPatch struct {
	Name  *string
	Order *int
}

func (s *SetService) UpdateSet(ctx context.Context, organizerID, setID string, patch SetPatch) (auctionset.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.UpdateSet")
	defer span.End()

	current, err := s.ownedSet(ctx, organizerID, setID)
	if err != nil {
		return auctionset.Set{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return auctionset.Set{}, fmt.Errorf("%w: set name cannot be empty", ErrInvalidInput)
		}
		if strings.EqualFold(name, auctionset.UnsoldSetName) && !strings.EqualFold(current.Name, auctionset.UnsoldSetName) {
			return auctionset.Set{}, fmt.Errorf("%w: set name %q is reserved", ErrInvalidInput, auctionset.UnsoldSetName)
		}
		if name != current.Name {
			_, exists, err := s.setRepo.GetByAuctionAndName(ctx, current.AuctionID, name)
			if err != nil {
				return auctionset.Set{}, fmt.Errorf("check set name: %w", err)
			}
			if exists {
				return auctionset.Set{}, fmt.Errorf("%w: set %q already exists in this auction", ErrDuplicateName, name)
			}
			current.Name = name
		}
	}
	if patch.Order != nil {
		current.Order = *patch.Order
	}

	if err := current.Validate(); err != nil {
		return auctionset.Set{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.setRepo.Update(ctx, current); err != nil {
		return auctionset.Set{}, fmt.Errorf("update set: %w", err)
	}

	return current, nil
}

func (s *SetService) DeleteSet(ctx context.Context, organizerID, setID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.DeleteSet")
	defer span.End()

	current, err := s.ownedSet(ctx, organizerID, setID)
	if err != nil {
		return err
	}

	assigned, err := s.playerRepo.CountBySet(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("count set players: %w", err)
	}
	if assigned > 0 {
		return fmt.Errorf("%w: set has %d assigned players", ErrHasDependents, assigned)
	}

	if err := s.setRepo.Delete(ctx, current.ID); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	return nil
}

// StartSet promotes the target set to running. Every other running set of the
// auction is demoted to idle first; the demotion write completes before the
// promotion is issued so readers cannot settle on two running sets.
func (s *SetService) StartSet(ctx context.Context, organizerID, setID string) (auctionset.Set, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.StartSet")
	defer span.End()

	current, err := s.ownedSet(ctx, organizerID, setID)
	if err != nil {
		return auctionset.Set{}, err
	}
	if !auctionset.CanTransition(current.State, auctionset.StateRunning) {
		return auctionset.Set{}, fmt.Errorf("%w: set cannot move from %s to running", ErrConflictingState, current.State)
	}

	if err := s.setRepo.DemoteRunning(ctx, current.AuctionID, current.ID); err != nil {
		return auctionset.Set{}, fmt.Errorf("demote running sets: %w", err)
	}

	current.State = auctionset.StateRunning
	if err := s.setRepo.Update(ctx, current); err != nil {
		return auctionset.Set{}, fmt.Errorf("promote set: %w", err)
	}

	s.activity.Record(ActivityEvent{
		AuctionID: current.AuctionID,
		Kind:      ActivitySetStarted,
		SetID:     current.ID,
		At:        s.now(),
	})

	return current, nil
}

// CompleteSetResult reports what the unsold reconciliation did, if anything.
type CompleteSetResult struct {
	Set              auctionset.Set
	UnsoldSetCreated bool
	MovedPlayers     int
}

// CompleteSet marks the set completed. When every other set of the auction is
// completed and no "unsold" set exists yet, a reconciliation set is created
// and every unsold player is moved into it with status reset to idle. The
// unique set name guards the reconciliation against running twice.
func (s *SetService) CompleteSet(ctx context.Context, organizerID, setID string) (CompleteSetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SetService.CompleteSet")
	defer span.End()

	current, err := s.ownedSet(ctx, organizerID, setID)
	if err != nil {
		return CompleteSetResult{}, err
	}
	if !auctionset.CanTransition(current.State, auctionset.StateCompleted) {
		return CompleteSetResult{}, fmt.Errorf("%w: set cannot move from %s to completed", ErrConflictingState, current.State)
	}

	current.State = auctionset.StateCompleted
	if err := s.setRepo.Update(ctx, current); err != nil {
		return CompleteSetResult{}, fmt.Errorf("complete set: %w", err)
	}

	result := CompleteSetResult{Set: current}

	sets, err := s.setRepo.ListByAuction(ctx, current.AuctionID)
	if err != nil {
		return CompleteSetResult{}, fmt.Errorf("list sets for reconciliation: %w", err)
	}

	allCompleted := true
	maxOrder := 0
	for _, item := range sets {
		if item.Order > maxOrder {
			maxOrder = item.Order
		}
		// The reconciliation set itself never blocks completion.
		if strings.EqualFold(item.Name, auctionset.UnsoldSetName) {
			if item.ID != current.ID {
				// Reconciliation already ran for this auction.
				s.publishCompleted(current)
				return result, nil
			}
			continue
		}
		if item.State != auctionset.StateCompleted {
			allCompleted = false
		}
	}
	if !allCompleted {
		s.publishCompleted(current)
		return result, nil
	}

	unsoldID, err := s.idGen.NewID()
	if err != nil {
		return CompleteSetResult{}, fmt.Errorf("generate unsold set id: %w", err)
	}
	unsoldSet := auctionset.Set{
		ID:        unsoldID,
		AuctionID: current.AuctionID,
		Name:      auctionset.UnsoldSetName,
		Order:     maxOrder + 1,
		State:     auctionset.StateIdle,
	}
	if err := s.setRepo.Create(ctx, unsoldSet); err != nil {
		// A concurrent completion may have created it first; the unique name
		// makes this safe to treat as already-reconciled.
		s.logger.WarnContext(ctx, "unsold set creation skipped", "auction_id", current.AuctionID, "error", err)
		s.publishCompleted(current)
		return result, nil
	}

	moved, err := s.playerRepo.MoveUnsoldToSet(ctx, current.AuctionID, unsoldID)
	if err != nil {
		return CompleteSetResult{}, fmt.Errorf("move unsold players: %w", err)
	}

	s.logger.InfoContext(ctx, "unsold reconciliation completed",
		"auction_id", current.AuctionID,
		"unsold_set_id", unsoldID,
		"moved_players", moved,
	)

	result.UnsoldSetCreated = true
	result.MovedPlayers = moved
	s.publishCompleted(current)

	return result, nil
}

func (s *SetService) publishCompleted(item auctionset.Set) {
	s.activity.Record(ActivityEvent{
		AuctionID: item.AuctionID,
		Kind:      ActivitySetCompleted,
		SetID:     item.ID,
		At:        s.now(),
	})
}

func (s *SetService) ownedAuction(ctx context.Context, organizerID, auctionID string) (auction.Auction, error) {
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

func (s *SetService) ownedSet(ctx context.Context, organizerID, setID string) (auctionset.Set, error) {
	if setID == "" {
		return auctionset.Set{}, fmt.Errorf("%w: set id is required", ErrInvalidInput)
	}

	current, exists, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		return auctionset.Set{}, fmt.Errorf("get set: %w", err)
	}
	if !exists {
		return auctionset.Set{}, fmt.Errorf("%w: set=%s", ErrNotFound, setID)
	}
	if _, err := s.ownedAuction(ctx, organizerID, current.AuctionID); err != nil {
		return auctionset.Set{}, err
	}

	return current, nil
}
