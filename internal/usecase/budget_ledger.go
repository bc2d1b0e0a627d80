package usecase

import (
	"context"
	"fmt"

	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
)

// BudgetLedger keeps each team's remaining budget consistent with the sold
// prices of its players. Hot paths (sale, undo) use atomic deltas at the
// store; Recompute re-derives the value from scratch and is used by budget
// edits and re-baselines.
type BudgetLedger struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewBudgetLedger(teamRepo team.Repository, playerRepo player.Repository, logger *logging.Logger) *BudgetLedger {
	if logger == nil {
		logger = logging.Default()
	}

	return &BudgetLedger{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

// Adjust applies an atomic delta to the team's remaining budget. A sale of
// price P passes -P; a refund passes +P.
func (l *BudgetLedger) Adjust(ctx context.Context, teamID string, delta int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BudgetLedger.Adjust")
	defer span.End()

	if delta == 0 {
		return nil
	}
	if err := l.teamRepo.AdjustRemainingBudget(ctx, teamID, delta); err != nil {
		return fmt.Errorf("adjust remaining budget: %w", err)
	}

	return nil
}

// Recompute reads every player assigned to the team, sums sold prices and
// overwrites remaining_budget = budget - spent. A team that no longer exists
// is a logged no-op: deletion races against in-flight sales are tolerated.
func (l *BudgetLedger) Recompute(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BudgetLedger.Recompute")
	defer span.End()

	current, exists, err := l.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team for recompute: %w", err)
	}
	if !exists {
		l.logger.WarnContext(ctx, "budget recompute skipped, team missing", "team_id", teamID)
		return nil
	}

	spent, err := l.spentByTeam(ctx, current.AuctionID, teamID)
	if err != nil {
		return err
	}

	updated, err := l.teamRepo.SetBudgets(ctx, teamID, current.Budget, current.Budget-spent)
	if err != nil {
		return fmt.Errorf("write recomputed budget: %w", err)
	}
	if !updated {
		l.logger.WarnContext(ctx, "budget recompute lost team mid-flight", "team_id", teamID)
	}

	return nil
}

// Rebaseline moves every team of the auction to a new budget ceiling while
// preserving spend-to-date: remaining = newBudget - (budget - remaining).
func (l *BudgetLedger) Rebaseline(ctx context.Context, auctionID string, newBudget int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BudgetLedger.Rebaseline")
	defer span.End()

	teams, err := l.teamRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("list teams for rebaseline: %w", err)
	}

	for _, item := range teams {
		spent := item.Budget - item.RemainingBudget
		updated, err := l.teamRepo.SetBudgets(ctx, item.ID, newBudget, newBudget-spent)
		if err != nil {
			return fmt.Errorf("rebaseline team %s: %w", item.ID, err)
		}
		if !updated {
			l.logger.WarnContext(ctx, "rebaseline lost team mid-flight", "team_id", item.ID)
		}
	}

	return nil
}

func (l *BudgetLedger) spentByTeam(ctx context.Context, auctionID, teamID string) (int64, error) {
	players, err := l.playerRepo.ListByAuction(ctx, auctionID, player.Filter{TeamID: teamID})
	if err != nil {
		return 0, fmt.Errorf("list players for recompute: %w", err)
	}

	var spent int64
	for _, item := range players {
		spent += item.SoldPrice
	}

	return spent, nil
}
