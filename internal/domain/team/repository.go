package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Team) error
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	GetByAuctionAndName(ctx context.Context, auctionID, name string) (Team, bool, error)
	// ListByAuction returns teams in creation order. Leaderboard tie-breaking
	// relies on this ordering being stable.
	ListByAuction(ctx context.Context, auctionID string) ([]Team, error)
	Update(ctx context.Context, item Team) error
	Delete(ctx context.Context, teamID string) error
	DeleteByAuction(ctx context.Context, auctionID string) error

	// AdjustRemainingBudget applies an atomic delta to remaining_budget,
	// avoiding the read-modify-write race between concurrent sales.
	AdjustRemainingBudget(ctx context.Context, teamID string, delta int64) error
	// SetBudgets overwrites both budget columns in one write; used by ledger
	// recomputes and budget re-baselines.
	SetBudgets(ctx context.Context, teamID string, budget, remaining int64) (bool, error)
}
