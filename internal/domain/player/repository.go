package player

import "context"

// Filter narrows player listings. Zero values mean "any".
type Filter struct {
	SetID  string
	TeamID string
	Status Status
}

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Player) error
	// CreateBatch inserts players unordered. Stores either report bad rows
	// by index or fail the batch as a whole with err, in which case the
	// caller retries rows one by one.
	CreateBatch(ctx context.Context, items []Player) (failed map[int]error, err error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	ListByAuction(ctx context.Context, auctionID string, filter Filter) ([]Player, error)
	// ListNumbersByAuction returns the set of player numbers already taken in
	// this auction; the import pre-check runs off a single call.
	ListNumbersByAuction(ctx context.Context, auctionID string) (map[int]struct{}, error)
	Update(ctx context.Context, item Player) error
	Delete(ctx context.Context, playerID string) error
	DeleteByAuction(ctx context.Context, auctionID string) error

	CountBySet(ctx context.Context, setID string) (int, error)
	CountByTeam(ctx context.Context, teamID string) (int, error)
	// MoveUnsoldToSet reassigns every unsold player of the auction to the
	// given set and resets their status to idle (unsold reconciliation).
	MoveUnsoldToSet(ctx context.Context, auctionID, setID string) (int, error)
}
