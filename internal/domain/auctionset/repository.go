package auctionset

import "context"

// Repository describes set persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Set) error
	GetByID(ctx context.Context, setID string) (Set, bool, error)
	GetByAuctionAndName(ctx context.Context, auctionID, name string) (Set, bool, error)
	ListByAuction(ctx context.Context, auctionID string) ([]Set, error)
	Update(ctx context.Context, item Set) error
	Delete(ctx context.Context, setID string) error
	DeleteByAuction(ctx context.Context, auctionID string) error

	// DemoteRunning moves every running set of the auction except excludeSetID
	// back to idle. Issued strictly before the promotion write so readers
	// never observe two running sets for longer than the gap between the two
	// statements.
	DemoteRunning(ctx context.Context, auctionID, excludeSetID string) error
}
