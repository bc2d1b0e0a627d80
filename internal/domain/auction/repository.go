package auction

import "context"

// Repository describes auction persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Auction) error
	GetByID(ctx context.Context, auctionID string) (Auction, bool, error)
	GetByOrganizerAndName(ctx context.Context, organizerID, name string) (Auction, bool, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]Auction, error)
	Update(ctx context.Context, item Auction) error
	Delete(ctx context.Context, auctionID string) error

	// NextSoldNumber atomically advances the per-auction sold sequence and
	// returns the new value. Sale recency ordering depends on this being a
	// single atomic step at the store.
	NextSoldNumber(ctx context.Context, auctionID string) (int64, error)
}
