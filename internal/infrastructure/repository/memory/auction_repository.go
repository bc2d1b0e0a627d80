package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
)

type AuctionRepository struct {
	mu     sync.RWMutex
	items  map[string]auction.Auction
	orders []string
}

func NewAuctionRepository(auctions []auction.Auction) *AuctionRepository {
	items := make(map[string]auction.Auction, len(auctions))
	orders := make([]string, 0, len(auctions))

	for _, a := range auctions {
		items[a.ID] = a
		orders = append(orders, a.ID)
	}

	return &AuctionRepository{
		items:  items,
		orders: orders,
	}
}

func (r *AuctionRepository) Create(_ context.Context, item auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("auction %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if existing.OrganizerID == item.OrganizerID && strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("auction name %q already taken", item.Name)
		}
	}

	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *AuctionRepository) GetByID(_ context.Context, auctionID string) (auction.Auction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[auctionID]
	if !ok {
		return auction.Auction{}, false, nil
	}

	return a, true, nil
}

func (r *AuctionRepository) GetByOrganizerAndName(_ context.Context, organizerID, name string) (auction.Auction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		a := r.items[id]
		if a.OrganizerID == organizerID && strings.EqualFold(a.Name, name) {
			return a, true, nil
		}
	}

	return auction.Auction{}, false, nil
}

func (r *AuctionRepository) ListByOrganizer(_ context.Context, organizerID string) ([]auction.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Auction, 0, len(r.orders))
	for _, id := range r.orders {
		a := r.items[id]
		if a.OrganizerID != organizerID {
			continue
		}
		out = append(out, a)
	}

	return out, nil
}

func (r *AuctionRepository) Update(_ context.Context, item auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("auction %s not found", item.ID)
	}

	// The sold sequence only moves through NextSoldNumber.
	item.SoldSequence = current.SoldSequence
	r.items[item.ID] = item

	return nil
}

func (r *AuctionRepository) Delete(_ context.Context, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, auctionID)
	for i, id := range r.orders {
		if id == auctionID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}

func (r *AuctionRepository) NextSoldNumber(_ context.Context, auctionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[auctionID]
	if !ok {
		return 0, fmt.Errorf("auction %s not found", auctionID)
	}

	a.SoldSequence++
	r.items[auctionID] = a

	return a.SoldSequence, nil
}
