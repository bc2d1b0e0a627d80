package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
)

type SetRepository struct {
	mu     sync.RWMutex
	items  map[string]auctionset.Set
	orders []string
}

func NewSetRepository(sets []auctionset.Set) *SetRepository {
	items := make(map[string]auctionset.Set, len(sets))
	orders := make([]string, 0, len(sets))

	for _, s := range sets {
		items[s.ID] = s
		orders = append(orders, s.ID)
	}

	return &SetRepository{
		items:  items,
		orders: orders,
	}
}

func (r *SetRepository) Create(_ context.Context, item auctionset.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("set %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if existing.AuctionID == item.AuctionID && strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("set name %q already taken", item.Name)
		}
	}

	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *SetRepository) GetByID(_ context.Context, setID string) (auctionset.Set, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[setID]
	if !ok {
		return auctionset.Set{}, false, nil
	}

	return s, true, nil
}

func (r *SetRepository) GetByAuctionAndName(_ context.Context, auctionID, name string) (auctionset.Set, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		s := r.items[id]
		if s.AuctionID == auctionID && strings.EqualFold(s.Name, name) {
			return s, true, nil
		}
	}

	return auctionset.Set{}, false, nil
}

func (r *SetRepository) ListByAuction(_ context.Context, auctionID string) ([]auctionset.Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auctionset.Set, 0, len(r.orders))
	for _, id := range r.orders {
		s := r.items[id]
		if s.AuctionID != auctionID {
			continue
		}
		out = append(out, s)
	}

	return out, nil
}

func (r *SetRepository) Update(_ context.Context, item auctionset.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("set %s not found", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func (r *SetRepository) Delete(_ context.Context, setID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, setID)
	for i, id := range r.orders {
		if id == setID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}

func (r *SetRepository) DeleteByAuction(_ context.Context, auctionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.orders[:0]
	for _, id := range r.orders {
		if r.items[id].AuctionID == auctionID {
			delete(r.items, id)
			continue
		}
		kept = append(kept, id)
	}
	r.orders = kept

	return nil
}

func (r *SetRepository) DemoteRunning(_ context.Context, auctionID, excludeSetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.items {
		if s.AuctionID != auctionID || id == excludeSetID {
			continue
		}
		if s.State != auctionset.StateRunning {
			continue
		}
		s.State = auctionset.StateIdle
		r.items[id] = s
	}

	return nil
}
