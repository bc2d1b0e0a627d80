package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/auctionarena/auction-arena/internal/domain/player"
)

type PlayerRepository struct {
	mu     sync.RWMutex
	items  map[string]player.Player
	orders []string
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	orders := make([]string, 0, len(players))

	for _, p := range players {
		items[p.ID] = p
		orders = append(orders, p.ID)
	}

	return &PlayerRepository{
		items:  items,
		orders: orders,
	}
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(item)
}

func (r *PlayerRepository) CreateBatch(_ context.Context, items []player.Player) (map[int]error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := make(map[int]error)
	for i, item := range items {
		if err := r.insertLocked(item); err != nil {
			failed[i] = err
		}
	}

	return failed, nil
}

func (r *PlayerRepository) insertLocked(item player.Player) error {
	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("player %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if existing.AuctionID == item.AuctionID && existing.PlayerNumber == item.PlayerNumber {
			return fmt.Errorf("player number %d already taken", item.PlayerNumber)
		}
	}

	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	if !ok {
		return player.Player{}, false, nil
	}

	return p, true, nil
}

func (r *PlayerRepository) ListByAuction(_ context.Context, auctionID string, filter player.Filter) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.orders))
	for _, id := range r.orders {
		p := r.items[id]
		if p.AuctionID != auctionID {
			continue
		}
		if filter.SetID != "" && p.SetID != filter.SetID {
			continue
		}
		if filter.TeamID != "" && p.TeamID != filter.TeamID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *PlayerRepository) ListNumbersByAuction(_ context.Context, auctionID string) (map[int]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]struct{})
	for _, p := range r.items {
		if p.AuctionID != auctionID {
			continue
		}
		out[p.PlayerNumber] = struct{}{}
	}

	return out, nil
}

func (r *PlayerRepository) Update(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("player %s not found", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func (r *PlayerRepository) Delete(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, playerID)
	for i, id := range r.orders {
		if id == playerID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}

func (r *PlayerRepository) DeleteByAuction(_ context.Context, auctionID string) error {
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

func (r *PlayerRepository) CountBySet(_ context.Context, setID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.items {
		if p.SetID == setID {
			count++
		}
	}

	return count, nil
}

func (r *PlayerRepository) CountByTeam(_ context.Context, teamID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.items {
		if p.TeamID == teamID {
			count++
		}
	}

	return count, nil
}

func (r *PlayerRepository) MoveUnsoldToSet(_ context.Context, auctionID, setID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := 0
	for id, p := range r.items {
		if p.AuctionID != auctionID || p.Status != player.StatusUnsold {
			continue
		}
		p.SetID = setID
		p.Status = player.StatusIdle
		r.items[id] = p
		moved++
	}

	return moved, nil
}
