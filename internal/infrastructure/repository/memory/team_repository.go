package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/auctionarena/auction-arena/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	items  map[string]team.Team
	orders []string
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[string]team.Team, len(teams))
	orders := make([]string, 0, len(teams))

	for _, t := range teams {
		items[t.ID] = t
		orders = append(orders, t.ID)
	}

	return &TeamRepository{
		items:  items,
		orders: orders,
	}
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("team %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if existing.AuctionID == item.AuctionID && strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("team name %q already taken", item.Name)
		}
	}

	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return t, true, nil
}

func (r *TeamRepository) GetByAuctionAndName(_ context.Context, auctionID, name string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		t := r.items[id]
		if t.AuctionID == auctionID && strings.EqualFold(t.Name, name) {
			return t, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) ListByAuction(_ context.Context, auctionID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.orders))
	for _, id := range r.orders {
		t := r.items[id]
		if t.AuctionID != auctionID {
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

func (r *TeamRepository) Update(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("team %s not found", item.ID)
	}
	r.items[item.ID] = item

	return nil
}

func (r *TeamRepository) Delete(_ context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, teamID)
	for i, id := range r.orders {
		if id == teamID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}

func (r *TeamRepository) DeleteByAuction(_ context.Context, auctionID string) error {
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

func (r *TeamRepository) AdjustRemainingBudget(_ context.Context, teamID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return fmt.Errorf("team %s not found", teamID)
	}

	t.RemainingBudget += delta
	r.items[teamID] = t

	return nil
}

func (r *TeamRepository) SetBudgets(_ context.Context, teamID string, budget, remaining int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[teamID]
	if !ok {
		return false, nil
	}

	t.Budget = budget
	t.RemainingBudget = remaining
	r.items[teamID] = t

	return true, nil
}
