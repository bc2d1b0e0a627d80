package player

import "fmt"

// Status is the disposition of a player within an auction.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSold   Status = "sold"
	StatusUnsold Status = "unsold"
)

var AllStatuses = map[Status]struct{}{
	StatusIdle:   {},
	StatusSold:   {},
	StatusUnsold: {},
}

// Bid is one entry of the append-only bidding history. The history is
// informational; the authoritative final price lives on the player row.
type Bid struct {
	TeamID string
	Price  int64
}

// Player is the item being auctioned.
type Player struct {
	ID           string
	AuctionID    string
	Name         string
	PlayerNumber int
	Role         string
	BattingStyle string
	BowlingStyle string
	Nationality  string
	SetID        string
	TeamID       string
	Status       Status
	BasePrice    int64
	SoldPrice    int64
	Marquee      bool
	// SoldNumber is stamped from the auction's atomic sold sequence at sale
	// (or unsold) time and orders "recent sales" views.
	SoldNumber int64
	Bidding    []Bid
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.AuctionID == "" {
		return fmt.Errorf("player auction id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.PlayerNumber <= 0 {
		return fmt.Errorf("player number must be greater than zero")
	}
	if _, ok := AllStatuses[p.Status]; !ok {
		return fmt.Errorf("invalid player status: %s", p.Status)
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("player base price cannot be negative")
	}
	if err := p.checkDisposition(); err != nil {
		return err
	}

	return nil
}

// checkDisposition enforces status == sold ⇔ team assigned.
func (p Player) checkDisposition() error {
	if p.Status == StatusSold && p.TeamID == "" {
		return fmt.Errorf("sold player must have a team")
	}
	if p.Status != StatusSold && p.TeamID != "" {
		return fmt.Errorf("%s player cannot have a team", p.Status)
	}

	return nil
}

// CanTransition reports whether a disposition change is allowed. Every
// disposition can be revisited (undo, re-auction), but only between known
// statuses.
func CanTransition(from, to Status) bool {
	if _, ok := AllStatuses[from]; !ok {
		return false
	}
	_, ok := AllStatuses[to]
	return ok
}
