package team

import "fmt"

// Team is a bidder entity with a budget that acquires players.
type Team struct {
	ID        string
	AuctionID string
	Name      string
	Owner     string
	Budget    int64
	// RemainingBudget is derived: Budget minus the sum of sold prices of
	// players currently assigned to this team. It is never set directly by
	// callers outside the budget ledger.
	RemainingBudget int64
	LogoURL         string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.AuctionID == "" {
		return fmt.Errorf("team auction id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Budget < 0 {
		return fmt.Errorf("team budget cannot be negative")
	}

	return nil
}
