package auction

import "fmt"

// State is the auction-level lifecycle, independent of set state.
type State string

const (
	StateSetup     State = "setup"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

var AllStates = map[State]struct{}{
	StateSetup:     {},
	StateRunning:   {},
	StateCompleted: {},
}

// Auction is the top-level tenant entity owning teams, sets and players.
type Auction struct {
	ID                     string
	OrganizerID            string
	Name                   string
	PasswordHash           string
	State                  State
	BudgetPerTeam          int64
	MaxTeamMember          int
	MinTeamMember          int
	LiveEnabled            bool
	ViewerAnalyticsEnabled bool
	LogoURL                string
	SoldSequence           int64
}

func (a Auction) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("auction id is required")
	}
	if a.OrganizerID == "" {
		return fmt.Errorf("auction organizer id is required")
	}
	if a.Name == "" {
		return fmt.Errorf("auction name is required")
	}
	if _, ok := AllStates[a.State]; !ok {
		return fmt.Errorf("invalid auction state: %s", a.State)
	}
	if a.BudgetPerTeam < 0 {
		return fmt.Errorf("auction budget per team cannot be negative")
	}
	if a.MaxTeamMember < 0 || a.MinTeamMember < 0 {
		return fmt.Errorf("auction team member bounds cannot be negative")
	}

	return nil
}

// CanTransition reports whether the auction-level state change is allowed.
// Setup, running and completed form a loop the organizer can walk in either
// direction while preparing or re-opening an auction.
func CanTransition(from, to State) bool {
	if _, ok := AllStates[from]; !ok {
		return false
	}
	_, ok := AllStates[to]
	return ok
}
