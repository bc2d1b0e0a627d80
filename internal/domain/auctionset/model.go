package auctionset

import "fmt"

// State is the set lifecycle within a running auction.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

var AllStates = map[State]struct{}{
	StateIdle:      {},
	StateRunning:   {},
	StateCompleted: {},
}

// UnsoldSetName is reserved for the auto-created reconciliation set that
// collects players left unsold once every other set has completed.
const UnsoldSetName = "unsold"

// Set is a named grouping of players auctioned together as a batch.
type Set struct {
	ID        string
	AuctionID string
	Name      string
	Order     int
	State     State
}

func (s Set) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("set id is required")
	}
	if s.AuctionID == "" {
		return fmt.Errorf("set auction id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("set name is required")
	}
	if _, ok := AllStates[s.State]; !ok {
		return fmt.Errorf("invalid set state: %s", s.State)
	}

	return nil
}

// CanTransition reports whether a set state change is allowed. Operators can
// walk a set backwards (completed → running → idle) to re-run a batch, but
// unknown states are rejected.
func CanTransition(from, to State) bool {
	if _, ok := AllStates[from]; !ok {
		return false
	}
	_, ok := AllStates[to]
	return ok
}
