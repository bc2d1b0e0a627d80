package usecase

import "time"

// ActivityEvent is one audit entry emitted by the engines. Delivery is
// fire-and-forget; dropping an event never fails the triggering request.
type ActivityEvent struct {
	AuctionID string    `json:"auctionId"`
	Kind      string    `json:"kind"`
	PlayerID  string    `json:"playerId,omitempty"`
	TeamID    string    `json:"teamId,omitempty"`
	SetID     string    `json:"setId,omitempty"`
	Price     int64     `json:"price,omitempty"`
	At        time.Time `json:"at"`
}

const (
	ActivitySaleRecorded   = "sale_recorded"
	ActivityUnsoldRecorded = "unsold_recorded"
	ActivitySaleUndone     = "sale_undone"
	ActivitySetStarted     = "set_started"
	ActivitySetCompleted   = "set_completed"
	ActivityPlayersImport  = "players_imported"
)

// ActivityRecorder receives audit events. Implementations own their queueing
// and must never block the caller.
type ActivityRecorder interface {
	Record(event ActivityEvent)
}

// NopActivityRecorder discards all events.
type NopActivityRecorder struct{}

func (NopActivityRecorder) Record(ActivityEvent) {}
