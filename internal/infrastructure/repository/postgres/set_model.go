package postgres

import (
	"time"

	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
)

type setTableModel struct {
	ID              int64      `db:"id"`
	PublicID        string     `db:"public_id"`
	AuctionPublicID string     `db:"auction_public_id"`
	Name            string     `db:"name"`
	SortOrder       int        `db:"sort_order"`
	State           string     `db:"state"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (m setTableModel) toDomain() auctionset.Set {
	return auctionset.Set{
		ID:        m.PublicID,
		AuctionID: m.AuctionPublicID,
		Name:      m.Name,
		Order:     m.SortOrder,
		State:     auctionset.State(m.State),
	}
}
