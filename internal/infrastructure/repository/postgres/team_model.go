package postgres

import (
	"time"

	"github.com/auctionarena/auction-arena/internal/domain/team"
)

type teamTableModel struct {
	ID              int64      `db:"id"`
	PublicID        string     `db:"public_id"`
	AuctionPublicID string     `db:"auction_public_id"`
	Name            string     `db:"name"`
	Owner           string     `db:"owner"`
	Budget          int64      `db:"budget"`
	RemainingBudget int64      `db:"remaining_budget"`
	LogoURL         string     `db:"logo_url"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:              m.PublicID,
		AuctionID:       m.AuctionPublicID,
		Name:            m.Name,
		Owner:           m.Owner,
		Budget:          m.Budget,
		RemainingBudget: m.RemainingBudget,
		LogoURL:         m.LogoURL,
	}
}
