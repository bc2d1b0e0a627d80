package postgres

import (
	"time"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
)

type auctionTableModel struct {
	ID                     int64      `db:"id"`
	PublicID               string     `db:"public_id"`
	OrganizerID            string     `db:"organizer_id"`
	Name                   string     `db:"name"`
	PasswordHash           string     `db:"password_hash"`
	State                  string     `db:"state"`
	BudgetPerTeam          int64      `db:"budget_per_team"`
	MaxTeamMember          int        `db:"max_team_member"`
	MinTeamMember          int        `db:"min_team_member"`
	LiveEnabled            bool       `db:"live_enabled"`
	ViewerAnalyticsEnabled bool       `db:"viewer_analytics_enabled"`
	LogoURL                string     `db:"logo_url"`
	SoldSequence           int64      `db:"sold_sequence"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
	DeletedAt              *time.Time `db:"deleted_at"`
}

func (m auctionTableModel) toDomain() auction.Auction {
	return auction.Auction{
		ID:                     m.PublicID,
		OrganizerID:            m.OrganizerID,
		Name:                   m.Name,
		PasswordHash:           m.PasswordHash,
		State:                  auction.State(m.State),
		BudgetPerTeam:          m.BudgetPerTeam,
		MaxTeamMember:          m.MaxTeamMember,
		MinTeamMember:          m.MinTeamMember,
		LiveEnabled:            m.LiveEnabled,
		ViewerAnalyticsEnabled: m.ViewerAnalyticsEnabled,
		LogoURL:                m.LogoURL,
		SoldSequence:           m.SoldSequence,
	}
}
