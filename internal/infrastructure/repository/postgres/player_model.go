package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/auctionarena/auction-arena/internal/domain/player"
)

type playerTableModel struct {
	ID              int64      `db:"id"`
	PublicID        string     `db:"public_id"`
	AuctionPublicID string     `db:"auction_public_id"`
	Name            string     `db:"name"`
	PlayerNumber    int        `db:"player_number"`
	Role            string     `db:"role"`
	BattingStyle    string     `db:"batting_style"`
	BowlingStyle    string     `db:"bowling_style"`
	Nationality     string     `db:"nationality"`
	SetPublicID     string     `db:"set_public_id"`
	TeamPublicID    string     `db:"team_public_id"`
	Status          string     `db:"status"`
	BasePrice       int64      `db:"base_price"`
	SoldPrice       int64      `db:"sold_price"`
	Marquee         bool       `db:"marquee"`
	SoldNumber      int64      `db:"sold_number"`
	Bidding         []byte     `db:"bidding"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (m playerTableModel) toDomain() (player.Player, error) {
	var bidding []player.Bid
	if len(m.Bidding) > 0 {
		if err := sonic.Unmarshal(m.Bidding, &bidding); err != nil {
			return player.Player{}, fmt.Errorf("decode bidding trail for player %s: %w", m.PublicID, err)
		}
	}

	return player.Player{
		ID:           m.PublicID,
		AuctionID:    m.AuctionPublicID,
		Name:         m.Name,
		PlayerNumber: m.PlayerNumber,
		Role:         m.Role,
		BattingStyle: m.BattingStyle,
		BowlingStyle: m.BowlingStyle,
		Nationality:  m.Nationality,
		SetID:        m.SetPublicID,
		TeamID:       m.TeamPublicID,
		Status:       player.Status(m.Status),
		BasePrice:    m.BasePrice,
		SoldPrice:    m.SoldPrice,
		Marquee:      m.Marquee,
		SoldNumber:   m.SoldNumber,
		Bidding:      bidding,
	}, nil
}

func encodeBidding(bidding []player.Bid) ([]byte, error) {
	if len(bidding) == 0 {
		return []byte("[]"), nil
	}
	encoded, err := sonic.Marshal(bidding)
	if err != nil {
		return nil, fmt.Errorf("encode bidding trail: %w", err)
	}

	return encoded, nil
}
