package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/domain/auctionset"
	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/domain/team"
	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

type Handler struct {
	auctionService *usecase.AuctionService
	teamService    *usecase.TeamService
	setService     *usecase.SetService
	playerService  *usecase.PlayerService
	statsService   *usecase.StatsService
	importService  *usecase.ImportService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	auctionService *usecase.AuctionService,
	teamService *usecase.TeamService,
	setService *usecase.SetService,
	playerService *usecase.PlayerService,
	statsService *usecase.StatsService,
	importService *usecase.ImportService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		auctionService: auctionService,
		teamService:    teamService,
		setService:     setService,
		playerService:  playerService,
		statsService:   statsService,
		importService:  importService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type auctionDTO struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	State                  string `json:"state"`
	BudgetPerTeam          int64  `json:"budget_per_team"`
	MaxTeamMember          int    `json:"max_team_member"`
	MinTeamMember          int    `json:"min_team_member"`
	LiveEnabled            bool   `json:"live_enabled"`
	ViewerAnalyticsEnabled bool   `json:"viewer_analytics_enabled"`
	LogoURL                string `json:"logo_url,omitempty"`
}

// The password hash never crosses the API boundary.
func auctionToDTO(a auction.Auction) auctionDTO {
	return auctionDTO{
		ID:                     a.ID,
		Name:                   a.Name,
		State:                  string(a.State),
		BudgetPerTeam:          a.BudgetPerTeam,
		MaxTeamMember:          a.MaxTeamMember,
		MinTeamMember:          a.MinTeamMember,
		LiveEnabled:            a.LiveEnabled,
		ViewerAnalyticsEnabled: a.ViewerAnalyticsEnabled,
		LogoURL:                a.LogoURL,
	}
}

type teamDTO struct {
	ID              string `json:"id"`
	AuctionID       string `json:"auction_id"`
	Name            string `json:"name"`
	Owner           string `json:"owner"`
	Budget          int64  `json:"budget"`
	RemainingBudget int64  `json:"remaining_budget"`
	LogoURL         string `json:"logo_url,omitempty"`
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:              t.ID,
		AuctionID:       t.AuctionID,
		Name:            t.Name,
		Owner:           t.Owner,
		Budget:          t.Budget,
		RemainingBudget: t.RemainingBudget,
		LogoURL:         t.LogoURL,
	}
}

type setDTO struct {
	ID        string `json:"id"`
	AuctionID string `json:"auction_id"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	State     string `json:"state"`
}

func setToDTO(s auctionset.Set) setDTO {
	return setDTO{
		ID:        s.ID,
		AuctionID: s.AuctionID,
		Name:      s.Name,
		Order:     s.Order,
		State:     string(s.State),
	}
}

type bidDTO struct {
	TeamID string `json:"team_id"`
	Price  int64  `json:"price"`
}

type playerDTO struct {
	ID           string   `json:"id"`
	AuctionID    string   `json:"auction_id"`
	Name         string   `json:"name"`
	PlayerNumber int      `json:"player_number"`
	Role         string   `json:"role"`
	BattingStyle string   `json:"batting_style,omitempty"`
	BowlingStyle string   `json:"bowling_style,omitempty"`
	Nationality  string   `json:"nationality,omitempty"`
	SetID        string   `json:"set_id,omitempty"`
	TeamID       string   `json:"team_id,omitempty"`
	Status       string   `json:"status"`
	BasePrice    int64    `json:"base_price"`
	SoldPrice    int64    `json:"sold_price"`
	Marquee      bool     `json:"marquee"`
	SoldNumber   int64    `json:"sold_number"`
	Bidding      []bidDTO `json:"bidding,omitempty"`
}

func playerToDTO(p player.Player) playerDTO {
	bidding := make([]bidDTO, 0, len(p.Bidding))
	for _, b := range p.Bidding {
		bidding = append(bidding, bidDTO{TeamID: b.TeamID, Price: b.Price})
	}

	return playerDTO{
		ID:           p.ID,
		AuctionID:    p.AuctionID,
		Name:         p.Name,
		PlayerNumber: p.PlayerNumber,
		Role:         p.Role,
		BattingStyle: p.BattingStyle,
		BowlingStyle: p.BowlingStyle,
		Nationality:  p.Nationality,
		SetID:        p.SetID,
		TeamID:       p.TeamID,
		Status:       string(p.Status),
		BasePrice:    p.BasePrice,
		SoldPrice:    p.SoldPrice,
		Marquee:      p.Marquee,
		SoldNumber:   p.SoldNumber,
		Bidding:      bidding,
	}
}

func playersToDTO(players []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}

	return out
}

type itemFailureDTO struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

func itemFailuresToDTO(failures []usecase.ItemFailure) []itemFailureDTO {
	out := make([]itemFailureDTO, 0, len(failures))
	for _, f := range failures {
		out = append(out, itemFailureDTO{Index: f.Index, ID: f.ID, Reason: f.Reason})
	}

	return out
}
