package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/auctionarena/auction-arena/internal/usecase"
)

const defaultRecentSoldLimit = 10

type snapshotResponse struct {
	Auction   auctionDTO  `json:"auction"`
	Teams     []teamDTO   `json:"teams"`
	Players   []playerDTO `json:"players"`
	Sets      []setDTO    `json:"sets"`
	LastMoved *playerDTO  `json:"last_moved,omitempty"`
}

func (h *Handler) GetAuctionSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAuctionSnapshot")
	defer span.End()

	snapshot, err := h.statsService.GetSnapshot(ctx, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "get snapshot failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := snapshotResponse{
		Auction: auctionToDTO(snapshot.Auction),
		Teams:   make([]teamDTO, 0, len(snapshot.Teams)),
		Players: playersToDTO(snapshot.Players),
		Sets:    make([]setDTO, 0, len(snapshot.Sets)),
	}
	for _, item := range snapshot.Teams {
		resp.Teams = append(resp.Teams, teamToDTO(item))
	}
	for _, item := range snapshot.Sets {
		resp.Sets = append(resp.Sets, setToDTO(item))
	}
	if snapshot.LastMoved != nil {
		moved := playerToDTO(*snapshot.LastMoved)
		resp.LastMoved = &moved
	}

	writeSuccess(ctx, w, http.StatusOK, resp)
}

type leaderboardEntryDTO struct {
	Team        teamDTO `json:"team"`
	PlayerCount int     `json:"player_count"`
	TotalSpent  int64   `json:"total_spent"`
}

func (h *Handler) GetAuctionLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAuctionLeaderboard")
	defer span.End()

	entries, err := h.statsService.GetLeaderboard(ctx, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, leaderboardEntryDTO{
			Team:        teamToDTO(entry.Team),
			PlayerCount: entry.PlayerCount,
			TotalSpent:  entry.TotalSpent,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListRecentSoldPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentSoldPlayers")
	defer span.End()

	limit := defaultRecentSoldLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	players, err := h.statsService.GetRecentSold(ctx, r.PathValue("auctionID"), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get recent sold failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

type summaryResponse struct {
	TeamCount      int            `json:"team_count"`
	TotalBudget    int64          `json:"total_budget"`
	TotalSpent     int64          `json:"total_spent"`
	PlayerCount    int            `json:"player_count"`
	SoldPlayers    int            `json:"sold_players"`
	UnsoldPlayers  int            `json:"unsold_players"`
	PendingPlayers int            `json:"pending_players"`
	SetCount       int            `json:"set_count"`
	SetsByState    map[string]int `json:"sets_by_state"`
}

func (h *Handler) GetAuctionSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAuctionSummary")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	summary, err := h.statsService.GetSummary(ctx, principal.UserID, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "get summary failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	setsByState := make(map[string]int, len(summary.SetsByState))
	for state, count := range summary.SetsByState {
		setsByState[string(state)] = count
	}

	writeSuccess(ctx, w, http.StatusOK, summaryResponse{
		TeamCount:      summary.TeamCount,
		TotalBudget:    summary.TotalBudget,
		TotalSpent:     summary.TotalSpent,
		PlayerCount:    summary.PlayerCount,
		SoldPlayers:    summary.SoldPlayers,
		UnsoldPlayers:  summary.UnsoldPlayers,
		PendingPlayers: summary.PendingPlayers,
		SetCount:       summary.SetCount,
		SetsByState:    setsByState,
	})
}
