package httpapi

import (
	"fmt"
	"net/http"

	"github.com/auctionarena/auction-arena/internal/domain/player"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

type createPlayerItem struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	PlayerNumber int    `json:"player_number" validate:"required,gt=0"`
	Role         string `json:"role" validate:"required,min=1,max=60"`
	BattingStyle string `json:"batting_style" validate:"omitempty,max=60"`
	BowlingStyle string `json:"bowling_style" validate:"omitempty,max=60"`
	Nationality  string `json:"nationality" validate:"omitempty,max=60"`
	SetID        string `json:"set_id" validate:"omitempty"`
	BasePrice    int64  `json:"base_price" validate:"gte=0"`
	Marquee      bool   `json:"marquee"`
}

type createPlayersRequest struct {
	Players []createPlayerItem `json:"players" validate:"required,min=1,dive"`
}

type createPlayersResponse struct {
	Players  []playerDTO      `json:"players"`
	Failures []itemFailureDTO `json:"failures"`
}

func (h *Handler) CreatePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePlayers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createPlayersRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "create players payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.PlayerInput, 0, len(req.Players))
	for _, item := range req.Players {
		inputs = append(inputs, usecase.PlayerInput{
			Name:         item.Name,
			PlayerNumber: item.PlayerNumber,
			Role:         item.Role,
			BattingStyle: item.BattingStyle,
			BowlingStyle: item.BowlingStyle,
			Nationality:  item.Nationality,
			SetID:        item.SetID,
			BasePrice:    item.BasePrice,
			Marquee:      item.Marquee,
		})
	}

	created, failures, err := h.playerService.CreatePlayers(ctx, principal.UserID, r.PathValue("auctionID"), inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "create players failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, createPlayersResponse{
		Players:  playersToDTO(created),
		Failures: itemFailuresToDTO(failures),
	})
}

// ListPlayers is public; filters arrive as query parameters so live viewers
// can scope to a set, a team, or a status.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	query := r.URL.Query()
	filter := player.Filter{
		SetID:  query.Get("set_id"),
		TeamID: query.Get("team_id"),
		Status: player.Status(query.Get("status")),
	}

	players, err := h.playerService.ListPlayers(ctx, r.PathValue("auctionID"), filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

type updatePlayerItem struct {
	PlayerID     string  `json:"player_id" validate:"required"`
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	Role         *string `json:"role" validate:"omitempty,min=1,max=60"`
	BattingStyle *string `json:"batting_style" validate:"omitempty,max=60"`
	BowlingStyle *string `json:"bowling_style" validate:"omitempty,max=60"`
	Nationality  *string `json:"nationality" validate:"omitempty,max=60"`
	SetID        *string `json:"set_id"`
	TeamID       *string `json:"team_id"`
	BasePrice    *int64  `json:"base_price" validate:"omitempty,gte=0"`
	SoldPrice    *int64  `json:"sold_price" validate:"omitempty,gte=0"`
	Marquee      *bool   `json:"marquee"`
}

type updatePlayersRequest struct {
	Players []updatePlayerItem `json:"players" validate:"required,min=1,dive"`
}

type updatePlayersResponse struct {
	Players  []playerDTO      `json:"players"`
	Failures []itemFailureDTO `json:"failures"`
}

func (h *Handler) UpdatePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updatePlayersRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "update players payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	patches := make([]usecase.PlayerPatch, 0, len(req.Players))
	for _, item := range req.Players {
		patches = append(patches, usecase.PlayerPatch{
			PlayerID:     item.PlayerID,
			Name:         item.Name,
			Role:         item.Role,
			BattingStyle: item.BattingStyle,
			BowlingStyle: item.BowlingStyle,
			Nationality:  item.Nationality,
			SetID:        item.SetID,
			TeamID:       item.TeamID,
			BasePrice:    item.BasePrice,
			SoldPrice:    item.SoldPrice,
			Marquee:      item.Marquee,
		})
	}

	updated, failures, err := h.playerService.UpdatePlayers(ctx, principal.UserID, r.PathValue("auctionID"), patches)
	if err != nil {
		h.logger.WarnContext(ctx, "update players failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, updatePlayersResponse{
		Players:  playersToDTO(updated),
		Failures: itemFailuresToDTO(failures),
	})
}

type deletePlayersRequest struct {
	PlayerIDs []string `json:"player_ids" validate:"required,min=1,dive,required"`
}

type deletePlayersResponse struct {
	Failures []itemFailureDTO `json:"failures"`
}

func (h *Handler) DeletePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePlayers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req deletePlayersRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "delete players payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	failures, err := h.playerService.DeletePlayers(ctx, principal.UserID, r.PathValue("auctionID"), req.PlayerIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "delete players failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletePlayersResponse{Failures: itemFailuresToDTO(failures)})
}

type recordSaleRequest struct {
	PlayerID  string `json:"player_id" validate:"required"`
	TeamID    string `json:"team_id" validate:"required"`
	SoldPrice int64  `json:"sold_price" validate:"required,gt=0"`
}

func (h *Handler) RecordPlayerSale(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPlayerSale")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req recordSaleRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "record sale payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	sold, err := h.playerService.RecordSale(ctx, principal.UserID, req.PlayerID, req.TeamID, req.SoldPrice)
	if err != nil {
		h.logger.WarnContext(ctx, "record sale failed", "player_id", req.PlayerID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(sold))
}

type playerActionRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

func (h *Handler) RecordPlayerUnsold(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordPlayerUnsold")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req playerActionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "record unsold payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	unsold, err := h.playerService.RecordUnsold(ctx, principal.UserID, req.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "record unsold failed", "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(unsold))
}

func (h *Handler) UndoPlayerSale(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoPlayerSale")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req playerActionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "undo sale payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	restored, err := h.playerService.UndoSale(ctx, principal.UserID, req.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "undo sale failed", "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(restored))
}
