package httpapi

import (
	"fmt"
	"net/http"

	"github.com/auctionarena/auction-arena/internal/domain/auction"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

type createAuctionRequest struct {
	Name                   string `json:"name" validate:"required,min=1,max=120"`
	Password               string `json:"password" validate:"required,min=4,max=72"`
	BudgetPerTeam          int64  `json:"budget_per_team" validate:"required,gt=0"`
	MaxTeamMember          int    `json:"max_team_member" validate:"required,gt=0"`
	MinTeamMember          int    `json:"min_team_member" validate:"gte=0"`
	LiveEnabled            bool   `json:"live_enabled"`
	ViewerAnalyticsEnabled bool   `json:"viewer_analytics_enabled"`
}

func (h *Handler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAuction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createAuctionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "create auction payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	created, err := h.auctionService.CreateAuction(ctx, usecase.CreateAuctionInput{
		OrganizerID:            principal.UserID,
		Name:                   req.Name,
		Password:               req.Password,
		BudgetPerTeam:          req.BudgetPerTeam,
		MaxTeamMember:          req.MaxTeamMember,
		MinTeamMember:          req.MinTeamMember,
		LiveEnabled:            req.LiveEnabled,
		ViewerAnalyticsEnabled: req.ViewerAnalyticsEnabled,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create auction failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, auctionToDTO(created))
}

func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAuctions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	auctions, err := h.auctionService.ListAuctions(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list auctions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]auctionDTO, 0, len(auctions))
	for _, item := range auctions {
		out = append(out, auctionToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAuction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	found, err := h.auctionService.GetAuction(ctx, principal.UserID, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "get auction failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionToDTO(found))
}

type updateAuctionRequest struct {
	Name                   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Password               *string `json:"password" validate:"omitempty,min=4,max=72"`
	State                  *string `json:"state" validate:"omitempty,min=1"`
	BudgetPerTeam          *int64  `json:"budget_per_team" validate:"omitempty,gt=0"`
	MaxTeamMember          *int    `json:"max_team_member" validate:"omitempty,gt=0"`
	MinTeamMember          *int    `json:"min_team_member" validate:"omitempty,gte=0"`
	LiveEnabled            *bool   `json:"live_enabled"`
	ViewerAnalyticsEnabled *bool   `json:"viewer_analytics_enabled"`
}

func (h *Handler) UpdateAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateAuction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateAuctionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "update auction payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	patch := usecase.AuctionPatch{
		Name:                   req.Name,
		Password:               req.Password,
		BudgetPerTeam:          req.BudgetPerTeam,
		MaxTeamMember:          req.MaxTeamMember,
		MinTeamMember:          req.MinTeamMember,
		LiveEnabled:            req.LiveEnabled,
		ViewerAnalyticsEnabled: req.ViewerAnalyticsEnabled,
	}
	if req.State != nil {
		state := auction.State(*req.State)
		patch.State = &state
	}

	updated, err := h.auctionService.UpdateAuction(ctx, principal.UserID, r.PathValue("auctionID"), patch)
	if err != nil {
		h.logger.WarnContext(ctx, "update auction failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, auctionToDTO(updated))
}

func (h *Handler) DeleteAuction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteAuction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.auctionService.DeleteAuction(ctx, principal.UserID, r.PathValue("auctionID")); err != nil {
		h.logger.WarnContext(ctx, "delete auction failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

type verifyAccessRequest struct {
	Password string `json:"password" validate:"required"`
}

// VerifyAuctionAccess is the viewer-side gate; it never reveals whether the
// auction exists versus the password being wrong beyond the status code.
func (h *Handler) VerifyAuctionAccess(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyAuctionAccess")
	defer span.End()

	var req verifyAccessRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.auctionService.VerifyAccess(ctx, r.PathValue("auctionID"), req.Password); err != nil {
		h.logger.WarnContext(ctx, "auction access denied", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"granted": true})
}
