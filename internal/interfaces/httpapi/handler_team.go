package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/auctionarena/auction-arena/internal/usecase"
)

// maxLogoBytes caps logo uploads; anything larger is rejected before the
// blob store is touched.
const maxLogoBytes = 5 << 20

type createTeamRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Owner string `json:"owner" validate:"omitempty,max=120"`
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "create team payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	created, err := h.teamService.CreateTeam(ctx, usecase.CreateTeamInput{
		OrganizerID: principal.UserID,
		AuctionID:   r.PathValue("auctionID"),
		Name:        req.Name,
		Owner:       req.Owner,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(created))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamService.ListTeams(ctx, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		out = append(out, teamToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type updateTeamRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Owner  *string `json:"owner" validate:"omitempty,max=120"`
	Budget *int64  `json:"budget" validate:"omitempty,gt=0"`
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateTeamRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "update team payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	updated, err := h.teamService.UpdateTeam(ctx, principal.UserID, r.PathValue("teamID"), usecase.TeamPatch{
		Name:   req.Name,
		Owner:  req.Owner,
		Budget: req.Budget,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update team failed", "team_id", r.PathValue("teamID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(updated))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.teamService.DeleteTeam(ctx, principal.UserID, r.PathValue("teamID")); err != nil {
		h.logger.WarnContext(ctx, "delete team failed", "team_id", r.PathValue("teamID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

// UploadTeamLogo accepts the raw image bytes in the request body with the
// Content-Type header naming the format.
func (h *Handler) UploadTeamLogo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadTeamLogo")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxLogoBytes+1))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read logo payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if len(data) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: logo payload is empty", usecase.ErrInvalidInput))
		return
	}
	if len(data) > maxLogoBytes {
		writeError(ctx, w, fmt.Errorf("%w: logo exceeds %d bytes", usecase.ErrInvalidInput, maxLogoBytes))
		return
	}

	updated, err := h.teamService.UploadLogo(ctx, principal.UserID, r.PathValue("teamID"), data, r.Header.Get("Content-Type"))
	if err != nil {
		h.logger.WarnContext(ctx, "upload team logo failed", "team_id", r.PathValue("teamID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(updated))
}
