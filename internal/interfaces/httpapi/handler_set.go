package httpapi

import (
	"fmt"
	"net/http"

	"github.com/auctionarena/auction-arena/internal/usecase"
)

type createSetRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Order int    `json:"order" validate:"gte=0"`
}

func (h *Handler) CreateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createSetRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "create set payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	created, err := h.setService.CreateSet(ctx, usecase.CreateSetInput{
		OrganizerID: principal.UserID,
		AuctionID:   r.PathValue("auctionID"),
		Name:        req.Name,
		Order:       req.Order,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create set failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, setToDTO(created))
}

func (h *Handler) ListSets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSets")
	defer span.End()

	sets, err := h.setService.ListSets(ctx, r.PathValue("auctionID"))
	if err != nil {
		h.logger.WarnContext(ctx, "list sets failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]setDTO, 0, len(sets))
	for _, item := range sets {
		out = append(out, setToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type updateSetRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Order *int    `json:"order" validate:"omitempty,gte=0"`
}

func (h *Handler) UpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req updateSetRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "update set payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	updated, err := h.setService.UpdateSet(ctx, principal.UserID, r.PathValue("setID"), usecase.SetPatch{
		Name:  req.Name,
		Order: req.Order,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update set failed", "set_id", r.PathValue("setID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, setToDTO(updated))
}

func (h *Handler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	if err := h.setService.DeleteSet(ctx, principal.UserID, r.PathValue("setID")); err != nil {
		h.logger.WarnContext(ctx, "delete set failed", "set_id", r.PathValue("setID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) StartSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	started, err := h.setService.StartSet(ctx, principal.UserID, r.PathValue("setID"))
	if err != nil {
		h.logger.WarnContext(ctx, "start set failed", "set_id", r.PathValue("setID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, setToDTO(started))
}

type completeSetResponse struct {
	Set              setDTO `json:"set"`
	UnsoldSetCreated bool   `json:"unsold_set_created"`
	MovedPlayers     int    `json:"moved_players"`
}

func (h *Handler) CompleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteSet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	result, err := h.setService.CompleteSet(ctx, principal.UserID, r.PathValue("setID"))
	if err != nil {
		h.logger.WarnContext(ctx, "complete set failed", "set_id", r.PathValue("setID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, completeSetResponse{
		Set:              setToDTO(result.Set),
		UnsoldSetCreated: result.UnsoldSetCreated,
		MovedPlayers:     result.MovedPlayers,
	})
}
