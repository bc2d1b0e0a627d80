package httpapi

import (
	"fmt"
	"net/http"

	"github.com/auctionarena/auction-arena/internal/usecase"
)

type importPlayersRequest struct {
	Rows []map[string]string `json:"rows" validate:"required,min=1"`
}

type skippedRowDTO struct {
	PlayerNumber int    `json:"player_number"`
	Name         string `json:"name,omitempty"`
	Reason       string `json:"reason"`
}

type importPlayersResponse struct {
	Imported int             `json:"imported"`
	Skipped  []skippedRowDTO `json:"skipped"`
}

// ImportPlayers takes spreadsheet rows already parsed client-side into
// header-keyed maps. Reruns of the same upload skip existing numbers instead
// of failing.
func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req importPlayersRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		h.logger.WarnContext(ctx, "import payload rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	rows := make([]usecase.ImportRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, usecase.ImportRow(row))
	}

	result, err := h.importService.ImportPlayers(ctx, principal.UserID, r.PathValue("auctionID"), rows)
	if err != nil {
		h.logger.WarnContext(ctx, "import players failed", "auction_id", r.PathValue("auctionID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	skipped := make([]skippedRowDTO, 0, len(result.Skipped))
	for _, row := range result.Skipped {
		skipped = append(skipped, skippedRowDTO{
			PlayerNumber: row.PlayerNumber,
			Name:         row.Name,
			Reason:       row.Reason,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, importPlayersResponse{
		Imported: result.Imported,
		Skipped:  skipped,
	})
}
