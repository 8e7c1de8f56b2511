package controllers

import (
	"net/http"
	"time"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/api/validators"
	"github.com/stocktakehq/stocktake-web/internal/store"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

type countRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Notes    string `json:"notes"`
}

type entryView struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordCount commits a stocktake count. The entry and the item update are
// two independent gateway calls; when only the second fails the answer still
// succeeds and reports item_updated false.
func RecordCount(st CountStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload countRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := st.RecordCount(r.Context(), store.EntryDraft{
			ItemID:   payload.ItemID,
			Quantity: payload.Quantity,
			Notes:    validators.SanitizeString(payload.Notes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry": entryView{
				ID:        result.Entry.ID,
				ItemID:    result.Entry.ItemID,
				Quantity:  result.Entry.Quantity,
				Notes:     result.Entry.Notes,
				UserID:    result.Entry.UserID,
				CreatedAt: result.Entry.CreatedAt,
			},
			"item_updated": result.ItemUpdated,
		})
	}
}

// ListEntries refreshes and answers the stocktake history, newest first.
func ListEntries(st CountStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.FetchEntries(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap := st.Snapshot()
		views := make([]entryView, 0, len(snap.Entries))
		for _, e := range snap.Entries {
			views = append(views, entryView{
				ID:        e.ID,
				ItemID:    e.ItemID,
				Quantity:  e.Quantity,
				Notes:     e.Notes,
				UserID:    e.UserID,
				CreatedAt: e.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{"entries": views})
	}
}
