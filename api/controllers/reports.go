package controllers

import (
	"net/http"
	"strings"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// StockLevelsReport answers every item with its status, optionally narrowed
// to one category. Exports are out of scope; the report is view-only.
func StockLevelsReport(st ItemStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := st.FetchItems(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := st.FetchCategories(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snap := st.Snapshot()
		names := categoryNameIndex(snap.Categories)
		categoryID := strings.TrimSpace(r.URL.Query().Get("category_id"))

		views := make([]itemView, 0, len(snap.Items))
		for _, item := range snap.Items {
			if categoryID != "" && item.CategoryID != categoryID {
				continue
			}
			views = append(views, viewOfItem(item, names))
		}
		responses.WriteSuccess(w, map[string]any{"items": views})
	}
}
