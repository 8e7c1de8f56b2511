package controllers

import (
	"net/http"
	"time"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

type dashboardSummary struct {
	TotalItems     int `json:"total_items"`
	LowStock       int `json:"low_stock"`
	OverStock      int `json:"over_stock"`
	NeedsStocktake int `json:"needs_stocktake"`
}

// DashboardSummary refreshes the items and answers the headline counters.
// An item needs a stocktake when its last count is missing or older than 30
// days.
func DashboardSummary(st ItemStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.FetchItems(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cutoff := time.Now().AddDate(0, 0, -inventory.NeedsStocktakeAfterDays)
		var summary dashboardSummary
		for _, item := range st.Snapshot().Items {
			summary.TotalItems++
			switch inventory.StatusFor(item.Quantity, item.MinThreshold, item.MaxThreshold) {
			case inventory.StatusLow:
				summary.LowStock++
			case inventory.StatusOver:
				summary.OverStock++
			}
			if item.LastStocktakeAt == nil || item.LastStocktakeAt.Before(cutoff) {
				summary.NeedsStocktake++
			}
		}
		responses.WriteSuccess(w, summary)
	}
}
