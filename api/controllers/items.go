package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/api/validators"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/internal/store"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

type itemRequest struct {
	Name                string `json:"name" validate:"required"`
	CategoryID          string `json:"category_id" validate:"required"`
	Quantity            int    `json:"quantity" validate:"gte=0"`
	Unit                string `json:"unit" validate:"required"`
	NormalRequiredStock int    `json:"normal_required_stock" validate:"gte=0"`
	BusyRequiredStock   int    `json:"busy_required_stock" validate:"gte=0"`
	MinThreshold        int    `json:"min_threshold" validate:"gte=0"`
	MaxThreshold        int    `json:"max_threshold" validate:"gtfield=MinThreshold"`
	Notes               string `json:"notes"`
}

type itemView struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	CategoryID          string     `json:"category_id"`
	CategoryName        string     `json:"category_name,omitempty"`
	Quantity            int        `json:"quantity"`
	Unit                string     `json:"unit"`
	NormalRequiredStock int        `json:"normal_required_stock"`
	BusyRequiredStock   int        `json:"busy_required_stock"`
	MinThreshold        int        `json:"min_threshold"`
	MaxThreshold        int        `json:"max_threshold"`
	Notes               string     `json:"notes,omitempty"`
	LastStocktakeAt     *time.Time `json:"last_stocktake_at"`
	Status              string     `json:"status"`
}

func viewOfItem(item inventory.Item, categoryNames map[string]string) itemView {
	return itemView{
		ID:                  item.ID,
		Name:                item.Name,
		CategoryID:          item.CategoryID,
		CategoryName:        categoryNames[item.CategoryID],
		Quantity:            item.Quantity,
		Unit:                item.Unit,
		NormalRequiredStock: item.NormalRequiredStock,
		BusyRequiredStock:   item.BusyRequiredStock,
		MinThreshold:        item.MinThreshold,
		MaxThreshold:        item.MaxThreshold,
		Notes:               item.Notes,
		LastStocktakeAt:     item.LastStocktakeAt,
		Status:              string(inventory.StatusFor(item.Quantity, item.MinThreshold, item.MaxThreshold)),
	}
}

// requireItemFields re-checks name and unit after trimming: a
// whitespace-only value satisfies the required tag but is still empty.
func requireItemFields(name, unit string) map[string]string {
	details := map[string]string{}
	if name == "" {
		details["name"] = "is required"
	}
	if unit == "" {
		details["unit"] = "is required"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func categoryNameIndex(categories []inventory.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

// ListItems refreshes both collections and answers item rows with category
// names and stock status, optionally filtered by category and search text.
func ListItems(st ItemStore, logg *logger.Logger) http.HandlerFunc {
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
		search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

		if categoryID == "" {
			st.SetSelectedCategory(nil)
		} else {
			st.SetSelectedCategory(&categoryID)
		}

		views := make([]itemView, 0, len(snap.Items))
		for _, item := range snap.Items {
			if categoryID != "" && item.CategoryID != categoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
				continue
			}
			views = append(views, viewOfItem(item, names))
		}
		responses.WriteSuccess(w, map[string]any{"items": views})
	}
}

// CreateItem validates the draft and adds it through the store.
func CreateItem(st ItemStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := validators.SanitizeString(payload.Name, 200)
		unit := validators.SanitizeString(payload.Unit, 50)
		if details := requireItemFields(name, unit); details != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details))
			return
		}

		item, err := st.AddItem(r.Context(), store.ItemDraft{
			Name:                name,
			CategoryID:          payload.CategoryID,
			Quantity:            payload.Quantity,
			Unit:                unit,
			NormalRequiredStock: payload.NormalRequiredStock,
			BusyRequiredStock:   payload.BusyRequiredStock,
			MinThreshold:        payload.MinThreshold,
			MaxThreshold:        payload.MaxThreshold,
			Notes:               validators.SanitizeString(payload.Notes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		names := categoryNameIndex(st.Snapshot().Categories)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"item": viewOfItem(item, names)})
	}
}

// UpdateItem replaces the item's editable fields.
func UpdateItem(st ItemStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := validators.SanitizeString(payload.Name, 200)
		unit := validators.SanitizeString(payload.Unit, 50)
		if details := requireItemFields(name, unit); details != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details))
			return
		}

		notes := validators.SanitizeString(payload.Notes, 2000)
		if err := st.UpdateItem(r.Context(), itemID, store.ItemUpdate{
			Name:                &name,
			CategoryID:          &payload.CategoryID,
			Quantity:            &payload.Quantity,
			Unit:                &unit,
			NormalRequiredStock: &payload.NormalRequiredStock,
			BusyRequiredStock:   &payload.BusyRequiredStock,
			MinThreshold:        &payload.MinThreshold,
			MaxThreshold:        &payload.MaxThreshold,
			Notes:               &notes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"updated": true})
	}
}

// DeleteItem removes the item.
func DeleteItem(st ItemStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}
		if err := st.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
