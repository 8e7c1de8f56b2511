package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stocktake-web/api/responses"
	"github.com/stocktakehq/stocktake-web/api/validators"
	"github.com/stocktakehq/stocktake-web/internal/categorytree"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/internal/store"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

type categoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id"`
}

type categoryView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

type categoryTreeView struct {
	categoryView
	Depth int `json:"depth"`
}

func viewOfCategory(c inventory.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
}

// ListCategories refreshes and answers the flat name-ordered collection.
func ListCategories(st CategoryStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.FetchCategories(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap := st.Snapshot()
		views := make([]categoryView, 0, len(snap.Categories))
		for _, c := range snap.Categories {
			views = append(views, viewOfCategory(c))
		}
		responses.WriteSuccess(w, map[string]any{"categories": views})
	}
}

// CategoryTree answers the depth-annotated flattened hierarchy. A corrupted
// parent chain is a state conflict, not a server fault.
func CategoryTree(st CategoryStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.FetchCategories(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := categorytree.Flatten(st.Snapshot().Categories)
		if err != nil {
			if errors.Is(err, categorytree.ErrCycle) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "category hierarchy contains a cycle"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]categoryTreeView, 0, len(rows))
		for _, row := range rows {
			views = append(views, categoryTreeView{categoryView: viewOfCategory(row.Category), Depth: row.Depth})
		}
		responses.WriteSuccess(w, map[string]any{"categories": views})
	}
}

// CreateCategory validates and adds a category.
func CreateCategory(st CategoryStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name := validators.SanitizeString(payload.Name, 200)
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"name": "is required"}))
			return
		}

		category, err := st.AddCategory(r.Context(), store.CategoryDraft{Name: name, ParentID: payload.ParentID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"category": viewOfCategory(category)})
	}
}

// UpdateCategory renames or reparents a category.
func UpdateCategory(st CategoryStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "categoryID")
		if categoryID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category id required"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name := validators.SanitizeString(payload.Name, 200)
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"name": "is required"}))
			return
		}

		if err := st.UpdateCategory(r.Context(), categoryID, store.CategoryUpdate{Name: &name, ParentID: payload.ParentID}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"updated": true})
	}
}

// DeleteCategory removes a category.
func DeleteCategory(st CategoryStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "categoryID")
		if categoryID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category id required"))
			return
		}
		if err := st.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
