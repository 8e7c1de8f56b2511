package store

import (
	"time"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
)

// The gateway speaks snake_case column names and this package speaks
// inventory types. Every translation between the two lives here and nowhere
// else.

// ItemDraft is the input for creating an item. The store stamps
// LastStocktakeAt at insert time.
type ItemDraft struct {
	Name                string
	CategoryID          string
	Quantity            int
	Unit                string
	NormalRequiredStock int
	BusyRequiredStock   int
	MinThreshold        int
	MaxThreshold        int
	Notes               string
}

// ItemUpdate carries only the fields an update touches.
type ItemUpdate struct {
	Name                *string
	CategoryID          *string
	Quantity            *int
	Unit                *string
	NormalRequiredStock *int
	BusyRequiredStock   *int
	MinThreshold        *int
	MaxThreshold        *int
	Notes               *string
	LastStocktakeAt     *time.Time
}

// CategoryDraft is the input for creating a category.
type CategoryDraft struct {
	Name     string
	ParentID *string
}

// CategoryUpdate carries the fields a category update touches. ParentID is
// always sent so a category can be detached to top level.
type CategoryUpdate struct {
	Name     *string
	ParentID *string
}

// EntryDraft is the input for recording a count. The store attaches the
// current user's id.
type EntryDraft struct {
	ItemID   string
	Quantity int
	Notes    string
}

func itemFromRow(row gateway.ItemRow) inventory.Item {
	return inventory.Item{
		ID:                  row.ID,
		Name:                row.Name,
		CategoryID:          row.CategoryID,
		Quantity:            row.Quantity,
		Unit:                row.Unit,
		NormalRequiredStock: row.NormalRequiredStock,
		BusyRequiredStock:   row.BusyRequiredStock,
		MinThreshold:        row.MinThreshold,
		MaxThreshold:        row.MaxThreshold,
		Notes:               row.Notes,
		LastStocktakeAt:     row.LastStocktakeAt,
	}
}

func itemsFromRows(rows []gateway.ItemRow) []inventory.Item {
	items := make([]inventory.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromRow(row))
	}
	return items
}

func itemInsertFromDraft(draft ItemDraft, stamp time.Time) gateway.ItemInsert {
	return gateway.ItemInsert{
		Name:                draft.Name,
		CategoryID:          draft.CategoryID,
		Quantity:            draft.Quantity,
		Unit:                draft.Unit,
		NormalRequiredStock: draft.NormalRequiredStock,
		BusyRequiredStock:   draft.BusyRequiredStock,
		MinThreshold:        draft.MinThreshold,
		MaxThreshold:        draft.MaxThreshold,
		Notes:               draft.Notes,
		LastStocktakeAt:     &stamp,
	}
}

func itemPatchFromUpdate(update ItemUpdate) gateway.ItemPatch {
	return gateway.ItemPatch{
		Name:                update.Name,
		CategoryID:          update.CategoryID,
		Quantity:            update.Quantity,
		Unit:                update.Unit,
		NormalRequiredStock: update.NormalRequiredStock,
		BusyRequiredStock:   update.BusyRequiredStock,
		MinThreshold:        update.MinThreshold,
		MaxThreshold:        update.MaxThreshold,
		Notes:               update.Notes,
		LastStocktakeAt:     update.LastStocktakeAt,
	}
}

func categoryFromRow(row gateway.CategoryRow) inventory.Category {
	return inventory.Category{
		ID:       row.ID,
		Name:     row.Name,
		ParentID: row.ParentID,
	}
}

func categoriesFromRows(rows []gateway.CategoryRow) []inventory.Category {
	categories := make([]inventory.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, categoryFromRow(row))
	}
	return categories
}

func categoryInsertFromDraft(draft CategoryDraft) gateway.CategoryInsert {
	return gateway.CategoryInsert{
		Name:     draft.Name,
		ParentID: draft.ParentID,
	}
}

func categoryPatchFromUpdate(update CategoryUpdate) gateway.CategoryPatch {
	return gateway.CategoryPatch{
		Name:     update.Name,
		ParentID: update.ParentID,
	}
}

func entryFromRow(row gateway.EntryRow) inventory.StocktakeEntry {
	return inventory.StocktakeEntry{
		ID:        row.ID,
		ItemID:    row.ItemID,
		Quantity:  row.Quantity,
		Notes:     row.Notes,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
	}
}

func entriesFromRows(rows []gateway.EntryRow) []inventory.StocktakeEntry {
	entries := make([]inventory.StocktakeEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries
}

func entryInsertFromDraft(draft EntryDraft, userID string) gateway.EntryInsert {
	return gateway.EntryInsert{
		ItemID:   draft.ItemID,
		Quantity: draft.Quantity,
		Notes:    draft.Notes,
		UserID:   userID,
	}
}
