package gateway

import (
	"context"
	"net/url"
	"time"
)

const (
	tableItems   = "items"
	tableCats    = "categories"
	tableEntries = "stocktake_entries"
)

// ItemRow is the wire shape of an inventory item.
type ItemRow struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	CategoryID          string     `json:"category_id"`
	Quantity            int        `json:"quantity"`
	Unit                string     `json:"unit"`
	NormalRequiredStock int        `json:"normal_required_stock"`
	BusyRequiredStock   int        `json:"busy_required_stock"`
	MinThreshold        int        `json:"min_threshold"`
	MaxThreshold        int        `json:"max_threshold"`
	Notes               string     `json:"notes"`
	LastStocktakeAt     *time.Time `json:"last_stocktake_at"`
}

// ItemInsert is the wire payload for creating an item. The gateway assigns
// the id.
type ItemInsert struct {
	Name                string     `json:"name"`
	CategoryID          string     `json:"category_id"`
	Quantity            int        `json:"quantity"`
	Unit                string     `json:"unit"`
	NormalRequiredStock int        `json:"normal_required_stock"`
	BusyRequiredStock   int        `json:"busy_required_stock"`
	MinThreshold        int        `json:"min_threshold"`
	MaxThreshold        int        `json:"max_threshold"`
	Notes               string     `json:"notes"`
	LastStocktakeAt     *time.Time `json:"last_stocktake_at,omitempty"`
}

// ItemPatch carries only the fields an update touches. Pointer fields are
// omitted when nil so untouched columns keep their values.
type ItemPatch struct {
	Name                *string    `json:"name,omitempty"`
	CategoryID          *string    `json:"category_id,omitempty"`
	Quantity            *int       `json:"quantity,omitempty"`
	Unit                *string    `json:"unit,omitempty"`
	NormalRequiredStock *int       `json:"normal_required_stock,omitempty"`
	BusyRequiredStock   *int       `json:"busy_required_stock,omitempty"`
	MinThreshold        *int       `json:"min_threshold,omitempty"`
	MaxThreshold        *int       `json:"max_threshold,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	LastStocktakeAt     *time.Time `json:"last_stocktake_at,omitempty"`
}

// CategoryRow is the wire shape of a category. A null parent_id marks a
// top-level category.
type CategoryRow struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// CategoryInsert is the wire payload for creating a category.
type CategoryInsert struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// CategoryPatch carries the fields a category update touches.
type CategoryPatch struct {
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parent_id"`
}

// EntryRow is the wire shape of a stocktake entry.
type EntryRow struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryInsert is the wire payload for recording a count.
type EntryInsert struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
	UserID   string `json:"user_id"`
}

// ListItems returns every item ordered by name.
func (c *Client) ListItems(ctx context.Context) ([]ItemRow, error) {
	query := url.Values{}
	query.Set("order", "name.asc")
	var rows []ItemRow
	if err := c.restSelect(ctx, "items.list", tableItems, query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertItem creates an item and returns the stored row.
func (c *Client) InsertItem(ctx context.Context, payload ItemInsert) (ItemRow, error) {
	var row ItemRow
	if err := c.restInsert(ctx, "items.insert", tableItems, payload, &row); err != nil {
		return ItemRow{}, err
	}
	return row, nil
}

// UpdateItem patches an item and returns the stored row.
func (c *Client) UpdateItem(ctx context.Context, id string, patch ItemPatch) (ItemRow, error) {
	var row ItemRow
	if err := c.restUpdate(ctx, "items.update", tableItems, id, patch, &row); err != nil {
		return ItemRow{}, err
	}
	return row, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.restDelete(ctx, "items.delete", tableItems, id)
}

// ListCategories returns every category ordered by name.
func (c *Client) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	query := url.Values{}
	query.Set("order", "name.asc")
	var rows []CategoryRow
	if err := c.restSelect(ctx, "categories.list", tableCats, query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertCategory creates a category and returns the stored row.
func (c *Client) InsertCategory(ctx context.Context, payload CategoryInsert) (CategoryRow, error) {
	var row CategoryRow
	if err := c.restInsert(ctx, "categories.insert", tableCats, payload, &row); err != nil {
		return CategoryRow{}, err
	}
	return row, nil
}

// UpdateCategory patches a category and returns the stored row.
func (c *Client) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (CategoryRow, error) {
	var row CategoryRow
	if err := c.restUpdate(ctx, "categories.update", tableCats, id, patch, &row); err != nil {
		return CategoryRow{}, err
	}
	return row, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.restDelete(ctx, "categories.delete", tableCats, id)
}

// ListEntries returns stocktake entries, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]EntryRow, error) {
	query := url.Values{}
	query.Set("order", "created_at.desc")
	var rows []EntryRow
	if err := c.restSelect(ctx, "entries.list", tableEntries, query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertEntry records a stocktake count and returns the stored row.
func (c *Client) InsertEntry(ctx context.Context, payload EntryInsert) (EntryRow, error) {
	var row EntryRow
	if err := c.restInsert(ctx, "entries.insert", tableEntries, payload, &row); err != nil {
		return EntryRow{}, err
	}
	return row, nil
}
