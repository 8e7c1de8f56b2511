package controllers

import (
	"context"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/internal/store"
)

// StateSource is the read side of the client state store.
type StateSource interface {
	Snapshot() store.State
	CurrentUser() *inventory.User
}

// ItemStore is the store surface the item handlers drive.
type ItemStore interface {
	StateSource
	SetSelectedCategory(id *string)
	FetchItems(ctx context.Context) error
	FetchCategories(ctx context.Context) error
	AddItem(ctx context.Context, draft store.ItemDraft) (inventory.Item, error)
	UpdateItem(ctx context.Context, id string, update store.ItemUpdate) error
	DeleteItem(ctx context.Context, id string) error
}

// CategoryStore is the store surface the category handlers drive.
type CategoryStore interface {
	StateSource
	FetchCategories(ctx context.Context) error
	AddCategory(ctx context.Context, draft store.CategoryDraft) (inventory.Category, error)
	UpdateCategory(ctx context.Context, id string, update store.CategoryUpdate) error
	DeleteCategory(ctx context.Context, id string) error
}

// CountStore is the store surface the stocktake handler drives.
type CountStore interface {
	StateSource
	FetchItems(ctx context.Context) error
	RecordCount(ctx context.Context, draft store.EntryDraft) (store.CountResult, error)
	FetchEntries(ctx context.Context) error
}
