package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/internal/store"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// stubStore satisfies the store-facing controller interfaces with canned
// state and recorded calls.
type stubStore struct {
	state store.State

	fetchItemsErr      error
	fetchCategoriesErr error
	fetchEntriesErr    error

	addedItem     *store.ItemDraft
	addItemResult inventory.Item
	addItemErr    error

	updatedItemID string
	updatedItem   *store.ItemUpdate
	updateItemErr error

	deletedItemID string
	deleteItemErr error

	addedCategory     *store.CategoryDraft
	addCategoryResult inventory.Category
	addCategoryErr    error

	updatedCategoryID string
	updatedCategory   *store.CategoryUpdate
	updateCategoryErr error

	deletedCategoryID string
	deleteCategoryErr error

	recordedCount  *store.EntryDraft
	recordResult   store.CountResult
	recordCountErr error
}

func (s *stubStore) Snapshot() store.State { return s.state }

func (s *stubStore) CurrentUser() *inventory.User { return s.state.CurrentUser }

func (s *stubStore) SetCurrentUser(user *inventory.User) { s.state.CurrentUser = user }

func (s *stubStore) SetSelectedCategory(id *string) { s.state.SelectedCategory = id }

func (s *stubStore) FetchItems(context.Context) error { return s.fetchItemsErr }

func (s *stubStore) FetchCategories(context.Context) error { return s.fetchCategoriesErr }

func (s *stubStore) FetchEntries(context.Context) error { return s.fetchEntriesErr }

func (s *stubStore) AddItem(_ context.Context, draft store.ItemDraft) (inventory.Item, error) {
	s.addedItem = &draft
	return s.addItemResult, s.addItemErr
}

func (s *stubStore) UpdateItem(_ context.Context, id string, update store.ItemUpdate) error {
	s.updatedItemID = id
	s.updatedItem = &update
	return s.updateItemErr
}

func (s *stubStore) DeleteItem(_ context.Context, id string) error {
	s.deletedItemID = id
	return s.deleteItemErr
}

func (s *stubStore) AddCategory(_ context.Context, draft store.CategoryDraft) (inventory.Category, error) {
	s.addedCategory = &draft
	return s.addCategoryResult, s.addCategoryErr
}

func (s *stubStore) UpdateCategory(_ context.Context, id string, update store.CategoryUpdate) error {
	s.updatedCategoryID = id
	s.updatedCategory = &update
	return s.updateCategoryErr
}

func (s *stubStore) DeleteCategory(_ context.Context, id string) error {
	s.deletedCategoryID = id
	return s.deleteCategoryErr
}

func (s *stubStore) RecordCount(_ context.Context, draft store.EntryDraft) (store.CountResult, error) {
	s.recordedCount = &draft
	return s.recordResult, s.recordCountErr
}

func ptr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope.Error.Code
}

// withURLParam plants a chi route parameter the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func sampleItems() []inventory.Item {
	last := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	return []inventory.Item{
		{ID: "itm-1", Name: "Coffee Beans", CategoryID: "cat-1", Quantity: 5, Unit: "kg", MinThreshold: 10, MaxThreshold: 50, LastStocktakeAt: &last},
		{ID: "itm-2", Name: "Sugar", CategoryID: "cat-2", Quantity: 60, Unit: "kg", MinThreshold: 10, MaxThreshold: 50, LastStocktakeAt: &last},
		{ID: "itm-3", Name: "Green Tea", CategoryID: "cat-1", Quantity: 20, Unit: "box", MinThreshold: 10, MaxThreshold: 50},
	}
}

func sampleCategoryList() []inventory.Category {
	return []inventory.Category{
		{ID: "cat-1", Name: "Beverages"},
		{ID: "cat-2", Name: "Dry Goods"},
		{ID: "cat-3", Name: "Soda", ParentID: ptr("cat-1")},
	}
}
