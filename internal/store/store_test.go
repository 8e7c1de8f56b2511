package store

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// fakeGateway keeps rows in memory and mimics the hosted backend's
// name-ordering on list calls closely enough for store semantics.
type fakeGateway struct {
	items      []gateway.ItemRow
	categories []gateway.CategoryRow
	entries    []gateway.EntryRow

	nextID int
	failOn map[string]error

	listItemCalls int
	listCatCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failOn: map[string]error{}}
}

func (f *fakeGateway) fail(op string) error {
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return nil
}

func (f *fakeGateway) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeGateway) ListItems(context.Context) ([]gateway.ItemRow, error) {
	f.listItemCalls++
	if err := f.fail("items.list"); err != nil {
		return nil, err
	}
	return append([]gateway.ItemRow(nil), f.items...), nil
}

func (f *fakeGateway) InsertItem(_ context.Context, payload gateway.ItemInsert) (gateway.ItemRow, error) {
	if err := f.fail("items.insert"); err != nil {
		return gateway.ItemRow{}, err
	}
	row := gateway.ItemRow{
		ID:                  f.id("itm"),
		Name:                payload.Name,
		CategoryID:          payload.CategoryID,
		Quantity:            payload.Quantity,
		Unit:                payload.Unit,
		NormalRequiredStock: payload.NormalRequiredStock,
		BusyRequiredStock:   payload.BusyRequiredStock,
		MinThreshold:        payload.MinThreshold,
		MaxThreshold:        payload.MaxThreshold,
		Notes:               payload.Notes,
		LastStocktakeAt:     payload.LastStocktakeAt,
	}
	f.items = append(f.items, row)
	return row, nil
}

func (f *fakeGateway) UpdateItem(_ context.Context, id string, patch gateway.ItemPatch) (gateway.ItemRow, error) {
	if err := f.fail("items.update"); err != nil {
		return gateway.ItemRow{}, err
	}
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			f.items[i].Name = *patch.Name
		}
		if patch.CategoryID != nil {
			f.items[i].CategoryID = *patch.CategoryID
		}
		if patch.Quantity != nil {
			f.items[i].Quantity = *patch.Quantity
		}
		if patch.Notes != nil {
			f.items[i].Notes = *patch.Notes
		}
		if patch.MinThreshold != nil {
			f.items[i].MinThreshold = *patch.MinThreshold
		}
		if patch.MaxThreshold != nil {
			f.items[i].MaxThreshold = *patch.MaxThreshold
		}
		if patch.LastStocktakeAt != nil {
			f.items[i].LastStocktakeAt = patch.LastStocktakeAt
		}
		return f.items[i], nil
	}
	return gateway.ItemRow{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

func (f *fakeGateway) DeleteItem(_ context.Context, id string) error {
	if err := f.fail("items.delete"); err != nil {
		return err
	}
	kept := f.items[:0]
	for _, row := range f.items {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeGateway) ListCategories(context.Context) ([]gateway.CategoryRow, error) {
	f.listCatCalls++
	if err := f.fail("categories.list"); err != nil {
		return nil, err
	}
	return append([]gateway.CategoryRow(nil), f.categories...), nil
}

func (f *fakeGateway) InsertCategory(_ context.Context, payload gateway.CategoryInsert) (gateway.CategoryRow, error) {
	if err := f.fail("categories.insert"); err != nil {
		return gateway.CategoryRow{}, err
	}
	row := gateway.CategoryRow{ID: f.id("cat"), Name: payload.Name, ParentID: payload.ParentID}
	f.categories = append(f.categories, row)
	return row, nil
}

func (f *fakeGateway) UpdateCategory(_ context.Context, id string, patch gateway.CategoryPatch) (gateway.CategoryRow, error) {
	if err := f.fail("categories.update"); err != nil {
		return gateway.CategoryRow{}, err
	}
	for i := range f.categories {
		if f.categories[i].ID != id {
			continue
		}
		if patch.Name != nil {
			f.categories[i].Name = *patch.Name
		}
		f.categories[i].ParentID = patch.ParentID
		return f.categories[i], nil
	}
	return gateway.CategoryRow{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (f *fakeGateway) DeleteCategory(_ context.Context, id string) error {
	if err := f.fail("categories.delete"); err != nil {
		return err
	}
	kept := f.categories[:0]
	for _, row := range f.categories {
		if row.ID != id {
			kept = append(kept, row)
		}
	}
	f.categories = kept
	return nil
}

func (f *fakeGateway) ListEntries(context.Context) ([]gateway.EntryRow, error) {
	if err := f.fail("entries.list"); err != nil {
		return nil, err
	}
	return append([]gateway.EntryRow(nil), f.entries...), nil
}

func (f *fakeGateway) InsertEntry(_ context.Context, payload gateway.EntryInsert) (gateway.EntryRow, error) {
	if err := f.fail("entries.insert"); err != nil {
		return gateway.EntryRow{}, err
	}
	row := gateway.EntryRow{
		ID:        f.id("ent"),
		ItemID:    payload.ItemID,
		Quantity:  payload.Quantity,
		Notes:     payload.Notes,
		UserID:    payload.UserID,
		CreatedAt: time.Now(),
	}
	f.entries = append(f.entries, row)
	return row, nil
}

func newTestStore(t *testing.T) (*Store, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	s := New(gw, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	return s, gw
}

func signIn(s *Store) {
	s.SetCurrentUser(&inventory.User{ID: "usr-1", Email: "ana@example.com", Name: "ana", Role: inventory.RoleUser})
}

func TestFetchItemsReplacesCollection(t *testing.T) {
	s, gw := newTestStore(t)
	gw.items = []gateway.ItemRow{
		{ID: "itm-a", Name: "Beans", CategoryID: "cat-1", Quantity: 3},
		{ID: "itm-b", Name: "Rice", CategoryID: "cat-1", Quantity: 8},
	}

	if err := s.FetchItems(context.Background()); err != nil {
		t.Fatalf("fetch items: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].Name != "Beans" {
		t.Fatalf("unexpected items %+v", snap.Items)
	}
	if snap.Loading {
		t.Fatalf("loading should be cleared after fetch")
	}
	if snap.Err != "" {
		t.Fatalf("unexpected error state %q", snap.Err)
	}
}

func TestFetchItemsFailureKeepsCollection(t *testing.T) {
	s, gw := newTestStore(t)
	gw.items = []gateway.ItemRow{{ID: "itm-a", Name: "Beans"}}
	if err := s.FetchItems(context.Background()); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	gw.failOn["items.list"] = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")
	if err := s.FetchItems(context.Background()); err == nil {
		t.Fatalf("expected fetch failure")
	}

	snap := s.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != "itm-a" {
		t.Fatalf("failure must leave the previous collection, got %+v", snap.Items)
	}
	if snap.Err == "" {
		t.Fatalf("failure must record the error")
	}
	if snap.Loading {
		t.Fatalf("loading must clear on failure")
	}
}

func TestAddItemStampsAndAppends(t *testing.T) {
	s, gw := newTestStore(t)
	before := time.Now()

	item, err := s.AddItem(context.Background(), ItemDraft{
		Name: "Coffee", CategoryID: "cat-1", Quantity: 5, Unit: "kg",
		MinThreshold: 2, MaxThreshold: 20,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.ID == "" {
		t.Fatalf("expected gateway-assigned id")
	}
	if item.LastStocktakeAt == nil || item.LastStocktakeAt.Before(before) {
		t.Fatalf("add must stamp a fresh stocktake time, got %v", item.LastStocktakeAt)
	}

	snap := s.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != item.ID {
		t.Fatalf("stored row must be appended, got %+v", snap.Items)
	}

	// A follow-up fetch must not change what add already put in the cache.
	if err := s.FetchItems(context.Background()); err != nil {
		t.Fatalf("fetch after add: %v", err)
	}
	after := s.Snapshot()
	if len(after.Items) != 1 || after.Items[0] != snap.Items[0] {
		t.Fatalf("add then fetch diverged: %+v vs %+v", snap.Items, after.Items)
	}
	_ = gw
}

func TestAddItemFailureLeavesCollection(t *testing.T) {
	s, gw := newTestStore(t)
	gw.failOn["items.insert"] = pkgerrors.New(pkgerrors.CodeValidation, "bad row")

	if _, err := s.AddItem(context.Background(), ItemDraft{Name: "Coffee"}); err == nil {
		t.Fatalf("expected insert failure")
	}
	snap := s.Snapshot()
	if len(snap.Items) != 0 {
		t.Fatalf("failed add must not touch the collection")
	}
	if snap.Err == "" {
		t.Fatalf("failed add must record the error")
	}
}

func TestUpdateItemRefetches(t *testing.T) {
	s, gw := newTestStore(t)
	if _, err := s.AddItem(context.Background(), ItemDraft{Name: "Coffee", Quantity: 5}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	listCallsBefore := gw.listItemCalls

	name := "Coffee Beans"
	if err := s.UpdateItem(context.Background(), "itm-1", ItemUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gw.listItemCalls != listCallsBefore+1 {
		t.Fatalf("update must re-fetch, list calls %d -> %d", listCallsBefore, gw.listItemCalls)
	}
	snap := s.Snapshot()
	if snap.Items[0].Name != "Coffee Beans" {
		t.Fatalf("cache must reflect the stored update, got %+v", snap.Items)
	}
}

func TestDeleteItemRefetches(t *testing.T) {
	s, gw := newTestStore(t)
	if _, err := s.AddItem(context.Background(), ItemDraft{Name: "Coffee"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.DeleteItem(context.Background(), "itm-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Snapshot().Items) != 0 {
		t.Fatalf("deleted item must leave the cache")
	}
	if gw.listItemCalls == 0 {
		t.Fatalf("delete must re-fetch")
	}
}

func TestCategoryWriteCycleRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	parent, err := s.AddCategory(ctx, CategoryDraft{Name: "Beverages"})
	if err != nil {
		t.Fatalf("add parent: %v", err)
	}
	child, err := s.AddCategory(ctx, CategoryDraft{Name: "Soda", ParentID: &parent.ID})
	if err != nil {
		t.Fatalf("add child: %v", err)
	}

	// Reparenting Beverages under its own child must be rejected before any
	// remote call.
	err = s.UpdateCategory(ctx, parent.ID, CategoryUpdate{ParentID: &child.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected cycle rejection, got %v", err)
	}
	snap := s.Snapshot()
	for _, c := range snap.Categories {
		if c.ID == parent.ID && c.ParentID != nil {
			t.Fatalf("rejected update must not change the parent")
		}
	}
	if snap.Err != "" {
		t.Fatalf("write-time rejection must not set the store error, got %q", snap.Err)
	}
}

func TestUpdateCategoryRefetches(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	cat, err := s.AddCategory(ctx, CategoryDraft{Name: "Beverages"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	before := gw.listCatCalls

	name := "Drinks"
	if err := s.UpdateCategory(ctx, cat.ID, CategoryUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gw.listCatCalls != before+1 {
		t.Fatalf("update must re-fetch categories")
	}
	if got := s.Snapshot().Categories[0].Name; got != "Drinks" {
		t.Fatalf("unexpected category name %q", got)
	}

	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Snapshot().Categories) != 0 {
		t.Fatalf("deleted category must leave the cache")
	}
}

func TestAddEntryRequiresUser(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddEntry(context.Background(), EntryDraft{ItemID: "itm-1", Quantity: 3})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized without a user, got %v", err)
	}
}

func TestRecordCountOfTwelve(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	signIn(s)

	item, err := s.AddItem(ctx, ItemDraft{Name: "Coffee", Quantity: 5, MinThreshold: 2, MaxThreshold: 40})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	stampBefore := *item.LastStocktakeAt
	time.Sleep(5 * time.Millisecond)

	result, err := s.RecordCount(ctx, EntryDraft{ItemID: item.ID, Quantity: 12, Notes: "friday count"})
	if err != nil {
		t.Fatalf("record count: %v", err)
	}
	if !result.ItemUpdated {
		t.Fatalf("expected the item update to commit")
	}
	if result.Entry.Quantity != 12 || result.Entry.UserID != "usr-1" {
		t.Fatalf("unexpected entry %+v", result.Entry)
	}

	snap := s.Snapshot()
	if len(snap.Entries) != 1 {
		t.Fatalf("exactly one entry must be appended, got %d", len(snap.Entries))
	}
	if snap.Items[0].Quantity != 12 {
		t.Fatalf("item quantity must move to 12, got %d", snap.Items[0].Quantity)
	}
	if !snap.Items[0].LastStocktakeAt.After(stampBefore) {
		t.Fatalf("stocktake timestamp must advance")
	}
	_ = gw
}

func TestRecordCountPartialFailure(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	signIn(s)

	item, err := s.AddItem(ctx, ItemDraft{Name: "Coffee", Quantity: 5})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	gw.failOn["items.update"] = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")
	result, err := s.RecordCount(ctx, EntryDraft{ItemID: item.ID, Quantity: 12})
	if err != nil {
		t.Fatalf("partial failure must not fail the request: %v", err)
	}
	if result.ItemUpdated {
		t.Fatalf("item update did not commit, flag must say so")
	}
	if result.Entry.ID == "" {
		t.Fatalf("the entry itself must be recorded")
	}
	if len(gw.entries) != 1 {
		t.Fatalf("no compensation: the entry stays, got %d", len(gw.entries))
	}
}

func TestRecordCountEntryFailure(t *testing.T) {
	s, gw := newTestStore(t)
	signIn(s)
	gw.failOn["entries.insert"] = pkgerrors.New(pkgerrors.CodeDependency, "gateway down")

	if _, err := s.RecordCount(context.Background(), EntryDraft{ItemID: "itm-1", Quantity: 12}); err == nil {
		t.Fatalf("entry insert failure must fail the count")
	}
	if len(gw.entries) != 0 {
		t.Fatalf("no entry may be recorded")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s, gw := newTestStore(t)
	gw.items = []gateway.ItemRow{{ID: "itm-a", Name: "Beans"}}
	if err := s.FetchItems(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	snap := s.Snapshot()
	snap.Items[0].Name = "Mutated"
	if s.Snapshot().Items[0].Name != "Beans" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestSetters(t *testing.T) {
	s, _ := newTestStore(t)

	selected := "cat-1"
	s.SetSelectedCategory(&selected)
	s.SetAddItemModalOpen(true)
	s.SetAddCategoryModalOpen(true)
	s.SetErr("boom")

	snap := s.Snapshot()
	if snap.SelectedCategory == nil || *snap.SelectedCategory != "cat-1" {
		t.Fatalf("unexpected selected category %v", snap.SelectedCategory)
	}
	if !snap.AddItemModalOpen || !snap.AddCategoryModalOpen {
		t.Fatalf("modal flags not set")
	}
	if snap.Err != "boom" {
		t.Fatalf("unexpected err %q", snap.Err)
	}

	s.SetSelectedCategory(nil)
	s.SetCurrentUser(nil)
	snap = s.Snapshot()
	if snap.SelectedCategory != nil || snap.CurrentUser != nil {
		t.Fatalf("nil setters must clear state")
	}
}
