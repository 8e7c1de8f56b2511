package store

import (
	"context"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
)

// FetchItems replaces the cached item collection with the gateway's,
// ordered by name. On failure the previous collection stays untouched.
func (s *Store) FetchItems(ctx context.Context) error {
	s.begin()
	rows, err := s.gw.ListItems(ctx)
	s.finish(err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Items = itemsFromRows(rows)
	s.mu.Unlock()
	return nil
}

// AddItem stamps the draft with a fresh stocktake timestamp, inserts it, and
// appends the stored row to the cached collection.
func (s *Store) AddItem(ctx context.Context, draft ItemDraft) (inventory.Item, error) {
	s.begin()
	row, err := s.gw.InsertItem(ctx, itemInsertFromDraft(draft, s.now()))
	s.finish(err)
	if err != nil {
		return inventory.Item{}, err
	}

	item := itemFromRow(row)
	s.mu.Lock()
	s.state.Items = append(s.state.Items, item)
	s.mu.Unlock()
	return item, nil
}

// UpdateItem patches the item remotely, then re-fetches the collection so
// the cache reflects whatever the gateway actually stored.
func (s *Store) UpdateItem(ctx context.Context, id string, update ItemUpdate) error {
	s.begin()
	_, err := s.gw.UpdateItem(ctx, id, itemPatchFromUpdate(update))
	s.finish(err)
	if err != nil {
		return err
	}
	return s.FetchItems(ctx)
}

// DeleteItem removes the item remotely, then re-fetches.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.begin()
	err := s.gw.DeleteItem(ctx, id)
	s.finish(err)
	if err != nil {
		return err
	}
	return s.FetchItems(ctx)
}
