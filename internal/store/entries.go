package store

import (
	"context"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
)

// FetchEntries replaces the cached stocktake history, newest first.
func (s *Store) FetchEntries(ctx context.Context) error {
	s.begin()
	rows, err := s.gw.ListEntries(ctx)
	s.finish(err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Entries = entriesFromRows(rows)
	s.mu.Unlock()
	return nil
}

// AddEntry records a count under the current user and appends the stored row.
// It does not touch the counted item; RecordCount layers that on top.
func (s *Store) AddEntry(ctx context.Context, draft EntryDraft) (inventory.StocktakeEntry, error) {
	user := s.CurrentUser()
	if user == nil {
		return inventory.StocktakeEntry{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no signed-in user to attribute the count to")
	}

	s.begin()
	row, err := s.gw.InsertEntry(ctx, entryInsertFromDraft(draft, user.ID))
	s.finish(err)
	if err != nil {
		return inventory.StocktakeEntry{}, err
	}

	entry := entryFromRow(row)
	s.mu.Lock()
	s.state.Entries = append(s.state.Entries, entry)
	s.mu.Unlock()
	return entry, nil
}

// CountResult reports what a stocktake count actually committed.
type CountResult struct {
	Entry       inventory.StocktakeEntry
	ItemUpdated bool
}

// RecordCount commits a count in two independent gateway calls: insert the
// entry, then move the item's quantity and stocktake timestamp. There is no
// rollback: when the second call fails the entry stays recorded, the failure
// is logged, and the result reports ItemUpdated false.
func (s *Store) RecordCount(ctx context.Context, draft EntryDraft) (CountResult, error) {
	entry, err := s.AddEntry(ctx, draft)
	if err != nil {
		return CountResult{}, err
	}

	stamp := s.now()
	quantity := draft.Quantity
	if err := s.UpdateItem(ctx, draft.ItemID, ItemUpdate{
		Quantity:        &quantity,
		LastStocktakeAt: &stamp,
	}); err != nil {
		if s.logger != nil {
			ctx = s.logger.WithFields(ctx, map[string]any{
				"item_id":  draft.ItemID,
				"entry_id": entry.ID,
			})
			s.logger.Error(ctx, "count recorded but item update failed", err)
		}
		return CountResult{Entry: entry, ItemUpdated: false}, nil
	}
	return CountResult{Entry: entry, ItemUpdated: true}, nil
}
