package store

import (
	"context"

	"github.com/stocktakehq/stocktake-web/internal/categorytree"
	"github.com/stocktakehq/stocktake-web/internal/inventory"
	pkgerrors "github.com/stocktakehq/stocktake-web/pkg/errors"
)

// FetchCategories replaces the cached category collection with the
// gateway's, ordered by name. On failure the previous collection stays
// untouched.
func (s *Store) FetchCategories(ctx context.Context) error {
	s.begin()
	rows, err := s.gw.ListCategories(ctx)
	s.finish(err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Categories = categoriesFromRows(rows)
	s.mu.Unlock()
	return nil
}

// AddCategory inserts the category, rejecting a parent reference that would
// close a cycle over the cached collection, then re-fetches.
func (s *Store) AddCategory(ctx context.Context, draft CategoryDraft) (inventory.Category, error) {
	if err := s.checkParent("", draft.ParentID); err != nil {
		return inventory.Category{}, err
	}

	s.begin()
	row, err := s.gw.InsertCategory(ctx, categoryInsertFromDraft(draft))
	s.finish(err)
	if err != nil {
		return inventory.Category{}, err
	}

	category := categoryFromRow(row)
	if err := s.FetchCategories(ctx); err != nil {
		return category, err
	}
	return category, nil
}

// UpdateCategory patches the category, with the same write-time cycle check,
// then re-fetches.
func (s *Store) UpdateCategory(ctx context.Context, id string, update CategoryUpdate) error {
	if err := s.checkParent(id, update.ParentID); err != nil {
		return err
	}

	s.begin()
	_, err := s.gw.UpdateCategory(ctx, id, categoryPatchFromUpdate(update))
	s.finish(err)
	if err != nil {
		return err
	}
	return s.FetchCategories(ctx)
}

// DeleteCategory removes the category remotely, then re-fetches.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.begin()
	err := s.gw.DeleteCategory(ctx, id)
	s.finish(err)
	if err != nil {
		return err
	}
	return s.FetchCategories(ctx)
}

func (s *Store) checkParent(candidateID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	s.mu.RLock()
	categories := append([]inventory.Category(nil), s.state.Categories...)
	s.mu.RUnlock()
	if categorytree.WouldCycle(categories, candidateID, parentID) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category parent would create a cycle")
	}
	return nil
}
