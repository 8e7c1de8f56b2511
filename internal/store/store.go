package store

import (
	"context"
	"sync"
	"time"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
)

// Gateway is the remote surface the store drives. *gateway.Client satisfies
// it; tests substitute a fake.
type Gateway interface {
	ListItems(ctx context.Context) ([]gateway.ItemRow, error)
	InsertItem(ctx context.Context, payload gateway.ItemInsert) (gateway.ItemRow, error)
	UpdateItem(ctx context.Context, id string, patch gateway.ItemPatch) (gateway.ItemRow, error)
	DeleteItem(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]gateway.CategoryRow, error)
	InsertCategory(ctx context.Context, payload gateway.CategoryInsert) (gateway.CategoryRow, error)
	UpdateCategory(ctx context.Context, id string, patch gateway.CategoryPatch) (gateway.CategoryRow, error)
	DeleteCategory(ctx context.Context, id string) error

	ListEntries(ctx context.Context) ([]gateway.EntryRow, error)
	InsertEntry(ctx context.Context, payload gateway.EntryInsert) (gateway.EntryRow, error)
}

// State is the process-wide client state. One operator per process; a
// restart resets it.
type State struct {
	Items      []inventory.Item
	Categories []inventory.Category
	Entries    []inventory.StocktakeEntry

	CurrentUser          *inventory.User
	SelectedCategory     *string
	AddItemModalOpen     bool
	AddCategoryModalOpen bool

	Loading bool
	Err     string
}

// Store holds State behind a lock and funnels every remote mutation through
// the gateway. Independent actions are not ordered against each other: the
// last response wins.
type Store struct {
	gw     Gateway
	logger *logger.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

// New builds an empty store around the given gateway.
func New(gw Gateway, logg *logger.Logger) *Store {
	return &Store{
		gw:     gw,
		logger: logg,
		now:    time.Now,
	}
}

// Snapshot returns a copy of the current state safe for rendering.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyStateLocked()
}

func (s *Store) copyStateLocked() State {
	out := s.state
	out.Items = append([]inventory.Item(nil), s.state.Items...)
	out.Categories = append([]inventory.Category(nil), s.state.Categories...)
	out.Entries = append([]inventory.StocktakeEntry(nil), s.state.Entries...)
	if s.state.CurrentUser != nil {
		u := *s.state.CurrentUser
		out.CurrentUser = &u
	}
	if s.state.SelectedCategory != nil {
		c := *s.state.SelectedCategory
		out.SelectedCategory = &c
	}
	return out
}

// begin marks an action in flight and clears the previous error.
func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()
}

// finish clears the in-flight flag and records err's message when non-nil.
func (s *Store) finish(err error) {
	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = err.Error()
	}
	s.mu.Unlock()
}

// SetCurrentUser installs (or clears) the signed-in operator.
func (s *Store) SetCurrentUser(user *inventory.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.state.CurrentUser = nil
		return
	}
	u := *user
	s.state.CurrentUser = &u
}

// CurrentUser returns a copy of the signed-in operator, if any.
func (s *Store) CurrentUser() *inventory.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CurrentUser == nil {
		return nil
	}
	u := *s.state.CurrentUser
	return &u
}

// SetSelectedCategory records the category filter the operator picked.
func (s *Store) SetSelectedCategory(id *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		s.state.SelectedCategory = nil
		return
	}
	v := *id
	s.state.SelectedCategory = &v
}

// SetAddItemModalOpen toggles the add-item modal flag.
func (s *Store) SetAddItemModalOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AddItemModalOpen = open
}

// SetAddCategoryModalOpen toggles the add-category modal flag.
func (s *Store) SetAddCategoryModalOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AddCategoryModalOpen = open
}

// SetErr records a user-facing error message.
func (s *Store) SetErr(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = message
}
