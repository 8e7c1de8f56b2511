package categorytree

import (
	"errors"

	"github.com/stocktakehq/stocktake-web/internal/inventory"
)

// ErrCycle reports a parent chain that loops back on itself.
var ErrCycle = errors.New("category parent chain contains a cycle")

// Row is one flattened tree entry. Depth is 0 for top-level categories.
type Row struct {
	Category inventory.Category
	Depth    int
}

// ChildrenOf returns the direct children of parentID in source order. A nil
// parentID selects the top-level categories.
func ChildrenOf(categories []inventory.Category, parentID *string) []inventory.Category {
	children := make([]inventory.Category, 0)
	for _, c := range categories {
		switch {
		case parentID == nil:
			if c.ParentID == nil {
				children = append(children, c)
			}
		case c.ParentID != nil && *c.ParentID == *parentID:
			children = append(children, c)
		}
	}
	return children
}

// Flatten walks the hierarchy depth-first, siblings in source order, and
// returns (category, depth) rows. The walk is iterative with a visited set,
// so a corrupt parent chain surfaces as ErrCycle instead of looping.
func Flatten(categories []inventory.Category) ([]Row, error) {
	rows := make([]Row, 0, len(categories))
	visited := make(map[string]bool, len(categories))

	type frame struct {
		category inventory.Category
		depth    int
	}

	top := ChildrenOf(categories, nil)
	stack := make([]frame, 0, len(categories))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, frame{category: top[i], depth: 0})
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current.category.ID] {
			return nil, ErrCycle
		}
		visited[current.category.ID] = true
		rows = append(rows, Row{Category: current.category, Depth: current.depth})

		children := ChildrenOf(categories, &current.category.ID)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{category: children[i], depth: current.depth + 1})
		}
	}

	// Nodes never reached from the top level sit on a parent cycle (or
	// reference a parent the collection does not contain).
	for _, c := range categories {
		if !visited[c.ID] {
			if onCycle(categories, c) {
				return nil, ErrCycle
			}
		}
	}

	return rows, nil
}

// WouldCycle reports whether setting candidate's parent to parentID closes a
// loop over the given collection.
func WouldCycle(categories []inventory.Category, candidateID string, parentID *string) bool {
	if parentID == nil {
		return false
	}
	byID := make(map[string]inventory.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(categories))
	current := *parentID
	for {
		if current == candidateID {
			return true
		}
		if seen[current] {
			// Pre-existing loop above the candidate; the new edge does
			// not make it worse, but attaching to it is still invalid.
			return true
		}
		seen[current] = true
		parent, ok := byID[current]
		if !ok || parent.ParentID == nil {
			return false
		}
		current = *parent.ParentID
	}
}

func onCycle(categories []inventory.Category, start inventory.Category) bool {
	byID := make(map[string]inventory.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	seen := map[string]bool{start.ID: true}
	current := start
	for current.ParentID != nil {
		parent, ok := byID[*current.ParentID]
		if !ok {
			return false
		}
		if seen[parent.ID] {
			return true
		}
		seen[parent.ID] = true
		current = parent
	}
	return false
}
