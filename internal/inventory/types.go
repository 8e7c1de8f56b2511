package inventory

import (
	"strings"
	"time"
)

// Role is the coarse permission level carried on the session.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a raw role claim onto a known Role, defaulting to RoleUser.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Item is an inventory line. Quantities are whole units.
type Item struct {
	ID                  string
	Name                string
	CategoryID          string
	Quantity            int
	Unit                string
	NormalRequiredStock int
	BusyRequiredStock   int
	MinThreshold        int
	MaxThreshold        int
	Notes               string
	LastStocktakeAt     *time.Time
}

// Category is a node in the category hierarchy. A nil ParentID marks a
// top-level category.
type Category struct {
	ID       string
	Name     string
	ParentID *string
}

// StocktakeEntry is one recorded count. Entries are append-only.
type StocktakeEntry struct {
	ID        string
	ItemID    string
	Quantity  int
	Notes     string
	UserID    string
	CreatedAt time.Time
}

// User is the signed-in operator.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// NameFromEmail derives a display name from the login email's local part.
func NameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
