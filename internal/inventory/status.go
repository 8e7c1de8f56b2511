package inventory

// Status classifies an item's stock level against its thresholds.
type Status string

const (
	StatusLow    Status = "low"
	StatusOver   Status = "over"
	StatusNormal Status = "normal"
)

// StatusFor returns exactly one status. Low wins below min, Over wins above
// max, everything in between (inclusive) is Normal.
func StatusFor(quantity, min, max int) Status {
	switch {
	case quantity < min:
		return StatusLow
	case quantity > max:
		return StatusOver
	default:
		return StatusNormal
	}
}

// NeedsStocktakeAfterDays is how stale an item's last count may get before
// the dashboard flags it.
const NeedsStocktakeAfterDays = 30
