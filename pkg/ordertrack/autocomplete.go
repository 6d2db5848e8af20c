package ordertrack

import (
	"strings"

	"github.com/hmkim/ordertrack/pkg/models"
)

// Suggestion is one autocomplete candidate for the order form. Picking it
// fills both the item code and the color in one step.
type Suggestion struct {
	ItemCode  string
	ColorName string
}

// SuggestItems matches term case-insensitively as a substring of the item
// name across the active items only; soft-deleted items never surface.
// limit <= 0 means unlimited.
func SuggestItems(items []models.InventoryItem, term string, limit int) []Suggestion {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []Suggestion
	for _, it := range items {
		if !it.Visible {
			continue
		}
		if !strings.Contains(strings.ToLower(it.ItemName), term) {
			continue
		}
		s := Suggestion{ItemCode: it.ItemName}
		if it.Color != nil {
			s.ColorName = *it.Color
		}
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
