package models

// CategoryAll matches every category.
const CategoryAll = "all"

// ItemFilter selects the visible subset of a snapshot. Zero values match
// everything except resolved items, which stay hidden unless ShowResolved is set.
type ItemFilter struct {
	Institution  Institution
	Category     string
	Status       ItemStatus
	ShowResolved bool
}

func (f ItemFilter) Match(item Item) bool {
	if f.Institution != "" && item.Institution != f.Institution {
		return false
	}
	if !f.ShowResolved && item.Resolved {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll && item.Category != f.Category {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	return true
}

// Apply returns the matching items in input order.
func (f ItemFilter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// SplitByStatus partitions items into lost and found, keeping order.
func SplitByStatus(items []Item) (lost, found []Item) {
	lost = make([]Item, 0)
	found = make([]Item, 0)
	for _, item := range items {
		switch item.Status {
		case StatusLost:
			lost = append(lost, item)
		case StatusFound:
			found = append(found, item)
		}
	}
	return lost, found
}
