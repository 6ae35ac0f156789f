package notice

import (
	"sort"
	"strings"
	"time"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// ListFilter narrows an already visible feed for browsing.
type ListFilter struct {
	Search     string
	Category   string // "" or "all" matches every category
	Department string // "" or "all" matches every department
	Sort       string
	From       *time.Time
	To         *time.Time
	ActiveOnly bool
}

func (f ListFilter) matches(n Notice, now time.Time) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Description), q) {
			return false
		}
	}
	if f.Category != "" && f.Category != "all" && string(n.Category) != f.Category {
		return false
	}
	if f.Department != "" && f.Department != "all" && n.Department != f.Department {
		return false
	}
	if f.From != nil && n.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && n.CreatedAt.After(*f.To) {
		return false
	}
	if f.ActiveOnly && n.Expired(now) {
		return false
	}
	return true
}

// Apply returns the notices of feed that match f. Pinned notices stay
// first; SortOldest reverses recency inside each pin group.
func (f ListFilter) Apply(feed []Notice, now time.Time) []Notice {
	out := make([]Notice, 0, len(feed))
	for _, n := range feed {
		if f.matches(n, now) {
			out = append(out, n)
		}
	}
	if f.Sort == SortOldest {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.IsPinned != b.IsPinned {
				return a.IsPinned
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	}
	return out
}
