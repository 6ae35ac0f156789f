package notice

import "time"

type Stats struct {
	Total       int              `json:"total"`
	ByCategory  map[Category]int `json:"by_category"`
	PinnedCount int              `json:"pinned_count"`
	RecentCount int              `json:"recent_count"` // Created on the current calendar day
}

// ComputeStats tallies the full, unfiltered notice set. Every known
// category is present, custom categories are added as extra keys.
func ComputeStats(all []Notice, now time.Time) Stats {
	stats := Stats{
		Total:      len(all),
		ByCategory: make(map[Category]int, len(KnownCategories)),
	}
	for _, c := range KnownCategories {
		stats.ByCategory[c] = 0
	}

	y, m, d := now.Date()
	for _, n := range all {
		stats.ByCategory[n.Category]++
		if n.IsPinned {
			stats.PinnedCount++
		}
		ny, nm, nd := n.CreatedAt.In(now.Location()).Date()
		if ny == y && nm == m && nd == d {
			stats.RecentCount++
		}
	}
	return stats
}
