package notice

import "sort"

// Before orders pinned notices first, then newer before older, then by id.
func Before(a, b Notice) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortFeed orders notices in place by Before.
func SortFeed(notices []Notice) {
	sort.SliceStable(notices, func(i, j int) bool {
		return Before(notices[i], notices[j])
	})
}
