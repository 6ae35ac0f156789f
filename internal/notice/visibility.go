package notice

import "CollegeNoticeBoard/internal/auth"

// Visible reports whether a viewer with role may see n in the feed.
// Admins and teachers see everything. Any other role, including unknown
// ones, sees everything except staff notices. VisibleTo and TargetUIDs are
// not consulted here.
func Visible(n Notice, role auth.Role) bool {
	switch role {
	case auth.RoleAdmin, auth.RoleTeacher:
		return true
	default:
		return n.Category != CategoryStaff
	}
}

// FilterVisible keeps the notices role may see, preserving order.
func FilterVisible(notices []Notice, role auth.Role) []Notice {
	visible := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if Visible(n, role) {
			visible = append(visible, n)
		}
	}
	return visible
}
