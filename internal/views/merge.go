package views

import (
	"sort"

	"CollegeNoticeBoard/internal/directory"
	"CollegeNoticeBoard/internal/notice"
)

// Merge combines legacy and live view events into one viewer per uid. Live
// events replace legacy ones for the same uid. Names and roles come from
// the directory when it has them, then from the event, then a placeholder.
// The result is ordered by most recent view, then uid.
func Merge(legacy, live []notice.ViewEvent, dir map[string]directory.Profile) []MergedViewer {
	byUID := make(map[string]MergedViewer, len(legacy)+len(live))
	for _, src := range [][]notice.ViewEvent{legacy, live} {
		for _, ev := range src {
			if ev.UID == "" {
				continue
			}
			byUID[ev.UID] = label(ev, dir[ev.UID])
		}
	}

	out := make([]MergedViewer, 0, len(byUID))
	for _, v := range byUID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SeenAt.Equal(out[j].SeenAt) {
			return out[i].SeenAt.After(out[j].SeenAt)
		}
		return out[i].UID < out[j].UID
	})
	return out
}

func label(ev notice.ViewEvent, p directory.Profile) MergedViewer {
	return MergedViewer{
		UID:         ev.UID,
		DisplayName: firstNonEmpty(p.DisplayName, ev.DisplayName, PlaceholderName),
		Role:        firstNonEmpty(p.Role, ev.Role, UnknownRole),
		SeenAt:      ev.SeenAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NeedsName reports whether v still carries no real name.
func NeedsName(v MergedViewer) bool {
	switch v.DisplayName {
	case "", PlaceholderName, LegacyName, UnknownName:
		return true
	}
	return false
}

// Unnamed lists the uids of viewers that need a name, in viewer order.
func Unnamed(viewers []MergedViewer) []string {
	var ids []string
	for _, v := range viewers {
		if NeedsName(v) {
			ids = append(ids, v.UID)
		}
	}
	return ids
}

// Contains reports whether uid is among viewers.
func Contains(viewers []MergedViewer, uid string) bool {
	for _, v := range viewers {
		if v.UID == uid {
			return true
		}
	}
	return false
}
