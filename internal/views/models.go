// Package views is the view ledger: who has opened a notice, and when.
package views

import (
	"time"

	"CollegeNoticeBoard/internal/notice"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionName = "notice_views"

// Labels used when no better name or role is known. A viewer labelled
// with any of the names still needs resolving.
const (
	PlaceholderName = "User"
	LegacyName      = "Legacy User"
	UnknownName     = "Unknown User"
	UnknownRole     = "unknown"
)

// Record is one live view event. The id is "<noticeId>/<uid>", so a user
// has at most one record per notice.
type Record struct {
	ID          string             `bson:"_id"`
	NoticeID    string             `bson:"notice_id"`
	UID         string             `bson:"uid"`
	DisplayName string             `bson:"display_name"`
	Role        string             `bson:"role"`
	SeenAt      primitive.DateTime `bson:"seen_at"`
}

func recordID(noticeID, uid string) string {
	return noticeID + "/" + uid
}

func (r Record) event() notice.ViewEvent {
	return notice.ViewEvent{UID: r.UID, DisplayName: r.DisplayName, Role: r.Role, SeenAt: r.SeenAt.Time()}
}

// MergedViewer is a viewer after legacy and live events are combined and
// names resolved.
type MergedViewer struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	SeenAt      time.Time `json:"seen_at"`
}

// Detail is what a notice page shows: the notice with its neighbours and
// who has seen it.
type Detail struct {
	Position    notice.Position `json:"position"`
	Viewers     []MergedViewer  `json:"viewers"`
	RecordError string          `json:"record_error,omitempty"`
}
