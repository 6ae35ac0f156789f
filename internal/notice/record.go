package notice

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoticeRecord is the persisted shape of a notice in the notices collection.
type NoticeRecord struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	Title          string              `bson:"title"`
	Description    string              `bson:"description"`
	Category       string              `bson:"category"`
	Department     string              `bson:"department,omitempty"`
	VisibleTo      []string            `bson:"visible_to"`
	TargetUIDs     []string            `bson:"target_uids,omitempty"`
	AttachmentURL  string              `bson:"attachment_url,omitempty"`
	AttachmentName string              `bson:"attachment_name,omitempty"`
	AttachmentType string              `bson:"attachment_type,omitempty"`
	CreatedBy      string              `bson:"created_by"`
	CreatedByName  string              `bson:"created_by_name"`
	CreatedAt      primitive.DateTime  `bson:"created_at"`
	ExpiryDate     *primitive.DateTime `bson:"expiry_date,omitempty"`
	IsPinned       bool                `bson:"is_pinned"`
	IsApproved     bool                `bson:"is_approved"`
	ViewedBy       []ViewRecord        `bson:"viewed_by,omitempty"` // Legacy embedded viewers, read-only
}

// ViewRecord is a view event as stored inside legacy notice documents.
type ViewRecord struct {
	UID         string             `bson:"uid"`
	DisplayName string             `bson:"display_name"`
	Role        string             `bson:"role"`
	SeenAt      primitive.DateTime `bson:"seen_at"`
}

// toNotice converts a stored record into the domain entity. A missing
// creation time reads as now.
func toNotice(r NoticeRecord, now time.Time) Notice {
	n := Notice{
		ID:            r.ID.Hex(),
		Title:         r.Title,
		Description:   r.Description,
		Category:      Category(r.Category),
		Department:    r.Department,
		VisibleTo:     r.VisibleTo,
		TargetUIDs:    r.TargetUIDs,
		CreatedBy:     r.CreatedBy,
		CreatedByName: r.CreatedByName,
		CreatedAt:     now,
		IsPinned:      r.IsPinned,
		IsApproved:    r.IsApproved,
	}
	if r.CreatedAt != 0 {
		n.CreatedAt = r.CreatedAt.Time()
	}
	if r.ExpiryDate != nil {
		expiry := r.ExpiryDate.Time()
		n.ExpiryDate = &expiry
	}
	if r.AttachmentURL != "" {
		n.Attachment = &Attachment{
			URL:  r.AttachmentURL,
			Name: r.AttachmentName,
			Kind: AttachmentKind(r.AttachmentType),
		}
	}
	for _, v := range r.ViewedBy {
		n.LegacyViewers = append(n.LegacyViewers, ViewEvent{
			UID:         v.UID,
			DisplayName: v.DisplayName,
			Role:        v.Role,
			SeenAt:      v.SeenAt.Time(),
		})
	}
	return n
}

// fromNotice converts the domain entity into a record for insertion.
// Legacy viewers are never written back.
func fromNotice(n Notice) NoticeRecord {
	r := NoticeRecord{
		Title:         n.Title,
		Description:   n.Description,
		Category:      string(n.Category),
		Department:    n.Department,
		VisibleTo:     n.VisibleTo,
		TargetUIDs:    n.TargetUIDs,
		CreatedBy:     n.CreatedBy,
		CreatedByName: n.CreatedByName,
		CreatedAt:     primitive.NewDateTimeFromTime(n.CreatedAt),
		IsPinned:      n.IsPinned,
		IsApproved:    n.IsApproved,
	}
	if id, err := primitive.ObjectIDFromHex(n.ID); err == nil {
		r.ID = id
	}
	if n.ExpiryDate != nil {
		expiry := primitive.NewDateTimeFromTime(*n.ExpiryDate)
		r.ExpiryDate = &expiry
	}
	if n.Attachment != nil {
		r.AttachmentURL = n.Attachment.URL
		r.AttachmentName = n.Attachment.Name
		r.AttachmentType = string(n.Attachment.Kind)
	}
	return r
}

// KindOf classifies an upload by content type.
func KindOf(contentType string) AttachmentKind {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return AttachmentPDF
	}
	return AttachmentImage
}
