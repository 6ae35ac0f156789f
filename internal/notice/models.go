package notice

import (
	"io"
	"time"
)

// Category is one of KnownCategories or a free-form custom value.
type Category string

const (
	CategoryExam       Category = "exam"
	CategorySports     Category = "sports"
	CategoryEvents     Category = "events"
	CategoryHackathons Category = "hackathons"
	CategorySymposium  Category = "symposium"
	CategoryDepartment Category = "department"
	CategoryPlacement  Category = "placement"
	CategoryCOE        Category = "coe"
	CategoryOffice     Category = "office"
	CategoryStaff      Category = "staff" // Reserved: hidden from students
)

// CategoryOther selects the custom category entered alongside it.
const CategoryOther = "other"

var KnownCategories = []Category{
	CategoryExam, CategorySports, CategoryEvents, CategoryHackathons, CategorySymposium,
	CategoryDepartment, CategoryPlacement, CategoryCOE, CategoryOffice, CategoryStaff,
}

// Audience values accepted in VisibleTo.
const (
	AudienceStudent = "student"
	AudienceTeacher = "teacher"
	AudienceAdmin   = "admin"
	AudienceAll     = "all"
)

type AttachmentKind string

const (
	AttachmentPDF   AttachmentKind = "pdf"
	AttachmentImage AttachmentKind = "image"
)

type Attachment struct {
	URL  string         `json:"url"`
	Name string         `json:"name"`
	Kind AttachmentKind `json:"kind"`
}

// ViewEvent registers that a user opened a notice. There is at most one per
// (notice, uid) in each storage source.
type ViewEvent struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	SeenAt      time.Time `json:"seen_at"`
}

type Notice struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      Category    `json:"category"`
	Department    string      `json:"department,omitempty"`
	VisibleTo     []string    `json:"visible_to"`
	TargetUIDs    []string    `json:"target_uids,omitempty"`
	Attachment    *Attachment `json:"attachment,omitempty"`
	CreatedBy     string      `json:"created_by"`
	CreatedByName string      `json:"created_by_name"`
	CreatedAt     time.Time   `json:"created_at"`
	ExpiryDate    *time.Time  `json:"expiry_date,omitempty"`
	IsPinned      bool        `json:"is_pinned"`
	IsApproved    bool        `json:"is_approved"`
	// LegacyViewers are the view events embedded in older notice documents.
	LegacyViewers []ViewEvent `json:"-"`
}

func (n Notice) Expired(now time.Time) bool {
	return n.ExpiryDate != nil && n.ExpiryDate.Before(now)
}

// Upload is an attachment file on its way to the blob store.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}
