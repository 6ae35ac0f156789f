package notice

import (
	"context"
	"errors"
	"time"

	"CollegeNoticeBoard/internal/auth"
	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Attachments is the blob store holding notice files.
type Attachments interface {
	Upload(ctx context.Context, pathHint string, file Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

const attachmentPath = "notices"

// NoticeService owns notice writes and the attachment lifecycle.
type NoticeService struct {
	store     Store
	blobs     Attachments
	validator *Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewNoticeService(s Store, blobs Attachments, v *Validator, m *metrics.Metrics, logger *zap.Logger) *NoticeService {
	return &NoticeService{store: s, blobs: blobs, validator: v, metrics: m, logger: logger.Named("notices"), now: time.Now}
}

// Create validates and stores a new notice. An attachment uploaded before a
// failing write is left in the blob store.
func (s *NoticeService) Create(ctx context.Context, author auth.Identity, in NoticeInput, file *Upload) (string, error) {
	if !author.CanAuthor() {
		return "", core.ErrForbidden
	}
	if err := s.validator.Check(&in); err != nil {
		return "", err
	}

	n := Notice{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.category(),
		Department:    in.department(),
		VisibleTo:     in.VisibleTo,
		TargetUIDs:    in.TargetUIDs,
		CreatedBy:     author.UID,
		CreatedByName: author.DisplayName,
		CreatedAt:     s.now(),
		ExpiryDate:    in.ExpiryDate,
		IsPinned:      in.IsPinned,
		IsApproved:    true,
	}
	if n.CreatedByName == "" {
		n.CreatedByName = "Unknown"
	}
	if file != nil {
		attachment, err := s.upload(ctx, *file)
		if err != nil {
			return "", err
		}
		n.Attachment = attachment
	}

	id, err := s.store.Create(ctx, n)
	if err != nil {
		s.logger.Error("create notice", zap.String("title", n.Title), zap.Error(err))
		return "", core.NewWriteError("create notice", err)
	}
	s.logger.Info("notice created", zap.String("id", id), zap.String("category", string(n.Category)), zap.String("by", author.UID))
	return id, nil
}

// Update replaces the editable fields of a notice. Only the author or an
// admin may edit.
func (s *NoticeService) Update(ctx context.Context, editor auth.Identity, id string, in NoticeInput, file *Upload) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !mayModify(editor, *existing) {
		return core.ErrForbidden
	}
	if err := s.validator.Check(&in); err != nil {
		return err
	}

	fields := bson.M{
		"title":       in.Title,
		"description": in.Description,
		"category":    string(in.category()),
		"department":  in.department(),
		"visible_to":  in.VisibleTo,
		"target_uids": in.TargetUIDs,
		"is_pinned":   in.IsPinned,
		"expiry_date": nil,
	}
	if in.ExpiryDate != nil {
		fields["expiry_date"] = primitive.NewDateTimeFromTime(*in.ExpiryDate)
	}
	if file != nil {
		attachment, err := s.upload(ctx, *file)
		if err != nil {
			return err
		}
		fields["attachment_url"] = attachment.URL
		fields["attachment_name"] = attachment.Name
		fields["attachment_type"] = string(attachment.Kind)
	}

	if err := s.store.Update(ctx, id, fields); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		s.logger.Error("update notice", zap.String("id", id), zap.Error(err))
		return core.NewWriteError("update notice", err)
	}
	return nil
}

// Delete removes the attachment first, then the notice. A blob failure is
// logged and does not stop the delete. View events are left in place.
func (s *NoticeService) Delete(ctx context.Context, editor auth.Identity, id string) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !mayModify(editor, *existing) {
		return core.ErrForbidden
	}

	if existing.Attachment != nil && existing.Attachment.URL != "" {
		if err := s.blobs.Delete(ctx, existing.Attachment.URL); err != nil {
			s.metrics.AttachmentFailures.WithLabelValues("delete").Inc()
			s.logger.Warn("delete attachment", zap.String("id", id), zap.String("url", existing.Attachment.URL), zap.Error(err))
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		s.logger.Error("delete notice", zap.String("id", id), zap.Error(err))
		return core.NewWriteError("delete notice", err)
	}
	s.logger.Info("notice deleted", zap.String("id", id), zap.String("by", editor.UID))
	return nil
}

// List returns the visible feed for role narrowed by filter.
func (s *NoticeService) List(ctx context.Context, role auth.Role, filter ListFilter) ([]Notice, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := FilterVisible(all, role)
	SortFeed(visible)
	return filter.Apply(visible, s.now()), nil
}

// All returns every notice in feed order with no visibility filter.
func (s *NoticeService) All(ctx context.Context) ([]Notice, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	SortFeed(all)
	return all, nil
}

// Locate positions id within the visible feed for role.
func (s *NoticeService) Locate(ctx context.Context, role auth.Role, id string) (Position, error) {
	feed, err := s.List(ctx, role, ListFilter{})
	if err != nil {
		return Position{}, err
	}
	return Locate(feed, id), nil
}

// Stats aggregates every notice regardless of visibility.
func (s *NoticeService) Stats(ctx context.Context) (Stats, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(all, s.now()), nil
}

func (s *NoticeService) upload(ctx context.Context, file Upload) (*Attachment, error) {
	url, err := s.blobs.Upload(ctx, attachmentPath, file)
	if err != nil {
		s.metrics.AttachmentFailures.WithLabelValues("upload").Inc()
		s.logger.Error("upload attachment", zap.String("name", file.Name), zap.Error(err))
		return nil, core.NewWriteError("upload attachment", err)
	}
	return &Attachment{URL: url, Name: file.Name, Kind: KindOf(file.ContentType)}, nil
}

func mayModify(editor auth.Identity, n Notice) bool {
	return editor.IsAdmin() || (editor.UID != "" && editor.UID == n.CreatedBy)
}
