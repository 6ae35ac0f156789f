package views

import (
	"context"
	"fmt"

	"CollegeNoticeBoard/internal/notice"
	"CollegeNoticeBoard/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists live view events.
type Store interface {
	Upsert(ctx context.Context, noticeID string, ev notice.ViewEvent) error
	ListByNotice(ctx context.Context, noticeID string) ([]notice.ViewEvent, error)
	WatchNotice(ctx context.Context, noticeID string) (store.Changes, error)
}

type ViewRepository struct {
	collection *mongo.Collection
}

func NewViewRepository(db *mongo.Database) *ViewRepository {
	return &ViewRepository{collection: db.Collection(CollectionName)}
}

func (r *ViewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "notice_id", Value: 1}, {Key: "seen_at", Value: -1}},
	})
	return err
}

// Upsert writes the event keyed by notice and uid. Calling it again for
// the same pair refreshes the one record.
func (r *ViewRepository) Upsert(ctx context.Context, noticeID string, ev notice.ViewEvent) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": recordID(noticeID, ev.UID)},
		bson.M{"$set": bson.M{
			"notice_id":    noticeID,
			"uid":          ev.UID,
			"display_name": ev.DisplayName,
			"role":         ev.Role,
			"seen_at":      primitive.NewDateTimeFromTime(ev.SeenAt),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ViewRepository) ListByNotice(ctx context.Context, noticeID string) ([]notice.ViewEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"notice_id": noticeID}, options.Find().SetSort(bson.D{{Key: "seen_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode views: %w", err)
	}
	events := make([]notice.ViewEvent, 0, len(records))
	for _, rec := range records {
		events = append(events, rec.event())
	}
	return events, nil
}

// WatchNotice streams changes to the views of one notice.
func (r *ViewRepository) WatchNotice(ctx context.Context, noticeID string) (store.Changes, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "fullDocument.notice_id", Value: noticeID}}}}}
	stream, err := r.collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}
	return stream, nil
}
