package notice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CollegeNoticeBoard/internal/core"
	"CollegeNoticeBoard/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "notices"

// Store is the persistence the notice service and feed rely on.
type Store interface {
	Create(ctx context.Context, n Notice) (string, error)
	Update(ctx context.Context, id string, fields bson.M) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Notice, error)
	List(ctx context.Context) ([]Notice, error)
	Watch(ctx context.Context) (store.Changes, error)
}

// feedOrder is pinned first, newest first. _id keeps ties stable.
var feedOrder = bson.D{{Key: "is_pinned", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

// NoticeRepository handles DB operations for notices.
type NoticeRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewNoticeRepository(db *mongo.Database) *NoticeRepository {
	return &NoticeRepository{collection: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the index backing the feed order.
func (r *NoticeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: feedOrder})
	return err
}

func (r *NoticeRepository) Create(ctx context.Context, n Notice) (string, error) {
	record := fromNotice(n)
	record.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID.Hex(), nil
}

func (r *NoticeRepository) Update(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrNotFound
	}
	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*Notice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNotFound
	}
	var record NoticeRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	n := toNotice(record, r.now())
	return &n, nil
}

// List returns every notice in feed order.
func (r *NoticeRepository) List(ctx context.Context) ([]Notice, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(feedOrder))
	if err != nil {
		return nil, err
	}
	var records []NoticeRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode notices: %w", err)
	}
	now := r.now()
	notices := make([]Notice, 0, len(records))
	for _, record := range records {
		notices = append(notices, toNotice(record, now))
	}
	return notices, nil
}

// Watch opens a change stream over the whole collection. Change streams
// require a replica set or sharded cluster.
func (r *NoticeRepository) Watch(ctx context.Context) (store.Changes, error) {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}
	return stream, nil
}
