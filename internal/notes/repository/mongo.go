package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/pkg/logger"
)

// MongoRepo implements the note Repository on a MongoDB collection. Per-id
// serialization comes from Mongo's single-document atomicity; every mutation
// is a single FindOneAndUpdate/UpdateOne against the live (deleted=false)
// record.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// index on deleted so List doesn't scan tombstones
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "deleted", Value: 1}}}
	if _, err := col.Indexes().CreateOne(context.Background(), idxModel); err != nil {
		logger.Warnf("failed to create notes deleted index: %v", err)
	}
	return &MongoRepo{col: col}
}

func liveFilter(id string) bson.M {
	return bson.M{"_id": id, "deleted": false}
}

func (m *MongoRepo) Create(ctx context.Context, n *notes.Note) (*notes.Note, error) {
	now := time.Now().UTC()
	stored := *n
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Deleted = false
	stored.Revision = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*notes.Note, error) {
	var n notes.Note
	err := m.col.FindOne(ctx, liveFilter(id)).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*notes.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"deleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*notes.Note{}
	for cur.Next(ctx) {
		var n notes.Note
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, id string, p notes.Patch) (*notes.Note, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Content != nil {
		set["content"] = *p.Content
	}
	if p.X != nil {
		set["x"] = *p.X
	}
	if p.Y != nil {
		set["y"] = *p.Y
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n notes.Note
	err := m.col.FindOneAndUpdate(ctx, liveFilter(id),
		bson.M{"$set": set, "$inc": bson.M{"revision": 1}}, opts).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.UpdateOne(ctx, liveFilter(id),
		bson.M{"$set": bson.M{"deleted": true, "updatedAt": time.Now().UTC()}, "$inc": bson.M{"revision": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
