package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const worksheetsCollection = "worksheets"

const (
	WorksheetStatusCreated = "created"
	WorksheetStatusFailed  = "failed"
)

type Worksheet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Title     string             `bson:"title" json:"title"`
	ItemIDs   []string           `bson:"item_ids" json:"item_ids"`
	Labels    []string           `bson:"labels" json:"labels"`
	Status    string             `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type WorksheetRepo struct {
	coll *mongo.Collection
}

func NewWorksheetRepo(db *mongo.Database) *WorksheetRepo {
	coll := db.Collection(worksheetsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
	}
	coll.Indexes().CreateMany(ctx, indexes)

	return &WorksheetRepo{coll: coll}
}

func (r *WorksheetRepo) Record(ctx context.Context, w *Worksheet) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	result, err := r.coll.InsertOne(ctx, w)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		w.ID = oid
	}
	return nil
}

func (r *WorksheetRepo) List(ctx context.Context, limit int64) ([]Worksheet, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	worksheets := make([]Worksheet, 0)
	if err := cursor.All(ctx, &worksheets); err != nil {
		return nil, err
	}
	return worksheets, nil
}
