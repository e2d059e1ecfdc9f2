package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prajjwal2051/Viewly-sub002/core/search"
)

type historyDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Query     string    `bson:"query"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d historyDoc) unboil() search.History {
	return search.History{ID: d.ID, UserID: d.UserID, Query: d.Query, CreatedAt: d.CreatedAt.UTC()}
}

type searchRepository struct {
	db *DB
}

var _ search.Repository = (*searchRepository)(nil) // interface compliance check

func NewSearchRepository(db *DB) *searchRepository {
	return &searchRepository{db: db}
}

func (repo searchRepository) searches() *mongo.Collection {
	return repo.db.col(colSearches)
}

func (repo searchRepository) SaveHistory(ctx context.Context, h search.History) error {
	update := bson.M{
		"$set":         bson.M{"created_at": h.CreatedAt.UTC()},
		"$setOnInsert": bson.M{"_id": newID()},
	}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := repo.searches().UpdateOne(ctx, bson.M{"user_id": h.UserID, "query": h.Query}, update, opts); err != nil {
		return errors.Wrap(err, "upserting search history")
	}

	stale, err := findAll[historyDoc](ctx, repo.searches(), bson.M{"user_id": h.UserID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
			SetSkip(search.MaxHistory).
			SetProjection(bson.M{"_id": 1}),
	)
	if err != nil || len(stale) == 0 {
		return err
	}
	ids := pluck(stale, func(d historyDoc) string { return d.ID })
	_, err = repo.searches().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "trimming search history")
}

func (repo searchRepository) GetHistoryEntry(ctx context.Context, id string) (search.History, error) {
	var d historyDoc
	if err := repo.searches().FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return search.History{}, trapNoDocsErr(err, search.ErrNotFound, "finding search history entry")
	}
	return d.unboil(), nil
}

func (repo searchRepository) ListHistory(ctx context.Context, userID string) ([]search.History, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(search.MaxHistory)
	docs, err := findAll[historyDoc](ctx, repo.searches(), bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	history := make([]search.History, 0, len(docs))
	for _, d := range docs {
		history = append(history, d.unboil())
	}
	return history, nil
}

func (repo searchRepository) DeleteHistoryEntry(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.searches(), id, search.ErrNotFound)
}

func (repo searchRepository) ClearHistory(ctx context.Context, userID string) error {
	_, err := repo.searches().DeleteMany(ctx, bson.M{"user_id": userID})
	return errors.Wrap(err, "clearing search history")
}
