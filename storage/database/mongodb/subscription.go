package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
)

type subscriptionDoc struct {
	ID           string    `bson:"_id"`
	SubscriberID string    `bson:"subscriber_id"`
	ChannelID    string    `bson:"channel_id"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d subscriptionDoc) unboil() subscription.Subscription {
	return subscription.Subscription{
		ID:           d.ID,
		SubscriberID: d.SubscriberID,
		ChannelID:    d.ChannelID,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type subscriptionRepository struct {
	db *DB
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (repo subscriptionRepository) subscriptions() *mongo.Collection {
	return repo.db.col(colSubscriptions)
}

func (repo subscriptionRepository) GetSubscription(ctx context.Context, subscriberID, channelID string) (subscription.Subscription, error) {
	var d subscriptionDoc
	err := repo.subscriptions().FindOne(ctx, bson.M{"subscriber_id": subscriberID, "channel_id": channelID}).Decode(&d)
	if err != nil {
		return subscription.Subscription{}, trapNoDocsErr(err, subscription.ErrNotFound, "finding subscription")
	}
	return d.unboil(), nil
}

func (repo subscriptionRepository) CreateSubscription(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	sub.ID = newID()
	d := subscriptionDoc{ID: sub.ID, SubscriberID: sub.SubscriberID, ChannelID: sub.ChannelID, CreatedAt: sub.CreatedAt.UTC()}
	if _, err := repo.subscriptions().InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subscription.Subscription{}, core.NewConflictError("already subscribed")
		}
		return subscription.Subscription{}, errors.Wrap(err, "inserting subscription")
	}
	return sub, nil
}

func (repo subscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.subscriptions(), id, subscription.ErrNotFound)
}

// listChannels pages the subscriptions matching filter and summarizes the user under userField of each.
// backOf, when set, flags the users that backOf subscribes to.
func (repo subscriptionRepository) listChannels(ctx context.Context, filter bson.M, userField func(subscriptionDoc) string, backOf string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	docs, total, err := findPage[subscriptionDoc](ctx, repo.subscriptions(), filter, sort, page, false)
	if err != nil {
		return core.Page[subscription.ChannelSummary]{}, err
	}
	ids := pluck(docs, userField)
	users, err := repo.db.summaries(ctx, ids...)
	if err != nil {
		return core.Page[subscription.ChannelSummary]{}, err
	}

	counts := make(map[string]int64, len(ids))
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"channel_id": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$channel_id", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := repo.subscriptions().Aggregate(ctx, pipeline)
	if err != nil {
		return core.Page[subscription.ChannelSummary]{}, errors.Wrap(err, "counting subscribers")
	}
	var groups []struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	if err = cur.All(ctx, &groups); err != nil {
		return core.Page[subscription.ChannelSummary]{}, errors.Wrap(err, "decoding subscriber counts")
	}
	for _, g := range groups {
		counts[g.ID] = g.N
	}

	back := make(map[string]bool)
	if backOf != "" {
		opts := options.Find().SetProjection(bson.M{"channel_id": 1})
		backDocs, err := findAll[subscriptionDoc](ctx, repo.subscriptions(), bson.M{"subscriber_id": backOf, "channel_id": bson.M{"$in": ids}}, opts)
		if err != nil {
			return core.Page[subscription.ChannelSummary]{}, err
		}
		for _, d := range backDocs {
			back[d.ChannelID] = true
		}
	}

	summaries := make([]subscription.ChannelSummary, 0, len(docs))
	for _, id := range ids {
		usr, ok := users[id]
		if !ok {
			continue
		}
		summaries = append(summaries, subscription.ChannelSummary{
			UserSummary:      *usr,
			SubscribersCount: counts[id],
			IsSubscribed:     backOf == "" || back[id],
		})
	}
	return core.NewPage(summaries, total, page), nil
}

func (repo subscriptionRepository) ListSubscribers(ctx context.Context, channelID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	return repo.listChannels(ctx, bson.M{"channel_id": channelID},
		func(d subscriptionDoc) string { return d.SubscriberID }, channelID, page)
}

func (repo subscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	return repo.listChannels(ctx, bson.M{"subscriber_id": subscriberID},
		func(d subscriptionDoc) string { return d.ChannelID }, "", page)
}

func (repo subscriptionRepository) ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"subscriber_id": 1})
	docs, err := findAll[subscriptionDoc](ctx, repo.subscriptions(), bson.M{"channel_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	return pluck(docs, func(d subscriptionDoc) string { return d.SubscriberID }), nil
}
