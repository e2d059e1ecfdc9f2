package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
)

type tweetDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type tweetRepository struct {
	db *DB
}

var _ tweet.Repository = (*tweetRepository)(nil) // interface compliance check

func NewTweetRepository(db *DB) *tweetRepository {
	return &tweetRepository{db: db}
}

func (repo tweetRepository) tweets() *mongo.Collection {
	return repo.db.col(colTweets)
}

// populate converts docs with their owners, likes count & the viewer's like.
func (repo tweetRepository) populate(ctx context.Context, docs []tweetDoc, viewerID string) ([]tweet.Tweet, error) {
	owners, err := repo.db.summaries(ctx, pluck(docs, func(d tweetDoc) string { return d.OwnerID })...)
	if err != nil {
		return nil, err
	}
	counts, liked, err := repo.db.likeStats(ctx, "tweet_id", pluck(docs, func(d tweetDoc) string { return d.ID }), viewerID)
	if err != nil {
		return nil, err
	}
	tweets := make([]tweet.Tweet, 0, len(docs))
	for _, d := range docs {
		tweets = append(tweets, tweet.Tweet{
			ID:         d.ID,
			OwnerID:    d.OwnerID,
			Owner:      owners[d.OwnerID],
			Content:    d.Content,
			LikesCount: counts[d.ID],
			IsLiked:    liked[d.ID],
			CreatedAt:  d.CreatedAt.UTC(),
			UpdatedAt:  d.UpdatedAt.UTC(),
		})
	}
	return tweets, nil
}

func (repo tweetRepository) getTweet(ctx context.Context, id, viewerID string) (tweet.Tweet, error) {
	var d tweetDoc
	if err := repo.tweets().FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return tweet.Tweet{}, trapNoDocsErr(err, tweet.ErrNotFound, "finding tweet")
	}
	tweets, err := repo.populate(ctx, []tweetDoc{d}, viewerID)
	if err != nil {
		return tweet.Tweet{}, err
	}
	return tweets[0], nil
}

func (repo tweetRepository) CreateTweet(ctx context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	d := tweetDoc{ID: newID(), OwnerID: t.OwnerID, Content: t.Content, CreatedAt: t.CreatedAt.UTC(), UpdatedAt: t.UpdatedAt.UTC()}
	if _, err := repo.tweets().InsertOne(ctx, d); err != nil {
		return tweet.Tweet{}, errors.Wrap(err, "inserting tweet")
	}
	return repo.getTweet(ctx, d.ID, "")
}

func (repo tweetRepository) GetTweet(ctx context.Context, id string) (tweet.Tweet, error) {
	return repo.getTweet(ctx, id, "")
}

func (repo tweetRepository) QueryTweets(ctx context.Context, filter tweet.QueryFilter, page core.PageQuery) (core.Page[tweet.Tweet], error) {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Search != "" {
		query["content"] = containsFold(filter.Search)
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	docs, total, err := findPage[tweetDoc](ctx, repo.tweets(), query, sort, page, false)
	if err != nil {
		return core.Page[tweet.Tweet]{}, err
	}
	tweets, err := repo.populate(ctx, docs, filter.ViewerID)
	if err != nil {
		return core.Page[tweet.Tweet]{}, err
	}
	return core.NewPage(tweets, total, page), nil
}

func (repo tweetRepository) UpdateTweet(ctx context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	set := bson.M{"content": t.Content, "updated_at": t.UpdatedAt.UTC()}
	res, err := repo.tweets().UpdateByID(ctx, t.ID, bson.M{"$set": set})
	if err != nil {
		return tweet.Tweet{}, errors.Wrap(err, "updating tweet")
	}
	if res.MatchedCount == 0 {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	return repo.getTweet(ctx, t.ID, t.OwnerID)
}

func (repo tweetRepository) DeleteTweet(ctx context.Context, id string) error {
	if err := deleteOne(ctx, repo.tweets(), id, tweet.ErrNotFound); err != nil {
		return err
	}
	_, err := repo.db.col(colLikes).DeleteMany(ctx, bson.M{"tweet_id": id})
	return errors.Wrap(err, "deleting tweet likes")
}
