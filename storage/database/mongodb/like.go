package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var likeTargetFields = map[like.TargetType]string{
	like.TargetVideo:   "video_id",
	like.TargetComment: "comment_id",
	like.TargetTweet:   "tweet_id",
}

type likeDoc struct {
	ID        string    `bson:"_id"`
	VideoID   string    `bson:"video_id,omitempty"`
	CommentID string    `bson:"comment_id,omitempty"`
	TweetID   string    `bson:"tweet_id,omitempty"`
	LikedBy   string    `bson:"liked_by"`
	CreatedAt time.Time `bson:"created_at"`
}

// target returns the liked ID stored under field.
func (d likeDoc) target(field string) string {
	switch field {
	case "video_id":
		return d.VideoID
	case "comment_id":
		return d.CommentID
	default:
		return d.TweetID
	}
}

type likeRepository struct {
	db *DB
}

var _ like.Repository = (*likeRepository)(nil) // interface compliance check

func NewLikeRepository(db *DB) *likeRepository {
	return &likeRepository{db: db}
}

func (repo likeRepository) likes() *mongo.Collection {
	return repo.db.col(colLikes)
}

func (repo likeRepository) GetLike(ctx context.Context, target like.Target, userID string) (like.Like, error) {
	field, ok := likeTargetFields[target.Type]
	if !ok {
		return like.Like{}, like.ErrNotFound
	}
	var d likeDoc
	if err := repo.likes().FindOne(ctx, bson.M{field: target.ID, "liked_by": userID}).Decode(&d); err != nil {
		return like.Like{}, trapNoDocsErr(err, like.ErrNotFound, "finding like")
	}
	return like.Like{
		ID:        d.ID,
		VideoID:   d.VideoID,
		CommentID: d.CommentID,
		TweetID:   d.TweetID,
		LikedBy:   d.LikedBy,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

func (repo likeRepository) CreateLike(ctx context.Context, l like.Like) (like.Like, error) {
	l.ID = newID()
	d := likeDoc{
		ID:        l.ID,
		VideoID:   l.VideoID,
		CommentID: l.CommentID,
		TweetID:   l.TweetID,
		LikedBy:   l.LikedBy,
		CreatedAt: l.CreatedAt.UTC(),
	}
	if _, err := repo.likes().InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return like.Like{}, core.NewConflictError("already liked")
		}
		return like.Like{}, errors.Wrap(err, "inserting like")
	}
	return l, nil
}

func (repo likeRepository) DeleteLike(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.likes(), id, like.ErrNotFound)
}

// GetLikedVideos joins the liked videos in an aggregation, so that pagination skips the unavailable ones.
func (repo likeRepository) GetLikedVideos(ctx context.Context, userID string, page core.PageQuery) (core.Page[video.Video], error) {
	page.Clean()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"liked_by": userID, "video_id": bson.M{"$type": "string"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{"from": colVideos, "localField": "video_id", "foreignField": "_id", "as": "video"}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$video"}}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{bson.M{"is_published": true}, bson.M{"owner_id": userID}}}}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{bson.M{"$count": "n"}},
			"docs":  likedVideoStages(page),
		}}},
	}
	cur, err := repo.likes().Aggregate(ctx, pipeline)
	if err != nil {
		return core.Page[video.Video]{}, errors.Wrap(err, "aggregating liked videos")
	}
	var res []struct {
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
		Docs []videoDoc `bson:"docs"`
	}
	if err = cur.All(ctx, &res); err != nil {
		return core.Page[video.Video]{}, errors.Wrap(err, "decoding liked videos")
	}
	if len(res) == 0 {
		return core.NewPage[video.Video](nil, 0, page), nil
	}

	var total int64
	if len(res[0].Total) > 0 {
		total = res[0].Total[0].N
	}
	videos := make([]video.Video, 0, len(res[0].Docs))
	for _, d := range res[0].Docs {
		videos = append(videos, d.populated())
	}
	return core.NewPage(videos, total, page), nil
}

func likedVideoStages(page core.PageQuery) bson.A {
	stages := bson.A{bson.M{"$skip": page.Skip()}, bson.M{"$limit": page.Limit}}
	for _, stage := range ownerLookup("owner_id") {
		stages = append(stages, stage)
	}
	return stages
}
