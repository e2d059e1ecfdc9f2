package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo dashboardRepository) videoIDs(ctx context.Context, channelID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	docs, err := findAll[videoDoc](ctx, repo.db.col(colVideos), bson.M{"owner_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	return pluck(docs, func(d videoDoc) string { return d.ID }), nil
}

func (repo dashboardRepository) GetChannelStats(ctx context.Context, channelID string) (dashboard.Stats, error) {
	var stats dashboard.Stats

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": channelID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "videos": bson.M{"$sum": 1}, "views": bson.M{"$sum": "$views"}}}},
	}
	cur, err := repo.db.col(colVideos).Aggregate(ctx, pipeline)
	if err != nil {
		return stats, errors.Wrap(err, "aggregating video stats")
	}
	var totals []struct {
		Videos int64 `bson:"videos"`
		Views  int64 `bson:"views"`
	}
	if err = cur.All(ctx, &totals); err != nil {
		return stats, errors.Wrap(err, "decoding video stats")
	}
	if len(totals) > 0 {
		stats.TotalVideos, stats.TotalViews = totals[0].Videos, totals[0].Views
	}

	ids, err := repo.videoIDs(ctx, channelID)
	if err != nil {
		return stats, err
	}
	counts := []struct {
		col    string
		filter bson.M
		dst    *int64
	}{
		{colSubscriptions, bson.M{"channel_id": channelID}, &stats.TotalSubscribers},
		{colLikes, bson.M{"video_id": bson.M{"$in": ids}}, &stats.TotalLikes},
		{colTweets, bson.M{"owner_id": channelID}, &stats.TotalTweets},
		{colComments, bson.M{"video_id": bson.M{"$in": ids}}, &stats.TotalComments},
	}
	for _, c := range counts {
		if *c.dst, err = repo.db.col(c.col).CountDocuments(ctx, c.filter); err != nil {
			return stats, errors.Wrapf(err, "counting %s", c.col)
		}
	}
	return stats, nil
}

func (repo dashboardRepository) GetChannelVideos(ctx context.Context, channelID string) ([]dashboard.ChannelVideo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	docs, err := findAll[videoDoc](ctx, repo.db.col(colVideos), bson.M{"owner_id": channelID}, opts)
	if err != nil {
		return nil, err
	}
	videos, err := NewVideoRepository(repo.db).withOwners(ctx, docs)
	if err != nil {
		return nil, err
	}

	ids := pluck(docs, func(d videoDoc) string { return d.ID })
	likes, _, err := repo.db.likeStats(ctx, "video_id", ids, "")
	if err != nil {
		return nil, err
	}
	comments := make(map[string]int64, len(ids))
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"video_id": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$video_id", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := repo.db.col(colComments).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "counting comments")
	}
	var groups []struct {
		ID string `bson:"_id"`
		N  int64  `bson:"n"`
	}
	if err = cur.All(ctx, &groups); err != nil {
		return nil, errors.Wrap(err, "decoding comment counts")
	}
	for _, g := range groups {
		comments[g.ID] = g.N
	}

	res := make([]dashboard.ChannelVideo, 0, len(videos))
	for _, v := range videos {
		res = append(res, dashboard.ChannelVideo{Video: v, LikesCount: likes[v.ID], CommentsCount: comments[v.ID]})
	}
	return res, nil
}
