package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) commentsCount(videoID string) int64 {
	return repo.db.comments.count(func(c *comment.Comment) bool { return c.VideoID == videoID })
}

func (repo *dashboardRepository) GetChannelStats(_ context.Context, channelID string) (dashboard.Stats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stats := dashboard.Stats{
		TotalSubscribers: repo.db.subscribersCount(channelID),
		TotalTweets:      repo.db.tweets.count(func(t *tweet.Tweet) bool { return t.OwnerID == channelID }),
	}
	for _, v := range repo.db.videos.filter(func(v *video.Video) bool { return v.OwnerID == channelID }) {
		stats.TotalVideos++
		stats.TotalViews += v.Views
		stats.TotalLikes += repo.db.likesCount(like.Target{Type: like.TargetVideo, ID: v.ID})
		stats.TotalComments += repo.commentsCount(v.ID)
	}
	return stats, nil
}

func (repo *dashboardRepository) GetChannelVideos(_ context.Context, channelID string) ([]dashboard.ChannelVideo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rows := repo.db.videos.newestFirst()
	sortNewestFirst(rows, func(v *video.Video) int64 { return v.CreatedAt.UnixNano() })

	videos := make([]dashboard.ChannelVideo, 0)
	for _, v := range rows {
		if v.OwnerID != channelID {
			continue
		}
		videos = append(videos, dashboard.ChannelVideo{
			Video:         *v,
			LikesCount:    repo.db.likesCount(like.Target{Type: like.TargetVideo, ID: v.ID}),
			CommentsCount: repo.commentsCount(v.ID),
		})
	}
	return videos, nil
}
