package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core/dashboard"
)

type dashboardRepository struct {
	db *sqlx.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *sqlx.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo dashboardRepository) GetChannelStats(ctx context.Context, channelID string) (dashboard.Stats, error) {
	var stats dashboard.Stats
	if !validID(channelID) {
		return stats, nil
	}
	var r struct {
		TotalVideos      int64 `db:"total_videos"`
		TotalViews       int64 `db:"total_views"`
		TotalSubscribers int64 `db:"total_subscribers"`
		TotalLikes       int64 `db:"total_likes"`
		TotalTweets      int64 `db:"total_tweets"`
		TotalComments    int64 `db:"total_comments"`
	}
	q := repo.db.Rebind(`SELECT
		(SELECT COUNT(*) FROM videos WHERE owner_id = $1) AS total_videos,
		(SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1) AS total_views,
		(SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1) AS total_subscribers,
		(SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = $1) AS total_likes,
		(SELECT COUNT(*) FROM tweets WHERE owner_id = $1) AS total_tweets,
		(SELECT COUNT(*) FROM comments c JOIN videos v ON v.id = c.video_id WHERE v.owner_id = $1) AS total_comments`)
	if err := repo.db.GetContext(ctx, &r, q, channelID); err != nil {
		return stats, errors.Wrap(err, "selecting channel stats")
	}
	return dashboard.Stats(r), nil
}

func (repo dashboardRepository) GetChannelVideos(ctx context.Context, channelID string) ([]dashboard.ChannelVideo, error) {
	videos := make([]dashboard.ChannelVideo, 0)
	if !validID(channelID) {
		return videos, nil
	}
	var rows []struct {
		videoRow
		LikesCount    int64 `db:"likes_count"`
		CommentsCount int64 `db:"comments_count"`
	}
	q := repo.db.Rebind("SELECT " + videoCols + `,
		(SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
		(SELECT COUNT(*) FROM comments c WHERE c.video_id = v.id) AS comments_count
		FROM videos v LEFT JOIN users u ON u.id = v.owner_id
		WHERE v.owner_id = ? ORDER BY v.created_at DESC, v.id`)
	if err := repo.db.SelectContext(ctx, &rows, q, channelID); err != nil {
		return nil, errors.Wrap(err, "selecting channel videos")
	}
	for _, r := range rows {
		videos = append(videos, dashboard.ChannelVideo{
			Video:         r.unboil(),
			LikesCount:    r.LikesCount,
			CommentsCount: r.CommentsCount,
		})
	}
	return videos, nil
}
