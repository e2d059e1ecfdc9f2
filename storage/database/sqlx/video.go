package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

// videoCols selects a video joined with its owner as u.
const videoCols = `v.id, v.owner_id, v.video_file, v.video_public_id, v.thumbnail, v.thumbnail_public_id,
	v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at, ` + ownerCols

var videoOrderColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "LOWER(v.title)",
}

type videoRow struct {
	ID                string      `db:"id"`
	OwnerID           string      `db:"owner_id"`
	VideoFile         string      `db:"video_file"`
	VideoPublicID     null.String `db:"video_public_id"`
	Thumbnail         string      `db:"thumbnail"`
	ThumbnailPublicID null.String `db:"thumbnail_public_id"`
	Title             string      `db:"title"`
	Description       string      `db:"description"`
	Duration          float64     `db:"duration"`
	Views             int64       `db:"views"`
	IsPublished       bool        `db:"is_published"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
	ownerRow
}

func boilVideo(v video.Video) videoRow {
	return videoRow{
		ID:                v.ID,
		OwnerID:           v.OwnerID,
		VideoFile:         v.VideoFile,
		VideoPublicID:     null.NewString(v.VideoPublicID, v.VideoPublicID != ""),
		Thumbnail:         v.Thumbnail,
		ThumbnailPublicID: null.NewString(v.ThumbnailPublicID, v.ThumbnailPublicID != ""),
		Title:             v.Title,
		Description:       v.Description,
		Duration:          v.Duration,
		Views:             v.Views,
		IsPublished:       v.IsPublished,
		CreatedAt:         v.CreatedAt.UTC(),
		UpdatedAt:         v.UpdatedAt.UTC(),
	}
}

func (r videoRow) unboil() video.Video {
	return video.Video{
		ID:                r.ID,
		VideoFile:         r.VideoFile,
		VideoPublicID:     r.VideoPublicID.String,
		Thumbnail:         r.Thumbnail,
		ThumbnailPublicID: r.ThumbnailPublicID.String,
		OwnerID:           r.OwnerID,
		Owner:             r.summary(r.OwnerID),
		Title:             r.Title,
		Description:       r.Description,
		Duration:          r.Duration,
		Views:             r.Views,
		IsPublished:       r.IsPublished,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

type videoRepository struct {
	db *sqlx.DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *sqlx.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (repo videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	v.ID = uuid.NewString()
	q := `INSERT INTO videos (id, owner_id, video_file, video_public_id, thumbnail, thumbnail_public_id,
		title, description, duration, views, is_published, created_at, updated_at) VALUES (
		:id, :owner_id, :video_file, :video_public_id, :thumbnail, :thumbnail_public_id,
		:title, :description, :duration, :views, :is_published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, boilVideo(v)); err != nil {
		return video.Video{}, errors.Wrap(err, "inserting video")
	}
	return repo.GetVideo(ctx, v.ID)
}

func (repo videoRepository) GetVideo(ctx context.Context, id string) (video.Video, error) {
	if !validID(id) {
		return video.Video{}, video.ErrNotFound
	}
	var r videoRow
	q := repo.db.Rebind("SELECT " + videoCols + " FROM videos v LEFT JOIN users u ON u.id = v.owner_id WHERE v.id = ?")
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return video.Video{}, trapNoRowsErr(err, video.ErrNotFound, "selecting video")
	}
	return r.unboil(), nil
}

func (repo videoRepository) GetVideoDetail(ctx context.Context, id, viewerID string) (video.Detail, error) {
	if !validID(id) {
		return video.Detail{}, video.ErrNotFound
	}
	q := repo.db.Rebind(`SELECT ` + videoCols + `,
		(SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count,
		EXISTS (SELECT 1 FROM likes l WHERE l.video_id = v.id AND l.liked_by::text = ?) AS is_liked,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = v.owner_id) AS subscribers_count,
		EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = v.owner_id AND s.subscriber_id::text = ?) AS is_subscribed
		FROM videos v LEFT JOIN users u ON u.id = v.owner_id WHERE v.id = ?`)

	var r struct {
		videoRow
		LikesCount       int64 `db:"likes_count"`
		IsLiked          bool  `db:"is_liked"`
		SubscribersCount int64 `db:"subscribers_count"`
		IsSubscribed     bool  `db:"is_subscribed"`
	}
	if err := repo.db.GetContext(ctx, &r, q, viewerID, viewerID, id); err != nil {
		return video.Detail{}, trapNoRowsErr(err, video.ErrNotFound, "selecting video detail")
	}
	return video.Detail{
		Video:            r.unboil(),
		LikesCount:       r.LikesCount,
		IsLiked:          r.IsLiked,
		SubscribersCount: r.SubscribersCount,
		IsSubscribed:     r.IsSubscribed,
	}, nil
}

func (repo videoRepository) QueryVideos(ctx context.Context, filter video.QueryFilter, ordering []core.DBOrdering, page core.PageQuery) (core.Page[video.Video], error) {
	var w where
	if filter.OwnerID != "" {
		if !validID(filter.OwnerID) {
			return core.NewPage[video.Video](nil, 0, page), nil
		}
		w.add("v.owner_id = ?", filter.OwnerID)
	}
	if !filter.IncludeUnpublished {
		w.add("v.is_published")
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		w.add("(v.title ILIKE ? OR v.description ILIKE ?)", pattern, pattern)
	}

	return paginate(ctx, repo.db,
		videoCols, "FROM videos v LEFT JOIN users u ON u.id = v.owner_id"+w.String(),
		orderBy(ordering, videoOrderColumns)+", v.id",
		w.args, page, videoRow.unboil,
	)
}

func (repo videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	q := `UPDATE videos SET
		video_file = :video_file, video_public_id = :video_public_id,
		thumbnail = :thumbnail, thumbnail_public_id = :thumbnail_public_id,
		title = :title, description = :description, duration = :duration,
		is_published = :is_published, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, boilVideo(v))
	if err != nil {
		return video.Video{}, errors.Wrap(err, "updating video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return video.Video{}, video.ErrNotFound
	}
	return repo.GetVideo(ctx, v.ID)
}

func (repo videoRepository) IncrementViews(ctx context.Context, id string) error {
	if !validID(id) {
		return video.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("UPDATE videos SET views = views + 1 WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "incrementing views")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return video.ErrNotFound
	}
	return nil
}

// DeleteVideo relies on ON DELETE CASCADE for comments, likes, playlist entries & watch history.
func (repo videoRepository) DeleteVideo(ctx context.Context, id string) error {
	if !validID(id) {
		return video.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM videos WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return video.ErrNotFound
	}
	return nil
}
