package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var likeTargetColumns = map[like.TargetType]string{
	like.TargetVideo:   "video_id",
	like.TargetComment: "comment_id",
	like.TargetTweet:   "tweet_id",
}

type likeRow struct {
	ID        string      `db:"id"`
	VideoID   null.String `db:"video_id"`
	CommentID null.String `db:"comment_id"`
	TweetID   null.String `db:"tweet_id"`
	LikedBy   string      `db:"liked_by"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r likeRow) unboil() like.Like {
	return like.Like{
		ID:        r.ID,
		VideoID:   r.VideoID.String,
		CommentID: r.CommentID.String,
		TweetID:   r.TweetID.String,
		LikedBy:   r.LikedBy,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type likeRepository struct {
	db *sqlx.DB
}

var _ like.Repository = (*likeRepository)(nil) // interface compliance check

func NewLikeRepository(db *sqlx.DB) *likeRepository {
	return &likeRepository{db: db}
}

func (repo likeRepository) GetLike(ctx context.Context, target like.Target, userID string) (like.Like, error) {
	col, ok := likeTargetColumns[target.Type]
	if !ok || !validID(target.ID) || !validID(userID) {
		return like.Like{}, like.ErrNotFound
	}
	var r likeRow
	q := repo.db.Rebind("SELECT id, video_id, comment_id, tweet_id, liked_by, created_at FROM likes WHERE " + col + " = ? AND liked_by = ?")
	if err := repo.db.GetContext(ctx, &r, q, target.ID, userID); err != nil {
		return like.Like{}, trapNoRowsErr(err, like.ErrNotFound, "selecting like")
	}
	return r.unboil(), nil
}

func (repo likeRepository) CreateLike(ctx context.Context, l like.Like) (like.Like, error) {
	l.ID = uuid.NewString()
	r := likeRow{
		ID:        l.ID,
		VideoID:   null.NewString(l.VideoID, l.VideoID != ""),
		CommentID: null.NewString(l.CommentID, l.CommentID != ""),
		TweetID:   null.NewString(l.TweetID, l.TweetID != ""),
		LikedBy:   l.LikedBy,
		CreatedAt: l.CreatedAt.UTC(),
	}
	q := `INSERT INTO likes (id, video_id, comment_id, tweet_id, liked_by, created_at)
		VALUES (:id, :video_id, :comment_id, :tweet_id, :liked_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		if isUniqueViolation(err) {
			return like.Like{}, core.NewConflictError("already liked")
		}
		return like.Like{}, errors.Wrap(err, "inserting like")
	}
	return l, nil
}

func (repo likeRepository) DeleteLike(ctx context.Context, id string) error {
	if !validID(id) {
		return like.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM likes WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting like")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return like.ErrNotFound
	}
	return nil
}

func (repo likeRepository) GetLikedVideos(ctx context.Context, userID string, page core.PageQuery) (core.Page[video.Video], error) {
	if !validID(userID) {
		return core.NewPage[video.Video](nil, 0, page), nil
	}
	fromWhere := `FROM likes l JOIN videos v ON v.id = l.video_id LEFT JOIN users u ON u.id = v.owner_id
		WHERE l.liked_by = ? AND (v.is_published OR v.owner_id = l.liked_by)`
	return paginate(ctx, repo.db,
		videoCols, fromWhere, " ORDER BY l.created_at DESC, l.id",
		[]interface{}{userID}, page, videoRow.unboil,
	)
}
