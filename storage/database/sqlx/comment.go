package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
)

type commentRow struct {
	ID         string    `db:"id"`
	VideoID    string    `db:"video_id"`
	OwnerID    string    `db:"owner_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	LikesCount int64     `db:"likes_count"`
	IsLiked    bool      `db:"is_liked"`
	ownerRow
}

func (r commentRow) unboil() comment.Comment {
	return comment.Comment{
		ID:         r.ID,
		VideoID:    r.VideoID,
		OwnerID:    r.OwnerID,
		Owner:      r.summary(r.OwnerID),
		Content:    r.Content,
		LikesCount: r.LikesCount,
		IsLiked:    r.IsLiked,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

var commentCols = `c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at, ` +
	ownerCols + `, ` + likesCols("c", "comment_id")

type commentRepository struct {
	db *sqlx.DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *sqlx.DB) *commentRepository {
	return &commentRepository{db: db}
}

func (repo commentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	c.ID = uuid.NewString()
	q := repo.db.Rebind(`INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := repo.db.ExecContext(ctx, q, c.ID, c.VideoID, c.OwnerID, c.Content, c.CreatedAt.UTC(), c.UpdatedAt.UTC()); err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return repo.getComment(ctx, c.ID, "")
}

func (repo commentRepository) GetComment(ctx context.Context, id string) (comment.Comment, error) {
	return repo.getComment(ctx, id, "")
}

func (repo commentRepository) getComment(ctx context.Context, id, viewerID string) (comment.Comment, error) {
	if !validID(id) {
		return comment.Comment{}, comment.ErrNotFound
	}
	var r commentRow
	q := repo.db.Rebind("SELECT " + commentCols + " FROM comments c LEFT JOIN users u ON u.id = c.owner_id WHERE c.id = ?")
	if err := repo.db.GetContext(ctx, &r, q, viewerID, id); err != nil {
		return comment.Comment{}, trapNoRowsErr(err, comment.ErrNotFound, "selecting comment")
	}
	return r.unboil(), nil
}

func (repo commentRepository) QueryVideoComments(ctx context.Context, videoID, viewerID string, page core.PageQuery) (core.Page[comment.Comment], error) {
	if !validID(videoID) {
		return core.NewPage[comment.Comment](nil, 0, page), nil
	}
	page.Clean()

	var total int64
	q := repo.db.Rebind("SELECT COUNT(*) FROM comments WHERE video_id = ?")
	if err := repo.db.GetContext(ctx, &total, q, videoID); err != nil {
		return core.Page[comment.Comment]{}, errors.Wrap(err, "counting comments")
	}

	var rows []commentRow
	q = repo.db.Rebind("SELECT " + commentCols + ` FROM comments c LEFT JOIN users u ON u.id = c.owner_id
		WHERE c.video_id = ? ORDER BY c.created_at DESC, c.id LIMIT ? OFFSET ?`)
	if err := repo.db.SelectContext(ctx, &rows, q, viewerID, videoID, page.Limit, page.Skip()); err != nil {
		return core.Page[comment.Comment]{}, errors.Wrap(err, "selecting comments")
	}

	comments := make([]comment.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.unboil())
	}
	return core.NewPage(comments, total, page), nil
}

func (repo commentRepository) UpdateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	if !validID(c.ID) {
		return comment.Comment{}, comment.ErrNotFound
	}
	q := repo.db.Rebind("UPDATE comments SET content = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, c.Content, c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return comment.Comment{}, errors.Wrap(err, "updating comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}
	return repo.getComment(ctx, c.ID, c.OwnerID)
}

// DeleteComment relies on ON DELETE CASCADE for the likes.
func (repo commentRepository) DeleteComment(ctx context.Context, id string) error {
	if !validID(id) {
		return comment.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM comments WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return comment.ErrNotFound
	}
	return nil
}
