package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
)

// likesCols renders the likes count & the viewer's like of alias.id; the viewer ID is its only placeholder.
func likesCols(alias, column string) string {
	return `(SELECT COUNT(*) FROM likes l WHERE l.` + column + ` = ` + alias + `.id) AS likes_count,
		EXISTS (SELECT 1 FROM likes l WHERE l.` + column + ` = ` + alias + `.id AND l.liked_by::text = ?) AS is_liked`
}

type tweetRow struct {
	ID         string    `db:"id"`
	OwnerID    string    `db:"owner_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	LikesCount int64     `db:"likes_count"`
	IsLiked    bool      `db:"is_liked"`
	ownerRow
}

func (r tweetRow) unboil() tweet.Tweet {
	return tweet.Tweet{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Owner:      r.summary(r.OwnerID),
		Content:    r.Content,
		LikesCount: r.LikesCount,
		IsLiked:    r.IsLiked,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

var tweetCols = `t.id, t.owner_id, t.content, t.created_at, t.updated_at, ` + ownerCols + `, ` + likesCols("t", "tweet_id")

type tweetRepository struct {
	db *sqlx.DB
}

var _ tweet.Repository = (*tweetRepository)(nil) // interface compliance check

func NewTweetRepository(db *sqlx.DB) *tweetRepository {
	return &tweetRepository{db: db}
}

func (repo tweetRepository) CreateTweet(ctx context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	t.ID = uuid.NewString()
	q := repo.db.Rebind("INSERT INTO tweets (id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)")
	if _, err := repo.db.ExecContext(ctx, q, t.ID, t.OwnerID, t.Content, t.CreatedAt.UTC(), t.UpdatedAt.UTC()); err != nil {
		return tweet.Tweet{}, errors.Wrap(err, "inserting tweet")
	}
	return repo.getTweet(ctx, t.ID, "")
}

func (repo tweetRepository) GetTweet(ctx context.Context, id string) (tweet.Tweet, error) {
	return repo.getTweet(ctx, id, "")
}

func (repo tweetRepository) getTweet(ctx context.Context, id, viewerID string) (tweet.Tweet, error) {
	if !validID(id) {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	var r tweetRow
	q := repo.db.Rebind("SELECT " + tweetCols + " FROM tweets t LEFT JOIN users u ON u.id = t.owner_id WHERE t.id = ?")
	if err := repo.db.GetContext(ctx, &r, q, viewerID, id); err != nil {
		return tweet.Tweet{}, trapNoRowsErr(err, tweet.ErrNotFound, "selecting tweet")
	}
	return r.unboil(), nil
}

func (repo tweetRepository) QueryTweets(ctx context.Context, filter tweet.QueryFilter, page core.PageQuery) (core.Page[tweet.Tweet], error) {
	var w where
	if filter.OwnerID != "" {
		if !validID(filter.OwnerID) {
			return core.NewPage[tweet.Tweet](nil, 0, page), nil
		}
		w.add("t.owner_id = ?", filter.OwnerID)
	}
	if filter.Search != "" {
		w.add("t.content ILIKE ?", likePattern(filter.Search))
	}

	// the viewer placeholder of the select list precedes the where args
	page.Clean()
	fromWhere := "FROM tweets t LEFT JOIN users u ON u.id = t.owner_id" + w.String()
	var total int64
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind("SELECT COUNT(*) "+fromWhere), w.args...); err != nil {
		return core.Page[tweet.Tweet]{}, errors.Wrap(err, "counting tweets")
	}

	args := append([]interface{}{filter.ViewerID}, w.args...)
	args = append(args, page.Limit, page.Skip())
	var rows []tweetRow
	q := repo.db.Rebind("SELECT " + tweetCols + " " + fromWhere + " ORDER BY t.created_at DESC, t.id LIMIT ? OFFSET ?")
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return core.Page[tweet.Tweet]{}, errors.Wrap(err, "selecting tweets")
	}

	tweets := make([]tweet.Tweet, 0, len(rows))
	for _, r := range rows {
		tweets = append(tweets, r.unboil())
	}
	return core.NewPage(tweets, total, page), nil
}

func (repo tweetRepository) UpdateTweet(ctx context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	if !validID(t.ID) {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	q := repo.db.Rebind("UPDATE tweets SET content = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, t.Content, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return tweet.Tweet{}, errors.Wrap(err, "updating tweet")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	return repo.getTweet(ctx, t.ID, t.OwnerID)
}

// DeleteTweet relies on ON DELETE CASCADE for the likes.
func (repo tweetRepository) DeleteTweet(ctx context.Context, id string) error {
	if !validID(id) {
		return tweet.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM tweets WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting tweet")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tweet.ErrNotFound
	}
	return nil
}
