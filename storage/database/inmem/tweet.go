package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
)

type tweetRepository struct {
	db *DB
}

var _ tweet.Repository = (*tweetRepository)(nil) // interface compliance check

func NewTweetRepository(db *DB) *tweetRepository {
	return &tweetRepository{db: db}
}

func (repo *tweetRepository) populate(t tweet.Tweet, viewerID string) tweet.Tweet {
	target := like.Target{Type: like.TargetTweet, ID: t.ID}
	t.Owner = repo.db.summary(t.OwnerID)
	t.LikesCount = repo.db.likesCount(target)
	t.IsLiked = repo.db.isLiked(target, viewerID)
	return t
}

func (repo *tweetRepository) CreateTweet(_ context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = newID()
	t.Owner, t.LikesCount, t.IsLiked = nil, 0, false
	repo.db.tweets.insert(t.ID, t)
	return repo.populate(t, ""), nil
}

func (repo *tweetRepository) GetTweet(_ context.Context, id string) (tweet.Tweet, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	t, ok := repo.db.tweets.get(id)
	if !ok {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	return repo.populate(*t, ""), nil
}

func (repo *tweetRepository) QueryTweets(_ context.Context, filter tweet.QueryFilter, page core.PageQuery) (core.Page[tweet.Tweet], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tweets := make([]tweet.Tweet, 0)
	for _, t := range repo.db.tweets.newestFirst() {
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Search != "" && !containsFold(t.Content, filter.Search) {
			continue
		}
		tweets = append(tweets, repo.populate(*t, filter.ViewerID))
	}
	sortNewestFirst(tweets, func(t tweet.Tweet) int64 { return t.CreatedAt.UnixNano() })
	return core.PaginateSlice(tweets, page), nil
}

func (repo *tweetRepository) UpdateTweet(_ context.Context, t tweet.Tweet) (tweet.Tweet, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.tweets.get(t.ID)
	if !ok {
		return tweet.Tweet{}, tweet.ErrNotFound
	}
	t.Owner, t.LikesCount, t.IsLiked = nil, 0, false
	*existing = t
	return repo.populate(t, t.OwnerID), nil
}

func (repo *tweetRepository) DeleteTweet(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.tweets.delete(id) {
		return tweet.ErrNotFound
	}
	repo.db.deleteLikes(like.Target{Type: like.TargetTweet, ID: id})
	return nil
}
