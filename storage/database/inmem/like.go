package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

type likeRepository struct {
	db *DB
}

var _ like.Repository = (*likeRepository)(nil) // interface compliance check

func NewLikeRepository(db *DB) *likeRepository {
	return &likeRepository{db: db}
}

func (repo *likeRepository) GetLike(_ context.Context, target like.Target, userID string) (like.Like, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, l := range repo.db.likes.all() {
		if l.LikedBy == userID && l.Target() == target {
			return *l, nil
		}
	}
	return like.Like{}, like.ErrNotFound
}

func (repo *likeRepository) CreateLike(_ context.Context, l like.Like) (like.Like, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.db.isLiked(l.Target(), l.LikedBy) {
		return like.Like{}, core.NewConflictError("already liked")
	}
	l.ID = newID()
	repo.db.likes.insert(l.ID, l)
	return l, nil
}

func (repo *likeRepository) DeleteLike(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.likes.delete(id) {
		return like.ErrNotFound
	}
	return nil
}

func (repo *likeRepository) GetLikedVideos(_ context.Context, userID string, page core.PageQuery) (core.Page[video.Video], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	likes := repo.db.likes.newestFirst()
	sortNewestFirst(likes, func(l *like.Like) int64 { return l.CreatedAt.UnixNano() })

	videos := make([]video.Video, 0)
	for _, l := range likes {
		if l.LikedBy != userID || l.VideoID == "" {
			continue
		}
		v, ok := repo.db.videos.get(l.VideoID)
		if !ok || (!v.IsPublished && v.OwnerID != userID) {
			continue
		}
		videos = append(videos, repo.db.withOwner(*v))
	}
	return core.PaginateSlice(videos, page), nil
}
