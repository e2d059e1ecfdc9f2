package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
)

type commentRepository struct {
	db *DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *DB) *commentRepository {
	return &commentRepository{db: db}
}

func (repo *commentRepository) populate(c comment.Comment, viewerID string) comment.Comment {
	target := like.Target{Type: like.TargetComment, ID: c.ID}
	c.Owner = repo.db.summary(c.OwnerID)
	c.LikesCount = repo.db.likesCount(target)
	c.IsLiked = repo.db.isLiked(target, viewerID)
	return c
}

func (repo *commentRepository) CreateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = newID()
	c.Owner, c.LikesCount, c.IsLiked = nil, 0, false
	repo.db.comments.insert(c.ID, c)
	return repo.populate(c, ""), nil
}

func (repo *commentRepository) GetComment(_ context.Context, id string) (comment.Comment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	c, ok := repo.db.comments.get(id)
	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	return repo.populate(*c, ""), nil
}

func (repo *commentRepository) QueryVideoComments(_ context.Context, videoID, viewerID string, page core.PageQuery) (core.Page[comment.Comment], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	comments := make([]comment.Comment, 0)
	for _, c := range repo.db.comments.newestFirst() {
		if c.VideoID == videoID {
			comments = append(comments, repo.populate(*c, viewerID))
		}
	}
	sortNewestFirst(comments, func(c comment.Comment) int64 { return c.CreatedAt.UnixNano() })
	return core.PaginateSlice(comments, page), nil
}

func (repo *commentRepository) UpdateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.comments.get(c.ID)
	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	c.Owner, c.LikesCount, c.IsLiked = nil, 0, false
	*existing = c
	return repo.populate(c, c.OwnerID), nil
}

func (repo *commentRepository) DeleteComment(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.comments.delete(id) {
		return comment.ErrNotFound
	}
	repo.db.deleteLikes(like.Target{Type: like.TargetComment, ID: id})
	return nil
}
