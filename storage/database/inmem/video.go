package inmem

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/like"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

type videoRepository struct {
	db *DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *DB) *videoRepository {
	return &videoRepository{db: db}
}

func (repo *videoRepository) CreateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	v.ID = newID()
	v.Owner = nil
	repo.db.videos.insert(v.ID, v)
	return repo.db.withOwner(v), nil
}

func (repo *videoRepository) GetVideo(_ context.Context, id string) (video.Video, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	v, ok := repo.db.videos.get(id)
	if !ok {
		return video.Video{}, video.ErrNotFound
	}
	return repo.db.withOwner(*v), nil
}

func (repo *videoRepository) GetVideoDetail(_ context.Context, id, viewerID string) (video.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	v, ok := repo.db.videos.get(id)
	if !ok {
		return video.Detail{}, video.ErrNotFound
	}
	target := like.Target{Type: like.TargetVideo, ID: v.ID}
	return video.Detail{
		Video:            repo.db.withOwner(*v),
		LikesCount:       repo.db.likesCount(target),
		IsLiked:          repo.db.isLiked(target, viewerID),
		SubscribersCount: repo.db.subscribersCount(v.OwnerID),
		IsSubscribed:     repo.db.isSubscribed(viewerID, v.OwnerID),
	}, nil
}

func compareVideos(a, b *video.Video, ordering []core.DBOrdering) int {
	for _, ord := range ordering {
		var c int
		switch ord.Field {
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "views":
			c = cmp.Compare(a.Views, b.Views)
		case "duration":
			c = cmp.Compare(a.Duration, b.Duration)
		case "title":
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
		if !ord.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func (repo *videoRepository) QueryVideos(_ context.Context, filter video.QueryFilter, ordering []core.DBOrdering, page core.PageQuery) (core.Page[video.Video], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rows := repo.db.videos.newestFirst()
	rows = slices.DeleteFunc(rows, func(v *video.Video) bool {
		if filter.OwnerID != "" && v.OwnerID != filter.OwnerID {
			return true
		}
		if !v.IsPublished && !filter.IncludeUnpublished {
			return true
		}
		return filter.Search != "" && !containsFold(v.Title, filter.Search) && !containsFold(v.Description, filter.Search)
	})
	slices.SortStableFunc(rows, func(a, b *video.Video) int { return compareVideos(a, b, ordering) })

	videos := make([]video.Video, 0, len(rows))
	for _, v := range rows {
		videos = append(videos, repo.db.withOwner(*v))
	}
	return core.PaginateSlice(videos, page), nil
}

func (repo *videoRepository) UpdateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing, ok := repo.db.videos.get(v.ID)
	if !ok {
		return video.Video{}, video.ErrNotFound
	}
	v.Views = existing.Views // only changed through IncrementViews
	v.Owner = nil
	*existing = v
	return repo.db.withOwner(v), nil
}

func (repo *videoRepository) IncrementViews(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	v, ok := repo.db.videos.get(id)
	if !ok {
		return video.ErrNotFound
	}
	v.Views++
	return nil
}

func (repo *videoRepository) DeleteVideo(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.videos.delete(id) {
		return video.ErrNotFound
	}

	commentIDs := repo.db.comments.deleteWhere(func(c *comment.Comment) bool { return c.VideoID == id })
	targets := []like.Target{{Type: like.TargetVideo, ID: id}}
	for _, cid := range commentIDs {
		targets = append(targets, like.Target{Type: like.TargetComment, ID: cid})
	}
	repo.db.deleteLikes(targets...)

	for _, p := range repo.db.playlists.all() {
		if p.HasVideo(id) {
			p.Videos = slices.DeleteFunc(slices.Clone(p.Videos), func(vid string) bool { return vid == id })
		}
	}
	return nil
}
