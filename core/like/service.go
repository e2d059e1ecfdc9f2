package like

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/comment"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("like not found")
)

type (
	Repository interface {
		// GetLike returns ErrNotFound when userID has not liked target.
		GetLike(ctx context.Context, target Target, userID string) (Like, error)
		CreateLike(ctx context.Context, l Like) (Like, error)
		DeleteLike(ctx context.Context, id string) error
		// GetLikedVideos lists the videos liked by userID, most recently liked first, owners populated.
		GetLikedVideos(ctx context.Context, userID string, page core.PageQuery) (core.Page[video.Video], error)
	}

	Service struct {
		repo       Repository
		videoSvc   *video.Service
		commentSvc *comment.Service
		tweetSvc   *tweet.Service
		notifSvc   *notification.Service
	}
)

func NewService(
	repo Repository,
	videoSvc *video.Service,
	commentSvc *comment.Service,
	tweetSvc *tweet.Service,
	notifSvc *notification.Service,
) *Service {
	return &Service{
		repo:       repo,
		videoSvc:   videoSvc,
		commentSvc: commentSvc,
		tweetSvc:   tweetSvc,
		notifSvc:   notifSvc,
	}
}

// toggle likes target, or unlikes it when userID already likes it.
// notif is sent on like only.
func (svc *Service) toggle(ctx context.Context, target Target, userID string, notif notification.New) (ToggleResult, error) {
	existing, err := svc.repo.GetLike(ctx, target, userID)
	switch {
	case err == nil:
		if err = svc.repo.DeleteLike(ctx, existing.ID); err != nil {
			return ToggleResult{}, errors.Wrapf(err, "unliking %s", target.Type)
		}
		return ToggleResult{IsLiked: false}, nil
	case err != ErrNotFound:
		return ToggleResult{}, errors.Wrapf(err, "getting %s like", target.Type)
	}

	if _, err = svc.repo.CreateLike(ctx, newLike(target, userID, time.Now().UTC())); err != nil {
		return ToggleResult{}, errors.Wrapf(err, "liking %s", target.Type)
	}
	notif.SenderID = userID
	svc.notifSvc.Notify(ctx, notif)
	return ToggleResult{IsLiked: true}, nil
}

func (svc *Service) ToggleVideoLike(ctx context.Context, videoID, userID string) (ToggleResult, error) {
	v, err := svc.videoSvc.GetVisible(ctx, videoID, userID)
	if err != nil {
		return ToggleResult{}, err
	}
	return svc.toggle(ctx, Target{TargetVideo, v.ID}, userID, notification.New{
		RecipientID: v.OwnerID,
		Type:        notification.TypeLike,
		VideoID:     v.ID,
		Message:     "liked your video: " + v.Title,
	})
}

func (svc *Service) ToggleCommentLike(ctx context.Context, commentID, userID string) (ToggleResult, error) {
	c, err := svc.commentSvc.Get(ctx, commentID)
	if err != nil {
		return ToggleResult{}, err
	}
	return svc.toggle(ctx, Target{TargetComment, c.ID}, userID, notification.New{
		RecipientID: c.OwnerID,
		Type:        notification.TypeCommentLike,
		VideoID:     c.VideoID,
		CommentID:   c.ID,
		Message:     "liked your comment",
	})
}

func (svc *Service) ToggleTweetLike(ctx context.Context, tweetID, userID string) (ToggleResult, error) {
	t, err := svc.tweetSvc.Get(ctx, tweetID)
	if err != nil {
		return ToggleResult{}, err
	}
	return svc.toggle(ctx, Target{TargetTweet, t.ID}, userID, notification.New{
		RecipientID: t.OwnerID,
		Type:        notification.TypeTweetLike,
		TweetID:     t.ID,
		Message:     "liked your tweet",
	})
}

func (svc *Service) LikedVideos(ctx context.Context, userID string, page core.PageQuery) (core.Page[video.Video], error) {
	page.Clean()
	videos, err := svc.repo.GetLikedVideos(ctx, userID, page)
	return videos, errors.Wrap(err, "getting liked videos")
}
