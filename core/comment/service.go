package comment

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("comment not found")
	ErrNotOwner = core.NewPermissionError("you are not the owner of this comment")
)

type (
	Repository interface {
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		GetComment(ctx context.Context, id string) (Comment, error)
		// QueryVideoComments lists the comments of a video newest first, with owners & likes populated for viewerID.
		QueryVideoComments(ctx context.Context, videoID, viewerID string, page core.PageQuery) (core.Page[Comment], error)
		UpdateComment(ctx context.Context, c Comment) (Comment, error)
		// DeleteComment deletes the comment and the likes on it.
		DeleteComment(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		videoSvc *video.Service
		notifSvc *notification.Service
	}
)

func NewService(repo Repository, videoSvc *video.Service, notifSvc *notification.Service) *Service {
	return &Service{repo: repo, videoSvc: videoSvc, notifSvc: notifSvc}
}

func (svc *Service) Get(ctx context.Context, id string) (Comment, error) {
	if id == "" {
		return Comment{}, ErrNotFound
	}
	return svc.repo.GetComment(ctx, id)
}

func (svc *Service) VideoComments(ctx context.Context, videoID, viewerID string, page core.PageQuery) (core.Page[Comment], error) {
	if _, err := svc.videoSvc.GetVisible(ctx, videoID, viewerID); err != nil {
		return core.Page[Comment]{}, err
	}
	page.Clean()
	return svc.repo.QueryVideoComments(ctx, videoID, viewerID, page)
}

// Add comments on a video and notifies its owner.
func (svc *Service) Add(ctx context.Context, videoID, ownerID string, nc NewComment) (Comment, error) {
	v, err := svc.videoSvc.GetVisible(ctx, videoID, ownerID)
	if err != nil {
		return Comment{}, err
	}

	now := time.Now().UTC()
	c, err := svc.repo.CreateComment(ctx, Comment{
		VideoID:   v.ID,
		OwnerID:   ownerID,
		Content:   nc.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Comment{}, errors.Wrap(err, "creating comment")
	}

	svc.notifSvc.Notify(ctx, notification.New{
		RecipientID: v.OwnerID,
		SenderID:    ownerID,
		Type:        notification.TypeComment,
		VideoID:     v.ID,
		CommentID:   c.ID,
		Message:     fmt.Sprintf("commented on your video: %s", v.Title),
	})
	return c, nil
}

func (svc *Service) getOwned(ctx context.Context, id, userID string) (Comment, error) {
	c, err := svc.Get(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if c.OwnerID != userID {
		return Comment{}, ErrNotOwner
	}
	return c, nil
}

func (svc *Service) Update(ctx context.Context, id, userID string, data NewComment) (Comment, error) {
	c, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return Comment{}, err
	}
	c.Content = data.Content
	c.UpdatedAt = time.Now().UTC()
	c, err = svc.repo.UpdateComment(ctx, c)
	return c, errors.Wrap(err, "updating comment")
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := svc.getOwned(ctx, id, userID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteComment(ctx, id), "deleting comment")
}
