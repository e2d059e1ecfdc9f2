package video

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("video not found")
	ErrNotOwner          = core.NewPermissionError("you are not the owner of this video")
	ErrVideoFileRequired = core.NewValidationError(nil, core.FieldError{Field: "videoFile", Error: "video file is required"})
	ErrThumbnailRequired = core.NewValidationError(nil, core.FieldError{Field: "thumbnail", Error: "thumbnail is required"})
	ErrNothingToUpdate   = core.NewValidationError(nil, core.FieldError{Field: "title", Error: "provide a title, a description or a thumbnail"})
)

type (
	Repository interface {
		CreateVideo(ctx context.Context, v Video) (Video, error)
		GetVideo(ctx context.Context, id string) (Video, error)
		// GetVideoDetail joins the video with its owner, likes and the owner's subscribers, as seen by viewerID.
		GetVideoDetail(ctx context.Context, id, viewerID string) (Detail, error)
		// QueryVideos lists videos with their owner populated.
		// QueryFilter.Search does a case-insensitive match on Video.Title or Video.Description.
		QueryVideos(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.PageQuery) (core.Page[Video], error)
		UpdateVideo(ctx context.Context, v Video) (Video, error)
		IncrementViews(ctx context.Context, id string) error
		// DeleteVideo deletes the video along with its comments, the likes on both and its playlist entries.
		DeleteVideo(ctx context.Context, id string) error
	}

	// WatchHistoryRecorder records the videos users watch.
	WatchHistoryRecorder interface {
		AddToWatchHistory(ctx context.Context, userID, videoID string) error
	}

	// SubscriberLister lists the subscribers of a channel, for new upload notifications.
	SubscriberLister interface {
		SubscriberIDs(ctx context.Context, channelID string) ([]string, error)
	}

	Service struct {
		repo        Repository
		media       core.MediaStore
		prober      core.MediaProber
		history     WatchHistoryRecorder
		subscribers SubscriberLister
		notifSvc    *notification.Service
		logger      core.Logger
	}
)

func NewService(
	repo Repository,
	media core.MediaStore,
	prober core.MediaProber,
	history WatchHistoryRecorder,
	subscribers SubscriberLister,
	notifSvc *notification.Service,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		media:       media,
		prober:      prober,
		history:     history,
		subscribers: subscribers,
		notifSvc:    notifSvc,
		logger:      logger,
	}
}

func (svc *Service) Get(ctx context.Context, id string) (Video, error) {
	if id == "" {
		return Video{}, ErrNotFound
	}
	return svc.repo.GetVideo(ctx, id)
}

// GetVisible returns the video if viewerID may see it: drafts are only visible to their owner.
func (svc *Service) GetVisible(ctx context.Context, id, viewerID string) (Video, error) {
	v, err := svc.Get(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if !v.IsPublished && v.OwnerID != viewerID {
		return Video{}, ErrNotFound
	}
	return v, nil
}

// getOwned returns the video if userID owns it.
func (svc *Service) getOwned(ctx context.Context, id, userID string) (Video, error) {
	v, err := svc.Get(ctx, id)
	if err != nil {
		return Video{}, err
	}
	if v.OwnerID != userID {
		return Video{}, ErrNotOwner
	}
	return v, nil
}

// Query lists published videos; owners also see their unpublished videos when listing their own channel.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, page core.PageQuery, viewerID string) (core.Page[Video], error) {
	filter.Clean()
	filter.IncludeUnpublished = filter.OwnerID != "" && filter.OwnerID == viewerID
	page.Clean()
	ordering = core.CleanOrderings(ordering, OrderingFields, DefaultOrdering)

	videos, err := svc.repo.QueryVideos(ctx, filter, ordering, page)
	return videos, errors.Wrap(err, "querying videos")
}

// Publish uploads the video file & thumbnail and creates the Video. Subscribers of the owner are notified.
func (svc *Service) Publish(ctx context.Context, ownerID string, nv NewVideo, videoFile, thumbnail *core.Upload) (Video, error) {
	if videoFile == nil {
		return Video{}, ErrVideoFileRequired
	}
	if thumbnail == nil {
		return Video{}, ErrThumbnailRequired
	}

	duration, err := svc.prober.Duration(ctx, videoFile.Path)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("probing video duration: %v", err), err)
		duration = 0
	}

	videoAsset, err := svc.media.Upload(ctx, *videoFile, core.ResourceVideo)
	if err != nil {
		return Video{}, errors.Wrap(err, "uploading video file")
	}
	thumbAsset, err := svc.media.Upload(ctx, *thumbnail, core.ResourceImage)
	if err != nil {
		svc.deleteAsset(ctx, videoAsset.PublicID, core.ResourceVideo)
		return Video{}, errors.Wrap(err, "uploading thumbnail")
	}

	now := time.Now().UTC()
	v, err := svc.repo.CreateVideo(ctx, Video{
		VideoFile:         videoAsset.URL,
		VideoPublicID:     videoAsset.PublicID,
		Thumbnail:         thumbAsset.URL,
		ThumbnailPublicID: thumbAsset.PublicID,
		OwnerID:           ownerID,
		Title:             nv.Title,
		Description:       nv.Description,
		Duration:          duration,
		IsPublished:       true,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		svc.deleteAsset(ctx, videoAsset.PublicID, core.ResourceVideo)
		svc.deleteAsset(ctx, thumbAsset.PublicID, core.ResourceImage)
		return Video{}, errors.Wrap(err, "creating video")
	}

	svc.notifySubscribers(ctx, v)
	return v, nil
}

func (svc *Service) notifySubscribers(ctx context.Context, v Video) {
	ids, err := svc.subscribers.SubscriberIDs(ctx, v.OwnerID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("listing subscribers of %s: %v", v.OwnerID, err), err)
		return
	}
	svc.notifSvc.NotifyMany(ctx, ids, notification.New{
		SenderID: v.OwnerID,
		Type:     notification.TypeNewVideo,
		VideoID:  v.ID,
		Message:  fmt.Sprintf("uploaded a new video: %s", v.Title),
	})
}

// Watch returns the watch page of a video and counts the view.
// Unpublished videos are only visible to their owner.
// The video is added to the viewer's watch history when the viewer is authenticated.
func (svc *Service) Watch(ctx context.Context, id, viewerID string) (Detail, error) {
	if _, err := svc.GetVisible(ctx, id, viewerID); err != nil {
		return Detail{}, err
	}

	if err := svc.repo.IncrementViews(ctx, id); err != nil {
		return Detail{}, errors.Wrap(err, "incrementing views")
	}
	if viewerID != "" {
		if err := svc.history.AddToWatchHistory(ctx, viewerID, id); err != nil {
			svc.logger.Error(fmt.Sprintf("recording watch history: %v", err), err)
		}
	}

	detail, err := svc.repo.GetVideoDetail(ctx, id, viewerID)
	return detail, errors.Wrap(err, "getting video detail")
}

// Update modifies the title & description of a video and optionally replaces its thumbnail.
func (svc *Service) Update(ctx context.Context, id, userID string, uv UpdateVideo, thumbnail *core.Upload) (Video, error) {
	if uv.Title == "" && uv.Description == "" && thumbnail == nil {
		return Video{}, ErrNothingToUpdate
	}
	v, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return Video{}, err
	}

	if uv.Title != "" {
		v.Title = uv.Title
	}
	if uv.Description != "" {
		v.Description = uv.Description
	}

	var oldThumbPublicID string
	if thumbnail != nil {
		asset, err := svc.media.Upload(ctx, *thumbnail, core.ResourceImage)
		if err != nil {
			return Video{}, errors.Wrap(err, "uploading thumbnail")
		}
		oldThumbPublicID = v.ThumbnailPublicID
		v.Thumbnail, v.ThumbnailPublicID = asset.URL, asset.PublicID
	}
	v.UpdatedAt = time.Now().UTC()

	updated, err := svc.repo.UpdateVideo(ctx, v)
	if err != nil {
		if thumbnail != nil {
			svc.deleteAsset(ctx, v.ThumbnailPublicID, core.ResourceImage)
		}
		return Video{}, errors.Wrap(err, "updating video")
	}
	svc.deleteAsset(ctx, oldThumbPublicID, core.ResourceImage)
	return updated, nil
}

// Delete removes a video, its media assets and everything attached to it.
func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	v, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteVideo(ctx, id); err != nil {
		return errors.Wrap(err, "deleting video")
	}
	svc.deleteAsset(ctx, v.VideoPublicID, core.ResourceVideo)
	svc.deleteAsset(ctx, v.ThumbnailPublicID, core.ResourceImage)
	return nil
}

func (svc *Service) TogglePublish(ctx context.Context, id, userID string) (Video, error) {
	v, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return Video{}, err
	}
	v.IsPublished = !v.IsPublished
	v.UpdatedAt = time.Now().UTC()
	v, err = svc.repo.UpdateVideo(ctx, v)
	return v, errors.Wrap(err, "toggling publish status")
}

// Search lists the published videos matching query.
func (svc *Service) Search(ctx context.Context, query string, page core.PageQuery) (core.Page[Video], error) {
	return svc.Query(ctx, QueryFilter{Search: query}, nil, page, "")
}

func (svc *Service) deleteAsset(ctx context.Context, publicID string, rt core.ResourceType) {
	if publicID == "" {
		return
	}
	if err := svc.media.Delete(ctx, publicID, rt); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting media asset %s: %v", publicID, err), err)
	}
}
