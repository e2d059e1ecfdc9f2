package search

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("search history entry not found")
)

type (
	Repository interface {
		// SaveHistory records query for userID: an existing entry for the same query is moved to the top,
		// and the history is trimmed to MaxHistory entries.
		SaveHistory(ctx context.Context, h History) error
		GetHistoryEntry(ctx context.Context, id string) (History, error)
		// ListHistory returns the history of userID, most recent first.
		ListHistory(ctx context.Context, userID string) ([]History, error)
		DeleteHistoryEntry(ctx context.Context, id string) error
		ClearHistory(ctx context.Context, userID string) error
	}

	Service struct {
		repo     Repository
		videoSvc *video.Service
		userSvc  *user.Service
		tweetSvc *tweet.Service
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	videoSvc *video.Service,
	userSvc *user.Service,
	tweetSvc *tweet.Service,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		videoSvc: videoSvc,
		userSvc:  userSvc,
		tweetSvc: tweetSvc,
		validate: validate,
		logger:   logger,
	}
}

// Search runs q against the requested domains. The query is recorded in the history of viewerID, if any.
func (svc *Service) Search(ctx context.Context, q Query, viewerID string, page core.PageQuery) (Results, error) {
	q.Clean()
	if err := svc.validate.Struct(q); err != nil {
		return Results{}, err
	}
	page.Clean()

	res := Results{Query: q.Q, Type: q.Type}
	if q.Type == TypeAll || q.Type == TypeVideos {
		videos, err := svc.videoSvc.Search(ctx, q.Q, page)
		if err != nil {
			return Results{}, errors.Wrap(err, "searching videos")
		}
		res.Videos = &videos
	}
	if q.Type == TypeAll || q.Type == TypeUsers {
		users, err := svc.userSvc.Search(ctx, q.Q, page)
		if err != nil {
			return Results{}, errors.Wrap(err, "searching users")
		}
		res.Users = &users
	}
	if q.Type == TypeAll || q.Type == TypeTweets {
		tweets, err := svc.tweetSvc.Search(ctx, q.Q, viewerID, page)
		if err != nil {
			return Results{}, errors.Wrap(err, "searching tweets")
		}
		res.Tweets = &tweets
	}

	if viewerID != "" {
		err := svc.repo.SaveHistory(ctx, History{UserID: viewerID, Query: q.Q, CreatedAt: time.Now().UTC()})
		if err != nil {
			svc.logger.Error(fmt.Sprintf("saving search history: %v", err), err)
		}
	}
	return res, nil
}

func (svc *Service) History(ctx context.Context, userID string) ([]History, error) {
	history, err := svc.repo.ListHistory(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing search history")
	}
	if history == nil {
		history = []History{}
	}
	return history, nil
}

// DeleteHistoryEntry deletes an entry of userID's history; other users' entries are reported as not found.
func (svc *Service) DeleteHistoryEntry(ctx context.Context, id, userID string) error {
	if id == "" {
		return ErrNotFound
	}
	h, err := svc.repo.GetHistoryEntry(ctx, id)
	if err != nil {
		return err
	}
	if h.UserID != userID {
		return ErrNotFound
	}
	return errors.Wrap(svc.repo.DeleteHistoryEntry(ctx, id), "deleting search history entry")
}

func (svc *Service) ClearHistory(ctx context.Context, userID string) error {
	return errors.Wrap(svc.repo.ClearHistory(ctx, userID), "clearing search history")
}
