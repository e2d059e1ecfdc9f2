package tweet

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("tweet not found")
	ErrNotOwner = core.NewPermissionError("you are not the owner of this tweet")
)

type (
	Repository interface {
		CreateTweet(ctx context.Context, t Tweet) (Tweet, error)
		GetTweet(ctx context.Context, id string) (Tweet, error)
		// QueryTweets lists tweets newest first, with owners, likes count & the viewer's like populated.
		QueryTweets(ctx context.Context, filter QueryFilter, page core.PageQuery) (core.Page[Tweet], error)
		UpdateTweet(ctx context.Context, t Tweet) (Tweet, error)
		// DeleteTweet deletes the tweet and the likes on it.
		DeleteTweet(ctx context.Context, id string) error
	}

	// UserChecker reports whether a user exists.
	UserChecker interface {
		GetSummary(ctx context.Context, id string) (core.UserSummary, error)
	}

	Service struct {
		repo  Repository
		users UserChecker
	}
)

func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

func (svc *Service) Get(ctx context.Context, id string) (Tweet, error) {
	if id == "" {
		return Tweet{}, ErrNotFound
	}
	return svc.repo.GetTweet(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ownerID string, nt NewTweet) (Tweet, error) {
	owner, err := svc.users.GetSummary(ctx, ownerID)
	if err != nil {
		return Tweet{}, err
	}
	now := time.Now().UTC()
	t, err := svc.repo.CreateTweet(ctx, Tweet{
		OwnerID:   ownerID,
		Content:   nt.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Tweet{}, errors.Wrap(err, "creating tweet")
	}
	t.Owner = &owner
	return t, nil
}

// UserTweets lists the tweets of a user; the user must exist.
func (svc *Service) UserTweets(ctx context.Context, userID, viewerID string, page core.PageQuery) (core.Page[Tweet], error) {
	if _, err := svc.users.GetSummary(ctx, userID); err != nil {
		return core.Page[Tweet]{}, err
	}
	page.Clean()
	return svc.repo.QueryTweets(ctx, QueryFilter{OwnerID: userID, ViewerID: viewerID}, page)
}

// Feed lists every tweet, newest first.
func (svc *Service) Feed(ctx context.Context, viewerID string, page core.PageQuery) (core.Page[Tweet], error) {
	page.Clean()
	return svc.repo.QueryTweets(ctx, QueryFilter{ViewerID: viewerID}, page)
}

// Search does a case-insensitive match on Tweet.Content.
func (svc *Service) Search(ctx context.Context, query, viewerID string, page core.PageQuery) (core.Page[Tweet], error) {
	page.Clean()
	return svc.repo.QueryTweets(ctx, QueryFilter{Search: core.CleanString(query), ViewerID: viewerID}, page)
}

func (svc *Service) getOwned(ctx context.Context, id, userID string) (Tweet, error) {
	t, err := svc.Get(ctx, id)
	if err != nil {
		return Tweet{}, err
	}
	if t.OwnerID != userID {
		return Tweet{}, ErrNotOwner
	}
	return t, nil
}

func (svc *Service) Update(ctx context.Context, id, userID string, data NewTweet) (Tweet, error) {
	t, err := svc.getOwned(ctx, id, userID)
	if err != nil {
		return Tweet{}, err
	}
	t.Content = data.Content
	t.UpdatedAt = time.Now().UTC()
	t, err = svc.repo.UpdateTweet(ctx, t)
	return t, errors.Wrap(err, "updating tweet")
}

func (svc *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := svc.getOwned(ctx, id, userID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteTweet(ctx, id), "deleting tweet")
}
