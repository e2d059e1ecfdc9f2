package subscription

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("subscription not found")
	ErrSelfSubscribe = core.NewValidationError(nil, core.FieldError{Field: "channelId", Error: "you cannot subscribe to your own channel"})
)

type (
	Repository interface {
		// GetSubscription returns ErrNotFound when subscriberID is not subscribed to channelID.
		GetSubscription(ctx context.Context, subscriberID, channelID string) (Subscription, error)
		CreateSubscription(ctx context.Context, sub Subscription) (Subscription, error)
		DeleteSubscription(ctx context.Context, id string) error
		// ListSubscribers lists the subscribers of channelID, most recent first.
		ListSubscribers(ctx context.Context, channelID string, page core.PageQuery) (core.Page[ChannelSummary], error)
		// ListSubscribedChannels lists the channels subscriberID subscribes to, most recent first.
		ListSubscribedChannels(ctx context.Context, subscriberID string, page core.PageQuery) (core.Page[ChannelSummary], error)
		ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error)
	}

	Service struct {
		repo     Repository
		userSvc  *user.Service
		notifSvc *notification.Service
	}
)

func NewService(repo Repository, userSvc *user.Service, notifSvc *notification.Service) *Service {
	return &Service{repo: repo, userSvc: userSvc, notifSvc: notifSvc}
}

// getChannel returns user.ErrChannelNotFound when no user has the id.
func (svc *Service) getChannel(ctx context.Context, id string) (user.User, error) {
	channel, err := svc.userSvc.GetByID(ctx, id)
	if err == user.ErrNotFound {
		return user.User{}, user.ErrChannelNotFound
	}
	return channel, err
}

// Toggle subscribes subscriberID to channelID, or unsubscribes when already subscribed.
func (svc *Service) Toggle(ctx context.Context, channelID, subscriberID string) (ToggleResult, error) {
	if channelID == subscriberID {
		return ToggleResult{}, ErrSelfSubscribe
	}
	channel, err := svc.getChannel(ctx, channelID)
	if err != nil {
		return ToggleResult{}, err
	}

	existing, err := svc.repo.GetSubscription(ctx, subscriberID, channel.ID)
	switch {
	case err == nil:
		if err = svc.repo.DeleteSubscription(ctx, existing.ID); err != nil {
			return ToggleResult{}, errors.Wrap(err, "unsubscribing")
		}
		return ToggleResult{IsSubscribed: false}, nil
	case err != ErrNotFound:
		return ToggleResult{}, errors.Wrap(err, "getting subscription")
	}

	_, err = svc.repo.CreateSubscription(ctx, Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channel.ID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return ToggleResult{}, errors.Wrap(err, "subscribing")
	}

	svc.notifSvc.Notify(ctx, notification.New{
		RecipientID: channel.ID,
		SenderID:    subscriberID,
		Type:        notification.TypeSubscription,
		Message:     "subscribed to your channel",
	})
	return ToggleResult{IsSubscribed: true}, nil
}

func (svc *Service) Subscribers(ctx context.Context, channelID string, page core.PageQuery) (core.Page[ChannelSummary], error) {
	if _, err := svc.getChannel(ctx, channelID); err != nil {
		return core.Page[ChannelSummary]{}, err
	}
	page.Clean()
	return svc.repo.ListSubscribers(ctx, channelID, page)
}

func (svc *Service) SubscribedChannels(ctx context.Context, subscriberID string, page core.PageQuery) (core.Page[ChannelSummary], error) {
	if _, err := svc.userSvc.GetByID(ctx, subscriberID); err != nil {
		return core.Page[ChannelSummary]{}, err
	}
	page.Clean()
	return svc.repo.ListSubscribedChannels(ctx, subscriberID, page)
}

// SubscriberIDs lists the ids of every subscriber of channelID.
func (svc *Service) SubscriberIDs(ctx context.Context, channelID string) ([]string, error) {
	return svc.repo.ListSubscriberIDs(ctx, channelID)
}
