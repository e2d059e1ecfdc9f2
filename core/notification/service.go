package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("notification not found")
)

type (
	Repository interface {
		CreateNotifications(ctx context.Context, notifs ...Notification) error
		GetNotification(ctx context.Context, id string) (Notification, error)
		// QueryNotifications returns the recipient's notifications, newest first, with senders populated.
		QueryNotifications(ctx context.Context, recipientID string, filter QueryFilter, page core.PageQuery) (core.Page[Notification], error)
		CountUnread(ctx context.Context, recipientID string) (int64, error)
		MarkRead(ctx context.Context, id string) error
		// MarkAllRead returns the number of notifications marked as read.
		MarkAllRead(ctx context.Context, recipientID string) (int64, error)
		DeleteNotification(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) build(n New, recipientID string, now time.Time) Notification {
	return Notification{
		RecipientID: recipientID,
		SenderID:    n.SenderID,
		Type:        n.Type,
		VideoID:     n.VideoID,
		CommentID:   n.CommentID,
		TweetID:     n.TweetID,
		Message:     n.Message,
		CreatedAt:   now,
	}
}

// Notify records a notification. Users are never notified of their own activity.
// Failures are logged: a notification must never fail the activity that triggered it.
func (svc *Service) Notify(ctx context.Context, n New) {
	if n.RecipientID == "" || n.RecipientID == n.SenderID {
		return
	}
	if err := svc.repo.CreateNotifications(ctx, svc.build(n, n.RecipientID, time.Now().UTC())); err != nil {
		svc.logger.Error(fmt.Sprintf("creating %s notification: %v", n.Type, err), errors.WithStack(err))
	}
}

// NotifyMany fans n out to every recipient but the sender.
func (svc *Service) NotifyMany(ctx context.Context, recipientIDs []string, n New) {
	now := time.Now().UTC()
	notifs := make([]Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if id == "" || id == n.SenderID {
			continue
		}
		notifs = append(notifs, svc.build(n, id, now))
	}
	if len(notifs) == 0 {
		return
	}
	if err := svc.repo.CreateNotifications(ctx, notifs...); err != nil {
		svc.logger.Error(fmt.Sprintf("fanning out %d %s notifications: %v", len(notifs), n.Type, err), errors.WithStack(err))
	}
}

func (svc *Service) List(ctx context.Context, recipientID string, filter QueryFilter, page core.PageQuery) (core.Page[Notification], error) {
	page.Clean()
	return svc.repo.QueryNotifications(ctx, recipientID, filter, page)
}

func (svc *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return svc.repo.CountUnread(ctx, recipientID)
}

// getOwned returns the notification if it belongs to recipientID; other users' notifications are reported as not found.
func (svc *Service) getOwned(ctx context.Context, id, recipientID string) (Notification, error) {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.RecipientID != recipientID {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (svc *Service) MarkRead(ctx context.Context, id, recipientID string) (Notification, error) {
	n, err := svc.getOwned(ctx, id, recipientID)
	if err != nil {
		return Notification{}, err
	}
	if !n.IsRead {
		if err = svc.repo.MarkRead(ctx, id); err != nil {
			return Notification{}, errors.Wrap(err, "marking notification as read")
		}
		n.IsRead = true
	}
	return n, nil
}

func (svc *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	count, err := svc.repo.MarkAllRead(ctx, recipientID)
	return count, errors.Wrap(err, "marking notifications as read")
}

func (svc *Service) Delete(ctx context.Context, id, recipientID string) error {
	if _, err := svc.getOwned(ctx, id, recipientID); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteNotification(ctx, id), "deleting notification")
}
