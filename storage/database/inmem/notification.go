package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotifications(_ context.Context, notifs ...notification.Notification) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, n := range notifs {
		n.ID = newID()
		n.Sender = nil
		repo.db.notifications.insert(n.ID, n)
	}
	return nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n, ok := repo.db.notifications.get(id)
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	res := *n
	res.Sender = repo.db.summary(n.SenderID)
	return res, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, recipientID string, filter notification.QueryFilter, page core.PageQuery) (core.Page[notification.Notification], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.notifications.newestFirst() {
		if n.RecipientID != recipientID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		res := *n
		res.Sender = repo.db.summary(n.SenderID)
		notifs = append(notifs, res)
	}
	sortNewestFirst(notifs, func(n notification.Notification) int64 { return n.CreatedAt.UnixNano() })
	return core.PaginateSlice(notifs, page), nil
}

func (repo *notificationRepository) CountUnread(_ context.Context, recipientID string) (int64, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	return repo.db.notifications.count(func(n *notification.Notification) bool {
		return n.RecipientID == recipientID && !n.IsRead
	}), nil
}

func (repo *notificationRepository) MarkRead(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n, ok := repo.db.notifications.get(id)
	if !ok {
		return notification.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (repo *notificationRepository) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var count int64
	for _, n := range repo.db.notifications.all() {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (repo *notificationRepository) DeleteNotification(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.notifications.delete(id) {
		return notification.ErrNotFound
	}
	return nil
}
