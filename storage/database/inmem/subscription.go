package inmem

import (
	"context"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
)

type subscriptionRepository struct {
	db *DB
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (repo *subscriptionRepository) GetSubscription(_ context.Context, subscriberID, channelID string) (subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.subscriptions.all() {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			return *s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (repo *subscriptionRepository) CreateSubscription(_ context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.db.isSubscribed(sub.SubscriberID, sub.ChannelID) {
		return subscription.Subscription{}, core.NewConflictError("already subscribed")
	}
	sub.ID = newID()
	repo.db.subscriptions.insert(sub.ID, sub)
	return sub, nil
}

func (repo *subscriptionRepository) DeleteSubscription(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.subscriptions.delete(id) {
		return subscription.ErrNotFound
	}
	return nil
}

func (repo *subscriptionRepository) newestFirst() []*subscription.Subscription {
	subs := repo.db.subscriptions.newestFirst()
	sortNewestFirst(subs, func(s *subscription.Subscription) int64 { return s.CreatedAt.UnixNano() })
	return subs
}

func (repo *subscriptionRepository) ListSubscribers(_ context.Context, channelID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	summaries := make([]subscription.ChannelSummary, 0)
	for _, s := range repo.newestFirst() {
		if s.ChannelID != channelID {
			continue
		}
		if usr := repo.db.summary(s.SubscriberID); usr != nil {
			summaries = append(summaries, subscription.ChannelSummary{
				UserSummary:      *usr,
				SubscribersCount: repo.db.subscribersCount(usr.ID),
				IsSubscribed:     repo.db.isSubscribed(channelID, usr.ID),
			})
		}
	}
	return core.PaginateSlice(summaries, page), nil
}

func (repo *subscriptionRepository) ListSubscribedChannels(_ context.Context, subscriberID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	summaries := make([]subscription.ChannelSummary, 0)
	for _, s := range repo.newestFirst() {
		if s.SubscriberID != subscriberID {
			continue
		}
		if ch := repo.db.summary(s.ChannelID); ch != nil {
			summaries = append(summaries, subscription.ChannelSummary{
				UserSummary:      *ch,
				SubscribersCount: repo.db.subscribersCount(ch.ID),
				IsSubscribed:     true,
			})
		}
	}
	return core.PaginateSlice(summaries, page), nil
}

func (repo *subscriptionRepository) ListSubscriberIDs(_ context.Context, channelID string) ([]string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids []string
	for _, s := range repo.db.subscriptions.all() {
		if s.ChannelID == channelID {
			ids = append(ids, s.SubscriberID)
		}
	}
	return ids, nil
}
