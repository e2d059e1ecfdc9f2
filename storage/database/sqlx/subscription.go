package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/subscription"
)

type subscriptionRow struct {
	ID           string    `db:"id"`
	SubscriberID string    `db:"subscriber_id"`
	ChannelID    string    `db:"channel_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type channelSummaryRow struct {
	ID               string `db:"id"`
	Username         string `db:"username"`
	FullName         string `db:"full_name"`
	Avatar           string `db:"avatar"`
	SubscribersCount int64  `db:"subscribers_count"`
	IsSubscribed     bool   `db:"is_subscribed"`
}

func (r channelSummaryRow) unboil() subscription.ChannelSummary {
	return subscription.ChannelSummary{
		UserSummary: core.UserSummary{
			ID:       r.ID,
			Username: r.Username,
			FullName: r.FullName,
			Avatar:   r.Avatar,
		},
		SubscribersCount: r.SubscribersCount,
		IsSubscribed:     r.IsSubscribed,
	}
}

type subscriptionRepository struct {
	db *sqlx.DB
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *sqlx.DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (repo subscriptionRepository) GetSubscription(ctx context.Context, subscriberID, channelID string) (subscription.Subscription, error) {
	if !validID(subscriberID) || !validID(channelID) {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	var r subscriptionRow
	q := repo.db.Rebind(`SELECT id, subscriber_id, channel_id, created_at FROM subscriptions
		WHERE subscriber_id = ? AND channel_id = ?`)
	if err := repo.db.GetContext(ctx, &r, q, subscriberID, channelID); err != nil {
		return subscription.Subscription{}, trapNoRowsErr(err, subscription.ErrNotFound, "selecting subscription")
	}
	return subscription.Subscription{
		ID:           r.ID,
		SubscriberID: r.SubscriberID,
		ChannelID:    r.ChannelID,
		CreatedAt:    r.CreatedAt.UTC(),
	}, nil
}

func (repo subscriptionRepository) CreateSubscription(ctx context.Context, sub subscription.Subscription) (subscription.Subscription, error) {
	sub.ID = uuid.NewString()
	q := `INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES (:id, :subscriber_id, :channel_id, :created_at)`
	r := subscriptionRow{ID: sub.ID, SubscriberID: sub.SubscriberID, ChannelID: sub.ChannelID, CreatedAt: sub.CreatedAt.UTC()}
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		if isUniqueViolation(err) {
			return subscription.Subscription{}, core.NewConflictError("already subscribed")
		}
		return subscription.Subscription{}, errors.Wrap(err, "inserting subscription")
	}
	return sub, nil
}

func (repo subscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	if !validID(id) {
		return subscription.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM subscriptions WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting subscription")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

const channelSummaryCols = `u.id, u.username, u.full_name, u.avatar,
	(SELECT COUNT(*) FROM subscriptions c WHERE c.channel_id = u.id) AS subscribers_count`

func (repo subscriptionRepository) ListSubscribers(ctx context.Context, channelID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	if !validID(channelID) {
		return core.NewPage[subscription.ChannelSummary](nil, 0, page), nil
	}
	// is_subscribed: whether the channel subscribes back
	cols := channelSummaryCols + `,
		EXISTS (SELECT 1 FROM subscriptions b WHERE b.subscriber_id = s.channel_id AND b.channel_id = u.id) AS is_subscribed`
	return paginate(ctx, repo.db,
		cols, "FROM subscriptions s JOIN users u ON u.id = s.subscriber_id WHERE s.channel_id = ?",
		" ORDER BY s.created_at DESC, s.id",
		[]interface{}{channelID}, page, channelSummaryRow.unboil,
	)
}

func (repo subscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string, page core.PageQuery) (core.Page[subscription.ChannelSummary], error) {
	if !validID(subscriberID) {
		return core.NewPage[subscription.ChannelSummary](nil, 0, page), nil
	}
	return paginate(ctx, repo.db,
		channelSummaryCols+", TRUE AS is_subscribed",
		"FROM subscriptions s JOIN users u ON u.id = s.channel_id WHERE s.subscriber_id = ?",
		" ORDER BY s.created_at DESC, s.id",
		[]interface{}{subscriberID}, page, channelSummaryRow.unboil,
	)
}

func (repo subscriptionRepository) ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error) {
	if !validID(channelID) {
		return nil, nil
	}
	var ids []string
	q := repo.db.Rebind("SELECT subscriber_id FROM subscriptions WHERE channel_id = ?")
	if err := repo.db.SelectContext(ctx, &ids, q, channelID); err != nil {
		return nil, errors.Wrap(err, "selecting subscriber ids")
	}
	return ids, nil
}
