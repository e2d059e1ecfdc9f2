package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
)

type notificationDoc struct {
	ID          string    `bson:"_id"`
	RecipientID string    `bson:"recipient_id"`
	SenderID    string    `bson:"sender_id"`
	Type        string    `bson:"type"`
	VideoID     string    `bson:"video_id,omitempty"`
	CommentID   string    `bson:"comment_id,omitempty"`
	TweetID     string    `bson:"tweet_id,omitempty"`
	Message     string    `bson:"message"`
	IsRead      bool      `bson:"is_read"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d notificationDoc) unboil(sender *core.UserSummary) notification.Notification {
	return notification.Notification{
		ID:          d.ID,
		RecipientID: d.RecipientID,
		SenderID:    d.SenderID,
		Sender:      sender,
		Type:        notification.Type(d.Type),
		VideoID:     d.VideoID,
		CommentID:   d.CommentID,
		TweetID:     d.TweetID,
		Message:     d.Message,
		IsRead:      d.IsRead,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) notifications() *mongo.Collection {
	return repo.db.col(colNotifications)
}

func (repo notificationRepository) withSenders(ctx context.Context, docs []notificationDoc) ([]notification.Notification, error) {
	senders, err := repo.db.summaries(ctx, pluck(docs, func(d notificationDoc) string { return d.SenderID })...)
	if err != nil {
		return nil, err
	}
	notifs := make([]notification.Notification, 0, len(docs))
	for _, d := range docs {
		notifs = append(notifs, d.unboil(senders[d.SenderID]))
	}
	return notifs, nil
}

func (repo notificationRepository) CreateNotifications(ctx context.Context, notifs ...notification.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(notifs))
	for _, n := range notifs {
		docs = append(docs, notificationDoc{
			ID:          newID(),
			RecipientID: n.RecipientID,
			SenderID:    n.SenderID,
			Type:        string(n.Type),
			VideoID:     n.VideoID,
			CommentID:   n.CommentID,
			TweetID:     n.TweetID,
			Message:     n.Message,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.UTC(),
		})
	}
	_, err := repo.notifications().InsertMany(ctx, docs)
	return errors.Wrap(err, "inserting notifications")
}

func (repo notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	var d notificationDoc
	if err := repo.notifications().FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return notification.Notification{}, trapNoDocsErr(err, notification.ErrNotFound, "finding notification")
	}
	notifs, err := repo.withSenders(ctx, []notificationDoc{d})
	if err != nil {
		return notification.Notification{}, err
	}
	return notifs[0], nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, recipientID string, filter notification.QueryFilter, page core.PageQuery) (core.Page[notification.Notification], error) {
	query := bson.M{"recipient_id": recipientID}
	if filter.UnreadOnly {
		query["is_read"] = false
	}
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	docs, total, err := findPage[notificationDoc](ctx, repo.notifications(), query, sort, page, false)
	if err != nil {
		return core.Page[notification.Notification]{}, err
	}
	notifs, err := repo.withSenders(ctx, docs)
	if err != nil {
		return core.Page[notification.Notification]{}, err
	}
	return core.NewPage(notifs, total, page), nil
}

func (repo notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	n, err := repo.notifications().CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
	return n, errors.Wrap(err, "counting unread notifications")
}

func (repo notificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := repo.notifications().UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := repo.notifications().UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	return res.ModifiedCount, nil
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	return deleteOne(ctx, repo.notifications(), id, notification.ErrNotFound)
}
