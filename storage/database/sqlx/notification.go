package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/notification"
)

const notificationCols = `n.id, n.recipient_id, n.sender_id, n.type, n.video_id, n.comment_id, n.tweet_id,
	n.message, n.is_read, n.created_at, ` + ownerCols

type notificationRow struct {
	ID          string      `db:"id"`
	RecipientID string      `db:"recipient_id"`
	SenderID    string      `db:"sender_id"`
	Type        string      `db:"type"`
	VideoID     null.String `db:"video_id"`
	CommentID   null.String `db:"comment_id"`
	TweetID     null.String `db:"tweet_id"`
	Message     string      `db:"message"`
	IsRead      bool        `db:"is_read"`
	CreatedAt   time.Time   `db:"created_at"`
	ownerRow
}

func (r notificationRow) unboil() notification.Notification {
	return notification.Notification{
		ID:          r.ID,
		RecipientID: r.RecipientID,
		SenderID:    r.SenderID,
		Sender:      r.summary(r.SenderID),
		Type:        notification.Type(r.Type),
		VideoID:     r.VideoID.String,
		CommentID:   r.CommentID.String,
		TweetID:     r.TweetID.String,
		Message:     r.Message,
		IsRead:      r.IsRead,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotifications(ctx context.Context, notifs ...notification.Notification) error {
	if len(notifs) == 0 {
		return nil
	}
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := `INSERT INTO notifications (id, recipient_id, sender_id, type, video_id, comment_id, tweet_id, message, is_read, created_at)
			VALUES (:id, :recipient_id, :sender_id, :type, :video_id, :comment_id, :tweet_id, :message, :is_read, :created_at)`
		for _, n := range notifs {
			r := notificationRow{
				ID:          uuid.NewString(),
				RecipientID: n.RecipientID,
				SenderID:    n.SenderID,
				Type:        string(n.Type),
				VideoID:     null.NewString(n.VideoID, n.VideoID != ""),
				CommentID:   null.NewString(n.CommentID, n.CommentID != ""),
				TweetID:     null.NewString(n.TweetID, n.TweetID != ""),
				Message:     n.Message,
				IsRead:      n.IsRead,
				CreatedAt:   n.CreatedAt.UTC(),
			}
			if _, err := tx.NamedExecContext(ctx, q, r); err != nil {
				return errors.Wrap(err, "inserting notification")
			}
		}
		return nil
	})
}

func (repo notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	if !validID(id) {
		return notification.Notification{}, notification.ErrNotFound
	}
	var r notificationRow
	q := repo.db.Rebind("SELECT " + notificationCols + " FROM notifications n LEFT JOIN users u ON u.id = n.sender_id WHERE n.id = ?")
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "selecting notification")
	}
	return r.unboil(), nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, recipientID string, filter notification.QueryFilter, page core.PageQuery) (core.Page[notification.Notification], error) {
	if !validID(recipientID) {
		return core.NewPage[notification.Notification](nil, 0, page), nil
	}
	var w where
	w.add("n.recipient_id = ?", recipientID)
	if filter.UnreadOnly {
		w.add("NOT n.is_read")
	}
	return paginate(ctx, repo.db,
		notificationCols, "FROM notifications n LEFT JOIN users u ON u.id = n.sender_id"+w.String(),
		" ORDER BY n.created_at DESC, n.id",
		w.args, page, notificationRow.unboil,
	)
}

func (repo notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	if !validID(recipientID) {
		return 0, nil
	}
	var n int64
	q := repo.db.Rebind("SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND NOT is_read")
	if err := repo.db.GetContext(ctx, &n, q, recipientID); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return n, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, id string) error {
	if !validID(id) {
		return notification.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("UPDATE notifications SET is_read = TRUE WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if !validID(recipientID) {
		return 0, nil
	}
	q := repo.db.Rebind("UPDATE notifications SET is_read = TRUE WHERE recipient_id = ? AND NOT is_read")
	res, err := repo.db.ExecContext(ctx, q, recipientID)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting marked notifications")
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	if !validID(id) {
		return notification.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM notifications WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
