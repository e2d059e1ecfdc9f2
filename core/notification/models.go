package notification

import (
	"time"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

type Type string

const (
	TypeLike         Type = "LIKE"
	TypeCommentLike  Type = "COMMENT_LIKE"
	TypeTweetLike    Type = "TWEET_LIKE"
	TypeComment      Type = "COMMENT"
	TypeSubscription Type = "SUBSCRIPTION"
	TypeNewVideo     Type = "NEW_VIDEO"
)

type Notification struct {
	ID          string            `json:"_id"`
	RecipientID string            `json:"recipient"`
	SenderID    string            `json:"-"`
	Sender      *core.UserSummary `json:"sender,omitempty"`
	Type        Type              `json:"type"`
	VideoID     string            `json:"video,omitempty"`
	CommentID   string            `json:"comment,omitempty"`
	TweetID     string            `json:"tweet,omitempty"`
	Message     string            `json:"message"`
	IsRead      bool              `json:"isRead"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// New contains information needed to notify a user of an activity.
type New struct {
	RecipientID string
	SenderID    string
	Type        Type
	VideoID     string
	CommentID   string
	TweetID     string
	Message     string
}

type QueryFilter struct {
	UnreadOnly bool `query:"unreadOnly"`
}
