package like

import "time"

type TargetType string

const (
	TargetVideo   TargetType = "video"
	TargetComment TargetType = "comment"
	TargetTweet   TargetType = "tweet"
)

// Like has exactly one of VideoID, CommentID or TweetID set.
type Like struct {
	ID        string    `json:"_id"`
	VideoID   string    `json:"video,omitempty"`
	CommentID string    `json:"comment,omitempty"`
	TweetID   string    `json:"tweet,omitempty"`
	LikedBy   string    `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Target identifies the liked resource.
type Target struct {
	Type TargetType
	ID   string
}

func (l Like) Target() Target {
	switch {
	case l.VideoID != "":
		return Target{TargetVideo, l.VideoID}
	case l.CommentID != "":
		return Target{TargetComment, l.CommentID}
	default:
		return Target{TargetTweet, l.TweetID}
	}
}

func newLike(target Target, userID string, now time.Time) Like {
	l := Like{LikedBy: userID, CreatedAt: now}
	switch target.Type {
	case TargetVideo:
		l.VideoID = target.ID
	case TargetComment:
		l.CommentID = target.ID
	case TargetTweet:
		l.TweetID = target.ID
	}
	return l
}

// ToggleResult is returned by the toggle operations.
type ToggleResult struct {
	IsLiked bool `json:"isLiked"`
}
