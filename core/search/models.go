package search

import (
	"time"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/tweet"
	"github.com/Prajjwal2051/Viewly-sub002/core/video"
)

// MaxHistory is the number of queries kept in a user's search history.
const MaxHistory = 20

type Type string

const (
	TypeAll    Type = "all"
	TypeVideos Type = "videos"
	TypeUsers  Type = "users"
	TypeTweets Type = "tweets"
)

// History is a past search query of a user.
type History struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"-"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"createdAt"`
}

type Query struct {
	Q    string `json:"q" query:"q" validate:"required,notblank,max=200"`
	Type Type   `json:"type" query:"type" validate:"omitempty,oneof=all videos users tweets"`
}

func (q *Query) Clean() {
	q.Q = core.CleanString(q.Q)
	q.Type = Type(core.CleanString(string(q.Type), true /* lower */))
	if q.Type == "" {
		q.Type = TypeAll
	}
}

// Results holds one page per searched domain; domains not searched are omitted.
type Results struct {
	Query  string                       `json:"query"`
	Type   Type                         `json:"type"`
	Videos *core.Page[video.Video]      `json:"videos,omitempty"`
	Users  *core.Page[core.UserSummary] `json:"users,omitempty"`
	Tweets *core.Page[tweet.Tweet]      `json:"tweets,omitempty"`
}
