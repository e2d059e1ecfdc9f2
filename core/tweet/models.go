package tweet

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

const MaxContentLen = 280

type Tweet struct {
	ID         string            `json:"_id"`
	OwnerID    string            `json:"ownerId"`
	Owner      *core.UserSummary `json:"owner,omitempty"`
	Content    string            `json:"content"`
	LikesCount int64             `json:"likesCount"`
	IsLiked    bool              `json:"isLiked"` // by the viewer
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type QueryFilter struct {
	OwnerID string
	Search  string
	// ViewerID is used to compute Tweet.IsLiked.
	ViewerID string
}

// NewTweet is both the create & the update payload.
type NewTweet struct {
	Content string `json:"content" validate:"required,notblank,max=280"`
}

func (nt *NewTweet) Validate(validate *validator.Validate) error {
	nt.Content = core.CleanString(nt.Content)
	return validate.Struct(nt)
}
