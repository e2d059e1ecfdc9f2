package comment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

type Comment struct {
	ID         string            `json:"_id"`
	VideoID    string            `json:"video"`
	OwnerID    string            `json:"ownerId"`
	Owner      *core.UserSummary `json:"owner,omitempty"`
	Content    string            `json:"content"`
	LikesCount int64             `json:"likesCount"`
	IsLiked    bool              `json:"isLiked"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type NewComment struct {
	Content string `json:"content" validate:"required,notblank,max=1000"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
