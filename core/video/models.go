package video

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	// OrderingFields are the fields videos may be sorted by.
	OrderingFields  = []string{"createdAt", "views", "duration", "title"}
	DefaultOrdering = core.DBOrdering{Field: "createdAt"}
)

type Video struct {
	ID                string            `json:"_id"`
	VideoFile         string            `json:"videoFile"`
	VideoPublicID     string            `json:"-"`
	Thumbnail         string            `json:"thumbnail"`
	ThumbnailPublicID string            `json:"-"`
	OwnerID           string            `json:"ownerId"`
	Owner             *core.UserSummary `json:"owner,omitempty"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Duration          float64           `json:"duration"` // seconds
	Views             int64             `json:"views"`
	IsPublished       bool              `json:"isPublished"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Detail is a video as shown on its watch page.
type Detail struct {
	Video
	LikesCount       int64 `json:"likesCount"`
	IsLiked          bool  `json:"isLiked"`
	SubscribersCount int64 `json:"subscribersCount"` // of the owner's channel
	IsSubscribed     bool  `json:"isSubscribed"`     // viewer to owner
}

type QueryFilter struct {
	Search  string `query:"query"`
	OwnerID string `query:"userId"`

	// IncludeUnpublished also lists the owner's unpublished videos; only set for the owner.
	IncludeUnpublished bool `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.OwnerID = core.CleanString(qf.OwnerID)
}

// NewVideo contains information needed to publish a new Video.
type NewVideo struct {
	Title       string `json:"title" form:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" form:"description" validate:"required,notblank,max=5000"`
}

func (nv *NewVideo) Validate(validate *validator.Validate) error {
	nv.Title = core.CleanString(nv.Title)
	nv.Description = core.CleanString(nv.Description)
	return validate.Struct(nv)
}

// UpdateVideo defines what information may be provided to modify an existing Video.
type UpdateVideo struct {
	Title       string `json:"title" form:"title" validate:"omitempty,max=200"`
	Description string `json:"description" form:"description" validate:"omitempty,max=5000"`
}

func (uv *UpdateVideo) Validate(validate *validator.Validate) error {
	uv.Title = core.CleanString(uv.Title)
	uv.Description = core.CleanString(uv.Description)
	return validate.Struct(uv)
}
